package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Marshal encodes s as compact JSON:
//
//	{"towers":{"<tower>":{"<level>":{"temperature":..,"pressure":..,
//	 "wind_vector":{"x":..,"y":0,"z":..},"wind_speed":..}}}}
//
// Towers and levels keep their slice order, so keys come out in ascending
// numeric order rather than encoding/json's lexical map order.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"towers":{`)
	for i, t := range s.Towers {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, t.ID)
		buf.WriteByte('{')
		for j, l := range t.Levels {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, l.Level)
			b, err := json.Marshal(l.Sample)
			if err != nil {
				return nil, fmt.Errorf("marshal tower %d level %d: %w", t.ID, l.Level, err)
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// MarshalIndent is Marshal with two-space indentation, for logs.
func MarshalIndent(s Snapshot) ([]byte, error) {
	compact, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, id int) {
	buf.WriteByte('"')
	buf.WriteString(strconv.Itoa(id))
	buf.WriteString(`":`)
}

type wireSnapshot struct {
	Towers map[string]map[string]Sample `json:"towers"`
}

// Unmarshal decodes a payload produced by Marshal. Towers and levels are
// returned in ascending order.
func Unmarshal(data []byte, s *Snapshot) error {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if w.Towers == nil {
		return errors.New("decode snapshot: missing towers")
	}

	towers := make([]Tower, 0, len(w.Towers))
	for towerKey, levels := range w.Towers {
		id, err := strconv.Atoi(towerKey)
		if err != nil {
			return fmt.Errorf("decode snapshot: tower key %q: %w", towerKey, err)
		}
		tower := Tower{ID: id, Levels: make([]LevelSample, 0, len(levels))}
		for levelKey, sample := range levels {
			level, err := strconv.Atoi(levelKey)
			if err != nil {
				return fmt.Errorf("decode snapshot: tower %d level key %q: %w", id, levelKey, err)
			}
			tower.Levels = append(tower.Levels, LevelSample{Level: level, Sample: sample})
		}
		slices.SortFunc(tower.Levels, func(a, b LevelSample) int { return a.Level - b.Level })
		towers = append(towers, tower)
	}
	slices.SortFunc(towers, func(a, b Tower) int { return a.ID - b.ID })

	*s = Snapshot{Towers: towers}
	return nil
}
