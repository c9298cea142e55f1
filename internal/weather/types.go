// Package weather fabricates tower snapshots and encodes them for the wire.
package weather

// Vector is a wind direction scaled by speed. Y is always zero: the feed
// only models horizontal wind.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sample is one reading at one level of one tower.
type Sample struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Wind        Vector  `json:"wind_vector"`
	WindSpeed   float64 `json:"wind_speed"`
}

type LevelSample struct {
	Level  int
	Sample Sample
}

// Tower holds the samples of a tower ordered by ascending level.
type Tower struct {
	ID     int
	Levels []LevelSample
}

// Snapshot is the full payload of one emission cycle, towers in ascending id
// order. A Snapshot is built once and never mutated.
type Snapshot struct {
	Towers []Tower
}

// LevelIDs returns the levels present on the tower.
func (t Tower) LevelIDs() []int {
	out := make([]int, len(t.Levels))
	for i, l := range t.Levels {
		out[i] = l.Level
	}
	return out
}

// SampleCount returns the number of samples across all towers.
func (s Snapshot) SampleCount() int {
	n := 0
	for _, t := range s.Towers {
		n += len(t.Levels)
	}
	return n
}
