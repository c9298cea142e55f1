package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mgwoorl/coursework/internal/config"
)

func TestNew_ProdWritesJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}

	logger := newWithWriter(&buf, cfg, "1.2.3", "towerfeed")
	logger.Info("snapshot sent", "bytes", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	for k, want := range map[string]any{
		"msg":     "snapshot sent",
		"app":     "towerfeed",
		"version": "1.2.3",
		"env":     "prod",
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %v", k, rec[k], want)
		}
	}
	runID, _ := rec["run_id"].(string)
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("run_id %q is not a uuid: %v", runID, err)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}

	logger := newWithWriter(&buf, cfg, "1.2.3", "towerfeed")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestNew_DevUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}

	logger := newWithWriter(&buf, cfg, "dev", "towerfeed")
	logger.Debug("tick")

	out := buf.String()
	if !strings.Contains(out, "tick") {
		t.Fatalf("dev output missing message: %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}
