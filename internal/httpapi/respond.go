package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type healthBody struct {
	Status   string `json:"status"`
	LastSent string `json:"last_sent"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching w, so an encoding failure still
// produces a clean 500 instead of a truncated body under the wrong status.
// Health answers change every interval and are never cached.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody{
			Error:   http.StatusText(status),
			Message: "response encoding failed",
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: http.StatusText(status), Message: msg})
}

func writeHealthy(w http.ResponseWriter, lastSent time.Time) {
	writeJSON(w, http.StatusOK, healthBody{
		Status:   "ok",
		LastSent: lastSent.UTC().Format(time.RFC3339Nano),
	})
}
