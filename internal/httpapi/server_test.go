package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type stubFeed struct{ last time.Time }

func (s stubFeed) LastSent() time.Time { return s.last }

func TestHealthz(t *testing.T) {
	sentAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		feed       stubFeed
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "before first send", feed: stubFeed{}, wantStatus: http.StatusServiceUnavailable, wantKey: "error", wantValue: "Service Unavailable"},
		{name: "after send", feed: stubFeed{last: sentAt}, wantStatus: http.StatusOK, wantKey: "last_sent", wantValue: "2026-10-19T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := NewMux(tt.feed, prometheus.NewRegistry())
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Code = %d; want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q", got)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("body is not valid JSON: %v", err)
			}
			if body[tt.wantKey] != tt.wantValue {
				t.Errorf("body[%s] = %q; want %q", tt.wantKey, body[tt.wantKey], tt.wantValue)
			}
		})
	}
}

func TestHealthz_RejectsPost(t *testing.T) {
	mux := NewMux(stubFeed{last: time.Now()}, prometheus.NewRegistry())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Code = %d; want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "towerfeed_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	mux := NewMux(stubFeed{}, reg)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Code = %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "towerfeed_test_total 3") {
		t.Fatalf("metrics body missing counter:\n%s", w.Body.String())
	}
}
