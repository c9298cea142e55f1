package httpapi

import (
	"net/http"
	"time"
)

// FeedStatus reports when the feed last put a snapshot on the wire.
type FeedStatus interface {
	LastSent() time.Time
}

type healthchecker struct {
	feed FeedStatus
}

func (h *healthchecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	last := h.feed.LastSent()
	if last.IsZero() {
		writeError(w, http.StatusServiceUnavailable, "no snapshot sent yet")
		return
	}
	writeHealthy(w, last)
}

func registerHealthcheck(mux *http.ServeMux, feed FeedStatus) {
	h := &healthchecker{feed: feed}
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}
