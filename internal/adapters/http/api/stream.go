// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/calcio/internal/domain/model"
)

// StreamDependencies defines the interface for half-streaming operations.
type StreamDependencies interface {
	StreamFirstHalf(ctx context.Context, id string) (<-chan model.Frame, error)
	StreamSecondHalf(ctx context.Context, id string) (<-chan model.Frame, error)
}

// StreamHandler handles NDJSON half-stream requests.
type StreamHandler struct {
	deps StreamDependencies
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies) *StreamHandler {
	return &StreamHandler{deps: deps}
}

// HandleFirstHalf handles GET /api/matches/{id}/stream/first-half requests.
func (h *StreamHandler) HandleFirstHalf(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.stream_first_half", h.deps.StreamFirstHalf)
}

// HandleSecondHalf handles GET /api/matches/{id}/stream/second-half requests.
func (h *StreamHandler) HandleSecondHalf(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.stream_second_half", h.deps.StreamSecondHalf)
}

// serve opens one half and relays its frames as newline-delimited JSON,
// flushing after every line so clients see the match in real time. Errors
// can only surface before the first byte; once streaming starts the
// connection is committed.
func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, op string, open func(context.Context, string) (<-chan model.Frame, error)) {
	frames, err := open(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrBadStream))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for frame := range frames {
		if err := enc.Encode(frame); err != nil {
			// Client went away; drain so the session still finishes the half.
			for range frames {
			}
			return
		}
		flusher.Flush()
	}
}
