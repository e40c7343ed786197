// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/calcio/internal/domain/model"
)

// MatchDependencies defines the interface for match lifecycle operations.
type MatchDependencies interface {
	CreateMatch(ctx context.Context, home, away model.TeamConfig, conditions model.MatchConditions) (MatchInfo, error)
	Snapshot(ctx context.Context, id string) (Snapshot, error)
	CloseMatch(ctx context.Context, id string) error
}

// MatchesHandler handles match creation and lookup requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleCreateMatch handles POST /api/matches requests.
func (h *MatchesHandler) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	info, err := h.deps.CreateMatch(r.Context(), req.HomeTeam.toConfig(), req.AwayTeam.toConfig(), req.Conditions.toConditions())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleGetMatch handles GET /api/matches/{id} requests.
func (h *MatchesHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	snapshot, err := h.deps.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleDeleteMatch handles DELETE /api/matches/{id} requests.
func (h *MatchesHandler) HandleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_match"
	if err := h.deps.CloseMatch(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
