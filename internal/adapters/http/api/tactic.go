// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/tactics"
)

// TacticDependencies defines the interface for mid-match tactic changes.
type TacticDependencies interface {
	UpdateTactic(ctx context.Context, id string, side model.Side, tactic string) (tactics.Profile, error)
}

// TacticHandler handles tactic change requests.
type TacticHandler struct {
	deps TacticDependencies
}

// NewTacticHandler creates a new tactic handler.
func NewTacticHandler(deps TacticDependencies) *TacticHandler {
	return &TacticHandler{deps: deps}
}

// HandleUpdateTactic handles POST /api/matches/{id}/tactic requests.
func (h *TacticHandler) HandleUpdateTactic(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_tactic"
	var req tacticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	profile, err := h.deps.UpdateTactic(r.Context(), mux.Vars(r)["id"], model.Side(req.Team), req.Tactic)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
