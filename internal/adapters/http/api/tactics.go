// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/calcio/internal/domain/tactics"
)

// TacticsDependencies defines the interface for tactic table lookups.
type TacticsDependencies interface {
	Tactics(ctx context.Context) ([]tactics.Spec, error)
}

// TacticsHandler handles tactic listing requests.
type TacticsHandler struct {
	deps TacticsDependencies
}

// NewTacticsHandler creates a new tactics handler.
func NewTacticsHandler(deps TacticsDependencies) *TacticsHandler {
	return &TacticsHandler{deps: deps}
}

// HandleListTactics handles GET /api/tactics requests.
func (h *TacticsHandler) HandleListTactics(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_tactics"
	specs, err := h.deps.Tactics(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, specs)
}
