// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	repository "github.com/okian/calcio/internal/adapters/repository"
	service "github.com/okian/calcio/internal/app"
	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/tactics"
	"github.com/okian/calcio/internal/domain/timeline"
	"github.com/okian/calcio/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// CreateMatch validates and registers a new match session.
	CreateMatch(ctx context.Context, home, away model.TeamConfig, conditions model.MatchConditions) (MatchInfo, error)

	// Streaming operations produce the two halves as frame channels.
	StreamFirstHalf(ctx context.Context, id string) (<-chan model.Frame, error)
	StreamSecondHalf(ctx context.Context, id string) (<-chan model.Frame, error)

	// UpdateTactic switches one side's tactic mid-match.
	UpdateTactic(ctx context.Context, id string, side model.Side, tactic string) (tactics.Profile, error)

	// Read operations expose match and tactic data.
	Snapshot(ctx context.Context, id string) (Snapshot, error)
	CloseMatch(ctx context.Context, id string) error
	Tactics(ctx context.Context) ([]tactics.Spec, error)
}

// MatchInfo mirrors the creation-time view returned by the match service.
type MatchInfo = service.MatchInfo

// Snapshot mirrors the read shape returned by snapshot queries.
type Snapshot = service.Snapshot

// Server wires HTTP routes for the business API.
type Server struct {
	matchesHandler *MatchesHandler
	streamHandler  *StreamHandler
	tacticHandler  *TacticHandler
	tacticsHandler *TacticsHandler
	healthHandler  *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		matchesHandler: NewMatchesHandler(deps),
		streamHandler:  NewStreamHandler(deps),
		tacticHandler:  NewTacticHandler(deps),
		tacticsHandler: NewTacticsHandler(deps),
		healthHandler:  NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(ctx context.Context, router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/tactics", MetricsMiddleware(s.tacticsHandler.HandleListTactics, "tactics")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleCreateMatch, "matches")).Methods(http.MethodPost)
	apiRouter.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleGetMatch, "match")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleDeleteMatch, "match")).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/matches/{id}/stream/first-half", MetricsMiddleware(s.streamHandler.HandleFirstHalf, "stream_first_half")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches/{id}/stream/second-half", MetricsMiddleware(s.streamHandler.HandleSecondHalf, "stream_second_half")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches/{id}/tactic", MetricsMiddleware(s.tacticHandler.HandleUpdateTactic, "tactic")).Methods(http.MethodPost)
}

// Handler wraps router with the CORS policy the browser clients need.
func Handler(router *mux.Router) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})
	return c.Handler(router)
}

// teamPayload mirrors the OpenAPI schema for one side of a match.
type teamPayload struct {
	Name       string         `json:"name"`
	Attributes map[string]int `json:"attributes"`
	Tactic     string         `json:"tactic"`
	Formation  string         `json:"formation"`
}

func (t teamPayload) toConfig() model.TeamConfig {
	return model.TeamConfig{
		Name:       t.Name,
		Attributes: t.Attributes,
		Tactic:     t.Tactic,
		Formation:  t.Formation,
	}
}

// teamConditionPayload mirrors the per-team condition block.
type teamConditionPayload struct {
	Morale  float64 `json:"morale"`
	Fatigue float64 `json:"fatigue"`
	Form    float64 `json:"form"`
}

// conditionsPayload mirrors the optional match conditions block.
type conditionsPayload struct {
	Weather    string               `json:"weather"`
	Crowd      string               `json:"crowd"`
	Stadium    string               `json:"stadium"`
	Tempo      string               `json:"tempo"`
	Aggression float64              `json:"aggression"`
	Home       teamConditionPayload `json:"home"`
	Away       teamConditionPayload `json:"away"`
}

func (c conditionsPayload) toConditions() model.MatchConditions {
	return model.MatchConditions{
		Weather:    c.Weather,
		Crowd:      c.Crowd,
		Stadium:    c.Stadium,
		Tempo:      c.Tempo,
		Aggression: c.Aggression,
		Home:       model.TeamCondition{Morale: c.Home.Morale, Fatigue: c.Home.Fatigue, Form: c.Home.Form},
		Away:       model.TeamCondition{Morale: c.Away.Morale, Fatigue: c.Away.Fatigue, Form: c.Away.Form},
	}
}

// createMatchRequest mirrors the OpenAPI schema for POST /api/matches.
type createMatchRequest struct {
	HomeTeam   teamPayload       `json:"homeTeam"`
	AwayTeam   teamPayload       `json:"awayTeam"`
	Conditions conditionsPayload `json:"conditions"`
}

func (r createMatchRequest) validate() error {
	switch {
	case strings.TrimSpace(r.HomeTeam.Name) == "":
		return errors.New("missing homeTeam.name")
	case strings.TrimSpace(r.AwayTeam.Name) == "":
		return errors.New("missing awayTeam.name")
	case len(r.HomeTeam.Attributes) == 0:
		return errors.New("missing homeTeam.attributes")
	case len(r.AwayTeam.Attributes) == 0:
		return errors.New("missing awayTeam.attributes")
	case strings.TrimSpace(r.HomeTeam.Tactic) == "":
		return errors.New("missing homeTeam.tactic")
	case strings.TrimSpace(r.AwayTeam.Tactic) == "":
		return errors.New("missing awayTeam.tactic")
	}
	return nil
}

// tacticRequest mirrors the OpenAPI schema for POST /api/matches/{id}/tactic.
type tacticRequest struct {
	Team   string `json:"team"`
	Tactic string `json:"tactic"`
}

func (r tacticRequest) validate() error {
	switch {
	case r.Team != string(model.SideHome) && r.Team != string(model.SideAway):
		return errors.New("team must be home or away")
	case strings.TrimSpace(r.Tactic) == "":
		return errors.New("missing tactic")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps domain error kinds onto HTTP status codes and stable
// response codes, so handlers never switch on error strings.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, timeline.ErrSecondHalfBeforeHalfTime),
		errors.Is(err, timeline.ErrHalfAlreadyGenerated),
		errors.Is(err, timeline.ErrMatchFinished),
		errors.Is(err, timeline.ErrInvalidTransition),
		errors.Is(err, service.ErrStreamActive):
		return http.StatusConflict, "state_error"
	case errors.Is(err, tactics.ErrUnknownTactic),
		errors.Is(err, tactics.ErrInvalidTactic),
		errors.Is(err, tactics.ErrMissingAttributes),
		errors.Is(err, timeline.ErrInvalidConditions),
		errors.Is(err, timeline.ErrMissingTeams),
		errors.Is(err, timeline.ErrUnknownSide),
		errors.Is(err, service.ErrMissingTeamName):
		return http.StatusBadRequest, "configuration_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeDomainError translates a service error into the HTTP response and
// keeps the state-conflict counter honest.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if status == http.StatusConflict {
		metrics.RecordStateError()
	}
	writeError(w, status, code, Wrap(op, err))
}
