package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/calcio/internal/adapters/enrich"
	repository "github.com/okian/calcio/internal/adapters/repository"
	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
	"github.com/okian/calcio/internal/domain/timeline"
	"github.com/okian/calcio/pkg/logger"
	"github.com/okian/calcio/pkg/metrics"
)

// Service implements the API dependencies for the match simulator.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions *repository.ShardedStore[*MatchSession]
	store    *stats.Store
	calc     *tactics.Calculator
	enricher enrich.Enricher

	// Configuration
	shardCount    int
	seed          int64
	tickDelay     time.Duration
	eventDelay    time.Duration
	goalMode      timeline.GoalMode
	baselinesFile string
	enrichTimeout time.Duration

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithShardCount sets the shard count of the session registry.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithSeed seeds every session's randomness. The default makes matches for
// identical inputs reproducible; zero switches to time-based entropy.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithTickDelay sets the pause after each minute tick frame.
func WithTickDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.tickDelay = d
		}
	}
}

// WithEventDelay sets the pause after each event frame.
func WithEventDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.eventDelay = d
		}
	}
}

// WithGoalMode selects how goals are placed on timelines.
func WithGoalMode(mode timeline.GoalMode) Option {
	return func(s *Service) {
		if mode == timeline.GoalModeBernoulli || mode == timeline.GoalModePoisson {
			s.goalMode = mode
		}
	}
}

// WithBaselinesFile points the league baseline store at a YAML file instead
// of the builtin table.
func WithBaselinesFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.baselinesFile = path
		}
	}
}

// WithEnrichTimeout bounds each commentary enrichment attempt before the
// stream falls back to template text.
func WithEnrichTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.enrichTimeout = d
		}
	}
}

// WithStatsStore injects a prebuilt baseline store, bypassing file loading.
func WithStatsStore(store *stats.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEnricher sets the commentary enricher shared by all sessions.
func WithEnricher(e enrich.Enricher) Option {
	return func(s *Service) {
		if e != nil {
			s.enricher = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seed:          defaultSessionSeed,
		tickDelay:     defaultTickDelay,
		eventDelay:    defaultEventDelay,
		goalMode:      timeline.GoalModeBernoulli,
		enrichTimeout: defaultEnrichTimeout,
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting match service...")

	// Initialize components
	if s.store == nil {
		var storeOpts []stats.Option
		if s.baselinesFile != "" {
			storeOpts = append(storeOpts, stats.WithBaselinesFile(s.baselinesFile))
		}
		store, err := stats.NewStore(storeOpts...)
		if err != nil {
			metrics.RecordConfigurationError()
			return fmt.Errorf("loading league baselines: %w", err)
		}
		s.store = store
	}

	calc, err := tactics.NewCalculator(tactics.WithBaselines(s.store))
	if err != nil {
		metrics.RecordConfigurationError()
		return fmt.Errorf("building tactic calculator: %w", err)
	}
	s.calc = calc

	if s.enricher == nil {
		s.enricher = enrich.NewComposite(nil, enrich.WithTimeout(s.enrichTimeout))
	}

	var registryOpts []repository.Option[*MatchSession]
	if s.shardCount > 0 {
		registryOpts = append(registryOpts, repository.WithShardCount[*MatchSession](s.shardCount))
	}
	s.sessions = repository.NewShardedStore[*MatchSession](ctx, registryOpts...)
	s.logger.Info(ctx, "using sharded session registry")

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("seed", int(s.seed)),
		logger.String("goalMode", string(s.goalMode)),
		logger.Duration("tickDelay", s.tickDelay),
		logger.Duration("eventDelay", s.eventDelay),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping match service...")

	// Close session registry
	if s.sessions != nil {
		_ = s.sessions.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "match service stopped")
}

// ready reports whether Start has run. Components are immutable once
// started, so operations read them without the lock after this check.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// CreateMatch validates the two sides, builds a session for them, and
// registers it. The returned info carries the id every other operation
// takes.
func (s *Service) CreateMatch(ctx context.Context, home, away model.TeamConfig, conditions model.MatchConditions) (MatchInfo, error) {
	if err := s.ready(); err != nil {
		return MatchInfo{}, err
	}
	if home.Name == "" || away.Name == "" {
		metrics.RecordConfigurationError()
		return MatchInfo{}, fmt.Errorf("%w: home and away must both be named", ErrMissingTeamName)
	}

	session, err := NewMatchSession(
		SessionTeams(home, away),
		SessionConditions(conditions),
		SessionSeed(s.seed),
		SessionTickDelay(s.tickDelay),
		SessionEventDelay(s.eventDelay),
		SessionGoalMode(s.goalMode),
		SessionStats(s.store),
		SessionCalculator(s.calc),
		SessionEnricher(s.enricher),
		SessionLogger(s.logger.Named("session")),
	)
	if err != nil {
		metrics.RecordConfigurationError()
		return MatchInfo{}, err
	}

	if err := s.sessions.Put(ctx, session.ID(), session); err != nil {
		return MatchInfo{}, err
	}

	metrics.RecordMatchStarted()
	metrics.UpdateActiveSessions(s.sessions.Count(ctx))
	s.logger.Info(ctx, "match created",
		logger.String("matchID", session.ID()),
		logger.String("home", home.Name),
		logger.String("away", away.Name),
		logger.String("homeTactic", home.Tactic),
		logger.String("awayTactic", away.Tactic),
	)

	return MatchInfo{
		ID:        session.ID(),
		HomeTeam:  home.Name,
		AwayTeam:  away.Name,
		State:     session.State().String(),
		CreatedAt: session.createdAt,
	}, nil
}

// Session returns the live session for a match id.
func (s *Service) Session(ctx context.Context, id string) (*MatchSession, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, id)
}

// StreamFirstHalf starts streaming the first half of a registered match.
func (s *Service) StreamFirstHalf(ctx context.Context, id string) (<-chan model.Frame, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.StreamFirstHalf(ctx)
}

// StreamSecondHalf starts streaming the second half of a registered match.
func (s *Service) StreamSecondHalf(ctx context.Context, id string) (<-chan model.Frame, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.StreamSecondHalf(ctx)
}

// UpdateTactic switches one side's tactic mid-match and returns the
// recomputed tactical profile.
func (s *Service) UpdateTactic(ctx context.Context, id string, side model.Side, tactic string) (tactics.Profile, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return tactics.Profile{}, err
	}
	return session.UpdateTactic(ctx, side, tactic)
}

// Snapshot returns the current view of a registered match.
func (s *Service) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// CloseMatch removes a match from the registry. Whatever state it was in
// is final; a closed match cannot be streamed again.
func (s *Service) CloseMatch(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	session, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return err
	}

	metrics.UpdateActiveSessions(s.sessions.Count(ctx))
	s.logger.Info(ctx, "match closed",
		logger.String("matchID", id),
		logger.String("state", session.State().String()),
	)
	return nil
}

// ActiveSessions returns the number of registered matches.
func (s *Service) ActiveSessions(ctx context.Context) int {
	if err := s.ready(); err != nil {
		return 0
	}
	return s.sessions.Count(ctx)
}

// Tactics lists the known tactic specs in calculator order.
func (s *Service) Tactics(ctx context.Context) ([]tactics.Spec, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.calc.Tactics(), nil
}

// MatchInfo is the creation-time view of a match.
type MatchInfo struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}
