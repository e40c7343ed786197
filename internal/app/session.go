// Package service wires the match simulation together: it owns the live
// sessions, streams their halves as frame sequences, and exposes the
// operations the transport layer calls.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/calcio/internal/adapters/enrich"
	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
	"github.com/okian/calcio/internal/domain/timeline"
	"github.com/okian/calcio/pkg/logger"
	"github.com/okian/calcio/pkg/metrics"
)

const (
	// defaultSessionSeed keeps unconfigured sessions reproducible.
	defaultSessionSeed = 42

	// defaultTickDelay paces the per-minute tick frames.
	defaultTickDelay = 100 * time.Millisecond

	// defaultEventDelay paces event frames so goals land with a beat.
	defaultEventDelay = 300 * time.Millisecond

	// defaultEnrichTimeout bounds each commentary enrichment attempt.
	defaultEnrichTimeout = 2 * time.Second

	// possessionJitter is the half-width of the per-tick possession wobble.
	possessionJitter = 2.0
)

// Stream duration metric labels.
const (
	halfFirst  = "first_half"
	halfSecond = "second_half"
)

// MatchSession is one live match: a timeline generator plus the running
// score, stats, and frame history that consuming a stream advances. All
// exported methods are safe for concurrent use.
type MatchSession struct {
	mu sync.Mutex

	id         string
	home       model.TeamConfig
	away       model.TeamConfig
	conditions model.MatchConditions
	createdAt  time.Time

	gen      *timeline.Generator
	enricher enrich.Enricher
	rng      *rand.Rand
	logger   logger.Logger

	seed       int64
	tickDelay  time.Duration
	eventDelay time.Duration
	goalMode   timeline.GoalMode
	store      *stats.Store
	calc       *tactics.Calculator

	minute    int
	score     model.Score
	stats     model.MatchStats
	events    []model.Frame
	streaming bool
}

// SessionOption configures a MatchSession under construction.
type SessionOption func(*MatchSession)

// SessionID overrides the generated match identifier.
func SessionID(id string) SessionOption {
	return func(s *MatchSession) {
		if id != "" {
			s.id = id
		}
	}
}

// SessionTeams sets the two sides. Required: the underlying generator
// rejects construction without them.
func SessionTeams(home, away model.TeamConfig) SessionOption {
	return func(s *MatchSession) {
		s.home = home
		s.away = away
	}
}

// SessionConditions sets the match-day conditions applied on top of the
// tactical baseline.
func SessionConditions(cond model.MatchConditions) SessionOption {
	return func(s *MatchSession) {
		s.conditions = cond
	}
}

// SessionSeed seeds the session's randomness. Zero selects time-based
// entropy; any other value makes the match fully reproducible.
func SessionSeed(seed int64) SessionOption {
	return func(s *MatchSession) {
		s.seed = seed
	}
}

// SessionTickDelay sets the pause after each minute tick. Zero disables
// pacing, which tests rely on. Negative values are ignored.
func SessionTickDelay(d time.Duration) SessionOption {
	return func(s *MatchSession) {
		if d >= 0 {
			s.tickDelay = d
		}
	}
}

// SessionEventDelay sets the pause after each event frame. Zero disables
// pacing. Negative values are ignored.
func SessionEventDelay(d time.Duration) SessionOption {
	return func(s *MatchSession) {
		if d >= 0 {
			s.eventDelay = d
		}
	}
}

// SessionEnricher sets the commentary enricher. Nil is ignored and the
// template fallback chain is used.
func SessionEnricher(e enrich.Enricher) SessionOption {
	return func(s *MatchSession) {
		if e != nil {
			s.enricher = e
		}
	}
}

// SessionGoalMode selects how goals are placed on the timeline.
func SessionGoalMode(mode timeline.GoalMode) SessionOption {
	return func(s *MatchSession) {
		s.goalMode = mode
	}
}

// SessionStats supplies the league baseline store shared across sessions.
func SessionStats(store *stats.Store) SessionOption {
	return func(s *MatchSession) {
		if store != nil {
			s.store = store
		}
	}
}

// SessionCalculator supplies the tactic calculator shared across sessions.
func SessionCalculator(calc *tactics.Calculator) SessionOption {
	return func(s *MatchSession) {
		if calc != nil {
			s.calc = calc
		}
	}
}

// SessionLogger sets the logger for this session.
func SessionLogger(l logger.Logger) SessionOption {
	return func(s *MatchSession) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMatchSession builds a session for the configured teams. Tactic and
// attribute problems are fatal here, before any frame is streamed.
func NewMatchSession(opts ...SessionOption) (*MatchSession, error) {
	s := &MatchSession{
		id:         uuid.NewString(),
		seed:       defaultSessionSeed,
		tickDelay:  defaultTickDelay,
		eventDelay: defaultEventDelay,
		createdAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}
	if s.enricher == nil {
		s.enricher = enrich.NewComposite(nil)
	}
	if s.rng == nil {
		seed := s.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness, not crypto
	}

	genOpts := []timeline.Option{
		timeline.WithTeams(s.home, s.away),
		timeline.WithConditions(s.conditions),
		timeline.WithRand(s.rng),
	}
	if s.store != nil {
		genOpts = append(genOpts, timeline.WithStats(s.store))
	}
	if s.calc != nil {
		genOpts = append(genOpts, timeline.WithCalculator(s.calc))
	}
	if s.goalMode != "" {
		genOpts = append(genOpts, timeline.WithGoalMode(s.goalMode))
	}
	gen, err := timeline.NewGenerator(genOpts...)
	if err != nil {
		return nil, err
	}
	s.gen = gen
	return s, nil
}

// ID returns the match identifier.
func (s *MatchSession) ID() string {
	return s.id
}

// State reports the session's position in the match lifecycle.
func (s *MatchSession) State() timeline.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.State()
}

// StreamFirstHalf generates the first half and starts emitting it. The
// returned channel carries one tick frame per minute interleaved with that
// minute's events and is closed when the half has been delivered, at which
// point the session sits at half-time. Generation problems surface here;
// once the channel exists the stream itself cannot fail. Cancelling ctx
// abandons delivery but still completes the half internally, so the
// lifecycle and the per-seed event sequence stay intact.
func (s *MatchSession) StreamFirstHalf(ctx context.Context) (<-chan model.Frame, error) {
	return s.stream(ctx, halfFirst, model.FirstHalfStart, model.HalfTimeMinute, s.gen.FirstHalf, s.finishFirstHalf)
}

// StreamSecondHalf mirrors StreamFirstHalf for the second half. It fails
// until the first half has been streamed, and leaves the session at
// full-time once the channel closes.
func (s *MatchSession) StreamSecondHalf(ctx context.Context) (<-chan model.Frame, error) {
	return s.stream(ctx, halfSecond, model.SecondHalfStart, model.FullTimeMinute, s.gen.SecondHalf, s.finishSecondHalf)
}

// UpdateTactic switches one side's tactic and rebuilds the remaining match
// parameters. The returned profile reflects the new tactical baseline.
func (s *MatchSession) UpdateTactic(ctx context.Context, side model.Side, tactic string) (tactics.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.gen.UpdateTactic(side, tactic)
	if err != nil {
		return tactics.Profile{}, err
	}
	metrics.RecordTacticChange()
	s.logger.Info(ctx, "tactic changed",
		logger.String("match_id", s.id),
		logger.String("team", s.teamName(side)),
		logger.String("tactic", tactic))
	return profile, nil
}

// Snapshot returns a point-in-time view of the match: identity, lifecycle
// state, clock, score, stats, and every event frame emitted so far.
func (s *MatchSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]model.Frame, len(s.events))
	copy(events, s.events)
	return Snapshot{
		ID:        s.id,
		HomeTeam:  s.home.Name,
		AwayTeam:  s.away.Name,
		State:     s.gen.State().String(),
		Minute:    s.minute,
		Score:     s.score,
		Stats:     s.stats,
		Events:    events,
		CreatedAt: s.createdAt,
	}
}

// Snapshot is the transport-facing view of a session.
type Snapshot struct {
	ID        string           `json:"id"`
	HomeTeam  string           `json:"homeTeam"`
	AwayTeam  string           `json:"awayTeam"`
	State     string           `json:"state"`
	Minute    int              `json:"minute"`
	Score     model.Score      `json:"score"`
	Stats     model.MatchStats `json:"stats"`
	Events    []model.Frame    `json:"events"`
	CreatedAt time.Time        `json:"createdAt"`
}

// stream generates one half under the lock and hands it to the emit
// goroutine. Lifecycle violations and a stream already in flight are
// caller errors and surface before any frame moves.
func (s *MatchSession) stream(ctx context.Context, half string, lo, hi int, generate func() ([]model.TimelineEvent, error), finish func() error) (<-chan model.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming {
		return nil, fmt.Errorf("%w: match %s", ErrStreamActive, s.id)
	}

	start := time.Now()
	events, err := generate()
	metrics.RecordGenerateLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}

	s.streaming = true
	s.logger.Info(ctx, "streaming half",
		logger.String("match_id", s.id),
		logger.String("half", half),
		logger.Int("events", len(events)))

	ch := make(chan model.Frame)
	go s.emit(ctx, ch, events, half, lo, hi, finish)
	return ch, nil
}

// emit walks the half minute by minute: the minute tick first, then every
// event up to and including that minute, then whatever lies beyond the
// final minute (the closing whistle in injury time). Cancellation flips
// delivery off but the walk continues so score, stats, and lifecycle end
// up exactly where a consumed stream would leave them.
func (s *MatchSession) emit(ctx context.Context, ch chan<- model.Frame, events []model.TimelineEvent, half string, lo, hi int, finish func() error) {
	start := time.Now()
	metrics.IncStreamsOpen()
	defer func() {
		close(ch)
		metrics.DecStreamsOpen()
		metrics.RecordStreamDuration(half, time.Since(start).Seconds())
	}()

	live := true
	deliver := func(frame model.Frame, delay time.Duration) {
		if !live {
			return
		}
		select {
		case ch <- frame:
		case <-ctx.Done():
			live = false
			return
		}
		if delay <= 0 {
			return
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			live = false
		}
	}

	next := 0
	for minute := lo; minute <= hi; minute++ {
		deliver(s.tickMinute(minute), s.tickDelay)
		for next < len(events) && events[next].Minute() <= minute {
			deliver(s.applyEvent(ctx, events[next]), s.eventDelay)
			next++
		}
	}
	for ; next < len(events); next++ {
		deliver(s.applyEvent(ctx, events[next]), s.eventDelay)
	}

	s.mu.Lock()
	s.streaming = false
	err := finish()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error(ctx, "half completion failed",
			logger.String("match_id", s.id),
			logger.String("half", half),
			logger.Error(err))
		return
	}
	if !live {
		s.logger.Debug(ctx, "stream abandoned, half completed internally",
			logger.String("match_id", s.id),
			logger.String("half", half))
	}
}

// tickMinute advances the clock and the continuous stats, then freezes the
// result into a tick frame. Counters interpolate toward their per-90
// targets and never move backwards; goal bumps that run ahead of the
// interpolation stick.
func (s *MatchSession) tickMinute(minute int) model.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.minute = minute
	params := s.gen.Params()
	progress := float64(minute) / float64(model.FullTimeMinute)

	for _, side := range []model.Side{model.SideHome, model.SideAway} {
		target := params.Team(side)
		team := s.stats.Team(side)
		raiseTo(&team.Shots, target.Shots*progress)
		raiseTo(&team.ShotsOnTarget, target.Target*progress)
		raiseTo(&team.Corners, target.Corners*progress)
		raiseTo(&team.Fouls, target.Fouls*progress)
		if team.ShotsOnTarget > team.Shots {
			team.ShotsOnTarget = team.Shots
		}
	}

	home := params.Home.Possession + (s.rng.Float64()*2-1)*possessionJitter
	if home < 0 {
		home = 0
	} else if home > 100 {
		home = 100
	}
	s.stats.Home.Possession = home
	s.stats.Away.Possession = 100 - home

	return model.NewTickFrame(minute, s.score, s.stats)
}

// raiseTo lifts a counter to its interpolated target, never lowering it.
func raiseTo(counter *int, target float64) {
	if v := int(target); v > *counter {
		*counter = v
	}
}

// applyEvent folds one timeline event into the running score and stats,
// asks the enricher for its line, and records the resulting frame. Goals
// count as an extra shot on target so the box score can never contradict
// the scoreline.
func (s *MatchSession) applyEvent(ctx context.Context, ev model.TimelineEvent) model.Frame {
	s.mu.Lock()
	score := s.score
	matchStats := s.stats
	s.mu.Unlock()

	side := ev.Side()
	switch ev.Type() {
	case model.EventGoal:
		switch side {
		case model.SideHome:
			score.Home++
		case model.SideAway:
			score.Away++
		}
		if team := matchStats.Team(side); team != nil {
			team.Shots++
			team.ShotsOnTarget++
		}
	case model.EventYellowCard:
		if team := matchStats.Team(side); team != nil {
			team.YellowCards++
		}
	case model.EventRedCard:
		if team := matchStats.Team(side); team != nil {
			team.RedCards++
		}
	}

	frame := model.NewEventFrame(ev, s.describe(ctx, ev, side, score), score, matchStats)

	s.mu.Lock()
	s.score = score
	s.stats = matchStats
	if m := ev.Minute(); m > s.minute {
		s.minute = m
	}
	s.events = append(s.events, frame)
	s.mu.Unlock()

	metrics.RecordEventEmitted(string(ev.Type()))
	return frame
}

// describe runs the enricher for one event. Enrichment can degrade but a
// frame never ships without a line: any error falls back to the builtin
// templates directly.
func (s *MatchSession) describe(ctx context.Context, ev model.TimelineEvent, side model.Side, score model.Score) string {
	event := enrich.Event{
		Minute: ev.Minute(),
		Type:   ev.Type(),
		Team:   s.teamName(side),
		Score:  score,
	}
	text, err := s.enricher.Enrich(ctx, event)
	if err != nil {
		s.logger.Warn(ctx, "enrichment failed, using fallback text",
			logger.String("match_id", s.id),
			logger.Int("minute", event.Minute),
			logger.String("type", string(event.Type)),
			logger.Error(err))
		text, _ = enrich.NewFallback().Enrich(ctx, event)
	}
	return text
}

func (s *MatchSession) teamName(side model.Side) string {
	switch side {
	case model.SideHome:
		return s.home.Name
	case model.SideAway:
		return s.away.Name
	default:
		return ""
	}
}

func (s *MatchSession) finishFirstHalf() error {
	return s.gen.MarkHalfTime()
}

func (s *MatchSession) finishSecondHalf() error {
	if err := s.gen.MarkFullTime(); err != nil {
		return err
	}
	metrics.RecordMatchCompleted()
	metrics.RecordGoalsPerMatch(s.score.Home + s.score.Away)
	return nil
}
