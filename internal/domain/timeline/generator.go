// Package timeline generates the ordered event list for each half of a
// match from statistic baselines, tactical effect profiles, and optional
// environmental conditions. Generation is deterministic under a fixed seed.
package timeline

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
)

// Late-match clustering weights for minute placement.
const (
	goalClusterMinute = 75
	goalClusterWeight = 1.4
	cardClusterMinute = 60
	cardClusterWeight = 1.3
)

const (
	// redDelayMax bounds how long after a yellow the follow-up red lands.
	redDelayMax = 25

	// injuryTimeRange bounds the full-time injury offset (1..6 minutes).
	injuryTimeRange = 6

	defaultSubstitutionCap = 3
	defaultSubstitutionLo  = 46
	defaultSubstitutionHi  = 75

	// defaultSeed keeps unconfigured generators reproducible.
	defaultSeed = 42
)

// GoalMode selects how goals are placed on the timeline.
type GoalMode string

// Goal placement modes. Bernoulli runs per-minute trials on the goal
// probability; Poisson draws a per-half count and places minutes with the
// late-match weighting. Expected goals match across modes.
const (
	GoalModeBernoulli GoalMode = "bernoulli"
	GoalModePoisson   GoalMode = "poisson"
)

// State is the generator's position in the match lifecycle.
type State int

// Lifecycle states, strictly one-directional.
const (
	StateNotStarted State = iota
	StateFirstHalfGenerated
	StateHalfTime
	StateSecondHalfGenerated
	StateFullTime
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateFirstHalfGenerated:
		return "first_half_generated"
	case StateHalfTime:
		return "half_time"
	case StateSecondHalfGenerated:
		return "second_half_generated"
	case StateFullTime:
		return "full_time"
	default:
		return "unknown"
	}
}

// Generator produces the per-half event lists for one match. It is not safe
// for concurrent use; the owning session serializes access.
type Generator struct {
	store      *stats.Store
	calc       *tactics.Calculator
	home       model.TeamConfig
	away       model.TeamConfig
	conditions model.MatchConditions
	extra      []Stage

	rng      *rand.Rand
	goalMode GoalMode
	subCap   int
	subLo    int
	subHi    int

	state       State
	params      MatchParams
	pendingReds []model.Card
	pendingSubs []model.Substitution
	subsDrawn   bool
}

// NewGenerator builds a Generator for the configured teams. Missing or
// malformed tactic, attribute, or condition data is fatal here, before any
// event is produced.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		goalMode: GoalModeBernoulli,
		subCap:   defaultSubstitutionCap,
		subLo:    defaultSubstitutionLo,
		subHi:    defaultSubstitutionHi,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.home.Attributes == nil && g.away.Attributes == nil {
		return nil, ErrMissingTeams
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(defaultSeed)) //nolint:gosec // simulation randomness, not crypto
	}
	if g.store == nil {
		st, err := stats.NewStore()
		if err != nil {
			return nil, err
		}
		g.store = st
	}
	if g.calc == nil {
		calc, err := tactics.NewCalculator(tactics.WithBaselines(g.store))
		if err != nil {
			return nil, err
		}
		g.calc = calc
	}

	if err := g.rebuild(); err != nil {
		return nil, err
	}
	return g, nil
}

// rebuild runs the stage pipeline from the base rates. Called at
// construction and again on every tactic change; g.params is only replaced
// when the whole pipeline succeeds.
func (g *Generator) rebuild() error {
	p, err := NewBaseParams(g.store)
	if err != nil {
		return err
	}

	stages := []Stage{TacticalStage(g.calc, g.home, g.away)}
	if g.conditions != (model.MatchConditions{}) {
		stages = append(stages, ConditionsStage(g.conditions))
	}
	stages = append(stages, g.extra...)

	for _, stage := range stages {
		if err := stage(&p); err != nil {
			return err
		}
	}
	g.params = p
	return nil
}

// State reports the generator's lifecycle position.
func (g *Generator) State() State {
	return g.state
}

// Params returns a copy of the current generation parameters.
func (g *Generator) Params() MatchParams {
	return g.params
}

// FirstHalf generates minutes 1-45 and moves to FirstHalfGenerated. The
// returned list ends with the half-time marker.
func (g *Generator) FirstHalf() ([]model.TimelineEvent, error) {
	if g.state != StateNotStarted {
		return nil, fmt.Errorf("%w: first half in state %s", ErrHalfAlreadyGenerated, g.state)
	}

	events := g.generateHalf(model.FirstHalfStart, model.HalfTimeMinute)
	events = append(events, model.HalfTimeMarker{})
	g.state = StateFirstHalfGenerated
	return events, nil
}

// MarkHalfTime records that the first half has been fully consumed.
func (g *Generator) MarkHalfTime() error {
	if g.state != StateFirstHalfGenerated {
		return fmt.Errorf("%w: half-time from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateHalfTime
	return nil
}

// SecondHalf generates minutes 46-90 and moves to SecondHalfGenerated. The
// returned list ends with the full-time marker, placed after injury time.
func (g *Generator) SecondHalf() ([]model.TimelineEvent, error) {
	switch g.state {
	case StateHalfTime:
	case StateNotStarted, StateFirstHalfGenerated:
		return nil, ErrSecondHalfBeforeHalfTime
	default:
		return nil, fmt.Errorf("%w: second half in state %s", ErrHalfAlreadyGenerated, g.state)
	}

	events := g.generateHalf(model.SecondHalfStart, model.FullTimeMinute)
	events = append(events, model.FullTimeMarker{
		AtMinute: model.FullTimeMinute + 1 + g.rng.Intn(injuryTimeRange),
	})
	g.state = StateSecondHalfGenerated
	return events, nil
}

// MarkFullTime records that the second half has been fully consumed.
func (g *Generator) MarkFullTime() error {
	if g.state != StateSecondHalfGenerated {
		return fmt.Errorf("%w: full-time from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateFullTime
	return nil
}

// UpdateTactic swaps one side's tactic and reruns the stage pipeline for
// all not-yet-generated minutes. Already-generated halves are never altered;
// pending follow-up reds survive the change. Returns the changed side's
// recomputed profile.
func (g *Generator) UpdateTactic(side model.Side, tactic string) (tactics.Profile, error) {
	if g.state == StateFullTime {
		return tactics.Profile{}, fmt.Errorf("%w: tactic change", ErrMatchFinished)
	}

	var cfg *model.TeamConfig
	switch side {
	case model.SideHome:
		cfg = &g.home
	case model.SideAway:
		cfg = &g.away
	default:
		return tactics.Profile{}, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}

	prev := cfg.Tactic
	cfg.Tactic = tactic
	if err := g.rebuild(); err != nil {
		cfg.Tactic = prev
		return tactics.Profile{}, err
	}
	return g.params.Profile(side), nil
}

// generateHalf produces the sorted mechanical events for [lo,hi]: goals,
// carried-over reds, yellows with follow-up reds, and substitutions. Ties on
// minute keep insertion order, so the output is deterministic per seed.
func (g *Generator) generateHalf(lo, hi int) []model.TimelineEvent {
	frac := float64(hi-lo+1) / float64(model.FullTimeMinute)
	var events []model.TimelineEvent

	switch g.goalMode {
	case GoalModePoisson:
		for _, side := range []model.Side{model.SideHome, model.SideAway} {
			n := poisson(g.rng, g.params.Team(side).Goals*frac)
			for i := 0; i < n; i++ {
				m := weightedMinute(g.rng, lo, hi, goalClusterMinute, goalClusterWeight)
				events = append(events, model.Goal{AtMinute: m, Team: side})
			}
		}
	default:
		for m := lo; m <= hi; m++ {
			if g.rng.Float64() < g.params.Home.GoalProb {
				events = append(events, model.Goal{AtMinute: m, Team: model.SideHome})
			}
			if g.rng.Float64() < g.params.Away.GoalProb {
				events = append(events, model.Goal{AtMinute: m, Team: model.SideAway})
			}
		}
	}

	for _, c := range g.pendingReds {
		events = append(events, c)
	}
	g.pendingReds = nil

	for _, side := range []model.Side{model.SideHome, model.SideAway} {
		n := poisson(g.rng, g.params.Team(side).Yellows*frac)
		for i := 0; i < n; i++ {
			m := weightedMinute(g.rng, lo, hi, cardClusterMinute, cardClusterWeight)
			events = append(events, model.Card{AtMinute: m, Team: side, Color: model.CardYellow})

			if m >= model.FullTimeMinute || g.rng.Float64() >= g.params.RedAfterYellow {
				continue
			}
			limit := m + redDelayMax
			if limit > model.FullTimeMinute {
				limit = model.FullTimeMinute
			}
			red := model.Card{AtMinute: m + 1 + g.rng.Intn(limit-m), Team: side, Color: model.CardRed}
			if red.AtMinute > hi {
				g.pendingReds = append(g.pendingReds, red)
			} else {
				events = append(events, red)
			}
		}
	}

	for _, s := range g.pendingSubs {
		events = append(events, s)
	}
	g.pendingSubs = nil

	if !g.subsDrawn && g.subLo <= hi {
		for _, side := range []model.Side{model.SideHome, model.SideAway} {
			for i := 0; i < g.subCap; i++ {
				sub := model.Substitution{
					AtMinute: g.subLo + g.rng.Intn(g.subHi-g.subLo+1),
					Team:     side,
				}
				if sub.AtMinute > hi {
					g.pendingSubs = append(g.pendingSubs, sub)
				} else {
					events = append(events, sub)
				}
			}
		}
		g.subsDrawn = true
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute() < events[j].Minute()
	})
	return events
}
