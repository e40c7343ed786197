package timeline

import (
	"math/rand"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTeams sets the two team configurations. Required.
func WithTeams(home, away model.TeamConfig) Option {
	return func(g *Generator) {
		g.home = home
		g.away = away
	}
}

// WithStats sets the statistic baseline store.
func WithStats(s *stats.Store) Option {
	return func(g *Generator) {
		if s != nil {
			g.store = s
		}
	}
}

// WithCalculator sets the tactical fit calculator.
func WithCalculator(c *tactics.Calculator) Option {
	return func(g *Generator) {
		if c != nil {
			g.calc = c
		}
	}
}

// WithConditions enables the environmental conditions stage.
func WithConditions(cond model.MatchConditions) Option {
	return func(g *Generator) {
		g.conditions = cond
	}
}

// WithStages appends extra stages after the built-in pipeline.
func WithStages(stages ...Stage) Option {
	return func(g *Generator) {
		g.extra = append(g.extra, stages...)
	}
}

// WithSeed seeds the generator's random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness, not crypto
	}
}

// WithRand shares an existing random source, serializing draws with the
// caller's other uses of it.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithGoalMode selects the goal placement mode.
func WithGoalMode(mode GoalMode) Option {
	return func(g *Generator) {
		if mode == GoalModeBernoulli || mode == GoalModePoisson {
			g.goalMode = mode
		}
	}
}

// WithSubstitutionCap caps substitutions per team per match.
func WithSubstitutionCap(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.subCap = n
		}
	}
}

// WithSubstitutionWindow sets the minute window substitutions are drawn in.
func WithSubstitutionWindow(lo, hi int) Option {
	return func(g *Generator) {
		if lo >= model.FirstHalfStart && hi <= model.FullTimeMinute && lo <= hi {
			g.subLo = lo
			g.subHi = hi
		}
	}
}
