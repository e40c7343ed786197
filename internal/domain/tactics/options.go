package tactics

import (
	"github.com/okian/calcio/internal/domain/stats"
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithBaselines sets the statistic baseline store the calculator derives
// per-90 targets from.
func WithBaselines(s *stats.Store) Option {
	return func(c *Calculator) {
		if s != nil {
			c.baselines = s
		}
	}
}

// WithTactic registers or replaces a tactic. The spec is validated at
// construction together with the built-in table.
func WithTactic(spec Spec) Option {
	return func(c *Calculator) {
		c.tactics[spec.Name] = spec
	}
}
