package enrich

import (
	"time"

	"github.com/okian/calcio/pkg/logger"
)

// Option applies a configuration option to the Composite.
type Option func(*Composite)

// WithTimeout bounds each chain attempt. Zero means no per-attempt bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Composite) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the composite.
func WithLogger(l logger.Logger) Option {
	return func(c *Composite) {
		if l != nil {
			c.logger = l
		}
	}
}
