// Package enrich turns timeline events into human-readable descriptions.
//
// The built-in fallback renders fixed templates and never fails. Richer
// enrichers (commentary services, translators) can be chained in front of
// it through the Composite; any failure along the chain degrades to the
// next entry instead of breaking the event stream.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/pkg/logger"
	"github.com/okian/calcio/pkg/metrics"
)

// Event is the context an enricher receives for one timeline event.
type Event struct {
	Minute int
	Type   model.EventType
	Team   string      // display name of the involved team; empty for neutral markers
	Score  model.Score // running score after the event
}

// Enricher produces the description text for an event.
type Enricher interface {
	Enrich(ctx context.Context, ev Event) (string, error)
}

// EnricherFunc adapts a plain function to the Enricher interface.
type EnricherFunc func(ctx context.Context, ev Event) (string, error)

func (f EnricherFunc) Enrich(ctx context.Context, ev Event) (string, error) {
	return f(ctx, ev)
}

// Fallback renders the built-in description templates. It never fails;
// event types with no template (minute ticks) yield an empty string.
type Fallback struct{}

// NewFallback creates the template-only enricher.
func NewFallback() Fallback {
	return Fallback{}
}

func (Fallback) Enrich(_ context.Context, ev Event) (string, error) {
	switch ev.Type {
	case model.EventGoal:
		return fmt.Sprintf("GOAL! %s score!", ev.Team), nil
	case model.EventYellowCard:
		return fmt.Sprintf("Yellow card for %s.", ev.Team), nil
	case model.EventRedCard:
		return fmt.Sprintf("RED CARD! %s down to 10 men!", ev.Team), nil
	case model.EventSubstitution:
		return fmt.Sprintf("%s make a substitution.", ev.Team), nil
	case model.EventHalfTime:
		return "Half-time whistle.", nil
	case model.EventFullTime:
		return "Full-time, all over!", nil
	default:
		return "", nil
	}
}

// Composite tries a chain of enrichers in order and falls back to the
// built-in templates when the whole chain fails, so Enrich never returns
// an error to the stream.
type Composite struct {
	chain    []Enricher
	fallback Fallback
	timeout  time.Duration
	logger   logger.Logger
}

// NewComposite builds a Composite over the given chain. A nil or empty
// chain yields template-only output.
func NewComposite(chain []Enricher, opts ...Option) *Composite {
	c := &Composite{
		chain:  chain,
		logger: logger.Get().Named("enrich"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich walks the chain and returns the first non-empty description. A
// failed or empty attempt falls through to the next entry; the terminal
// fallback always answers.
func (c *Composite) Enrich(ctx context.Context, ev Event) (string, error) {
	for _, e := range c.chain {
		text, err := c.attempt(ctx, e, ev)
		if err != nil {
			metrics.RecordEnrichmentFallback()
			c.logger.Warn(ctx, "enricher failed, falling back",
				logger.Int("minute", ev.Minute),
				logger.String("type", string(ev.Type)),
				logger.Error(fmt.Errorf("%w: %v", ErrEnrichment, err)),
			)
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return c.fallback.Enrich(ctx, ev)
}

func (c *Composite) attempt(ctx context.Context, e Enricher, ev Event) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return e.Enrich(ctx, ev)
}
