package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CALCIO_CONFIG is set
//  3. env (prefix CALCIO_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("CALCIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CALCIO_ADDR, CALCIO_GOAL_MODE, ...
	// Map env keys like CALCIO_TICK_DELAY_MS -> tick_delay_ms (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CALCIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "calcio_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects settings the service could not run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ShardCount < 1:
		return fmt.Errorf("%w: shard_count must be positive, got %d", ErrInvalidConfig, c.ShardCount)
	case c.TickDelayMS < 0:
		return fmt.Errorf("%w: tick_delay_ms must not be negative, got %d", ErrInvalidConfig, c.TickDelayMS)
	case c.EventDelayMS < 0:
		return fmt.Errorf("%w: event_delay_ms must not be negative, got %d", ErrInvalidConfig, c.EventDelayMS)
	case c.EnrichTimeoutMS < 0:
		return fmt.Errorf("%w: enrich_timeout_ms must not be negative, got %d", ErrInvalidConfig, c.EnrichTimeoutMS)
	}
	switch c.GoalMode {
	case "bernoulli", "poisson":
	default:
		return fmt.Errorf("%w: goal_mode must be bernoulli or poisson, got %q", ErrInvalidConfig, c.GoalMode)
	}
	return nil
}
