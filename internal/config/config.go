// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Default simulation pacing, in milliseconds. Tick delay paces the
// per-minute clock frames; event delay adds a beat after goals and cards.
const (
	defaultTickDelayMS  = 100
	defaultEventDelayMS = 300
)

// defaultSeed keeps served matches reproducible out of the box. Configure
// seed zero for time-based entropy.
const defaultSeed = 42

// defaultEnrichTimeoutMS bounds each commentary enrichment attempt before
// the stream falls back to template text.
const defaultEnrichTimeoutMS = 2000

// defaultShardCount spreads the session registry over this many shards.
const defaultShardCount = 8

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShardCount configures the number of shards in the session registry.
	ShardCount int `koanf:"shard_count"`

	// Seed seeds every match's randomness. Zero selects time-based entropy;
	// any other value makes matches for identical inputs reproducible.
	Seed int64 `koanf:"seed"`

	// TickDelayMS and EventDelayMS pace the streamed frames. Zero disables
	// pacing, which is what tests and batch consumers want.
	TickDelayMS  int `koanf:"tick_delay_ms"`
	EventDelayMS int `koanf:"event_delay_ms"`

	// GoalMode selects goal placement: bernoulli or poisson.
	GoalMode string `koanf:"goal_mode"`

	// BaselinesFile optionally points at a YAML file overriding the built-in
	// league statistic baselines. A configured file that cannot be read is
	// fatal at startup.
	BaselinesFile string `koanf:"baselines_file"`

	// EnrichTimeoutMS bounds each commentary enrichment attempt.
	EnrichTimeoutMS int `koanf:"enrich_timeout_ms"`
}

// New creates a Config populated with defaults. Load layers file and
// environment overrides on top.
func New() *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		ShardCount:      defaultShardCount,
		Seed:            defaultSeed,
		TickDelayMS:     defaultTickDelayMS,
		EventDelayMS:    defaultEventDelayMS,
		GoalMode:        "bernoulli",
		BaselinesFile:   "",
		EnrichTimeoutMS: defaultEnrichTimeoutMS,
	}
	return c
}
