package stats

// Option configures Store construction.
type Option func(*options)

// options collects construction-time settings before validation.
type options struct {
	file  string
	table map[Stat]Distribution
}

// WithBaselinesFile points the store at a YAML overrides file. The file is
// read once at construction; a configured path that cannot be read fails
// construction rather than silently keeping the defaults.
func WithBaselinesFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithDistribution overrides a single statistic.
func WithDistribution(st Stat, d Distribution) Option {
	return func(o *options) {
		if o.table == nil {
			o.table = make(map[Stat]Distribution)
		}
		o.table[st] = d
	}
}

// WithTable overrides several statistics at once.
func WithTable(t map[Stat]Distribution) Option {
	return func(o *options) {
		if o.table == nil {
			o.table = make(map[Stat]Distribution, len(t))
		}
		for st, d := range t {
			o.table[st] = d
		}
	}
}
