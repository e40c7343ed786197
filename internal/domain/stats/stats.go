// Package stats holds per-statistic baseline distributions sourced from
// historical match data. The built-in table covers goals, shots, shots on
// target, fouls, corners, and cards for home and away sides; a YAML file
// can override any entry.
package stats

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/calcio/internal/domain/model"
)

// Stat identifies one statistic in the baseline table.
type Stat string

// Statistic names. FT prefixes denote full-time goal counts.
const (
	FTHome      Stat = "FTHome"
	FTAway      Stat = "FTAway"
	HomeShots   Stat = "HomeShots"
	AwayShots   Stat = "AwayShots"
	HomeTarget  Stat = "HomeTarget"
	AwayTarget  Stat = "AwayTarget"
	HomeFouls   Stat = "HomeFouls"
	AwayFouls   Stat = "AwayFouls"
	HomeCorners Stat = "HomeCorners"
	AwayCorners Stat = "AwayCorners"
	HomeYellow  Stat = "HomeYellow"
	AwayYellow  Stat = "AwayYellow"
	HomeRed     Stat = "HomeRed"
	AwayRed     Stat = "AwayRed"
)

// defaultRedAfterYellow is used when the table records no yellow cards.
const defaultRedAfterYellow = 0.05

// Distribution is a mean/standard-deviation pair for one statistic.
type Distribution struct {
	Mean float64 `json:"mean" koanf:"mean"`
	Std  float64 `json:"std" koanf:"std"`
}

// Built-in baselines derived from historical top-flight match data.
var defaultTable = map[Stat]Distribution{
	FTHome:      {Mean: 1.49, Std: 1.26},
	FTAway:      {Mean: 1.15, Std: 1.11},
	HomeShots:   {Mean: 12.76, Std: 4.99},
	AwayShots:   {Mean: 10.41, Std: 4.45},
	HomeTarget:  {Mean: 5.12, Std: 2.77},
	AwayTarget:  {Mean: 4.14, Std: 2.43},
	HomeFouls:   {Mean: 12.62, Std: 4.48},
	AwayFouls:   {Mean: 13.08, Std: 4.55},
	HomeCorners: {Mean: 5.67, Std: 2.94},
	AwayCorners: {Mean: 4.62, Std: 2.62},
	HomeYellow:  {Mean: 1.71, Std: 1.30},
	AwayYellow:  {Mean: 2.02, Std: 1.40},
	HomeRed:     {Mean: 0.08, Std: 0.28},
	AwayRed:     {Mean: 0.11, Std: 0.33},
}

// Store holds an immutable statistic baseline table.
type Store struct {
	table map[Stat]Distribution
}

// NewStore builds a Store from the built-in table plus any configured
// overrides. Precedence (low -> high):
//  1. built-in defaults
//  2. baselines file (YAML) if WithBaselinesFile is set
//  3. WithTable / WithDistribution overrides
//
// A configured baselines file that cannot be read is fatal; with no file
// configured the built-in table stands on its own.
func NewStore(opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	table := make(map[Stat]Distribution, len(defaultTable))
	for st, d := range defaultTable {
		table[st] = d
	}

	if o.file != "" {
		loaded, err := loadFile(o.file)
		if err != nil {
			return nil, err
		}
		for st, d := range loaded {
			table[st] = d
		}
	}
	for st, d := range o.table {
		table[st] = d
	}

	for st, d := range table {
		if _, ok := defaultTable[st]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStat, st)
		}
		if d.Mean < 0 || d.Std < 0 {
			return nil, fmt.Errorf("%w: %s mean=%v std=%v", ErrInvalidDistribution, st, d.Mean, d.Std)
		}
	}

	return &Store{table: table}, nil
}

// loadFile reads a flat YAML map of statistic name to {mean, std}.
func loadFile(path string) (map[Stat]Distribution, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadBaselines, err)
	}

	raw := map[string]Distribution{}
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadBaselines, err)
	}

	out := make(map[Stat]Distribution, len(raw))
	for name, d := range raw {
		out[Stat(name)] = d
	}
	return out, nil
}

// Get returns the distribution for st.
func (s *Store) Get(st Stat) (Distribution, error) {
	d, ok := s.table[st]
	if !ok {
		return Distribution{}, fmt.Errorf("%w: %s", ErrUnknownStat, st)
	}
	return d, nil
}

// Table returns a copy of the full baseline table.
func (s *Store) Table() map[Stat]Distribution {
	out := make(map[Stat]Distribution, len(s.table))
	for st, d := range s.table {
		out[st] = d
	}
	return out
}

// Possession estimates the baseline possession split from each side's share
// of shots plus corners. The two values sum to 100.
func (s *Store) Possession() (home, away float64) {
	h := s.table[HomeShots].Mean + s.table[HomeCorners].Mean
	a := s.table[AwayShots].Mean + s.table[AwayCorners].Mean
	total := h + a
	if total == 0 {
		return 50, 50
	}
	return h / total * 100, a / total * 100
}

// RedAfterYellow is the empirical probability that a booked player is sent
// off later, total reds over total yellows. Defaults to 0.05 when the table
// records no yellows.
func (s *Store) RedAfterYellow() float64 {
	yellows := s.table[HomeYellow].Mean + s.table[AwayYellow].Mean
	if yellows <= 0 {
		return defaultRedAfterYellow
	}
	return (s.table[HomeRed].Mean + s.table[AwayRed].Mean) / yellows
}

// Side-keyed lookups used when deriving per-team parameters.

func pick(side model.Side, home, away Stat) Stat {
	if side == model.SideAway {
		return away
	}
	return home
}

func Goals(s model.Side) Stat   { return pick(s, FTHome, FTAway) }
func Shots(s model.Side) Stat   { return pick(s, HomeShots, AwayShots) }
func Target(s model.Side) Stat  { return pick(s, HomeTarget, AwayTarget) }
func Fouls(s model.Side) Stat   { return pick(s, HomeFouls, AwayFouls) }
func Corners(s model.Side) Stat { return pick(s, HomeCorners, AwayCorners) }
func Yellows(s model.Side) Stat { return pick(s, HomeYellow, AwayYellow) }
func Reds(s model.Side) Stat    { return pick(s, HomeRed, AwayRed) }
