package model

// Attribute names recognized by the simulation. Ratings are nominally
// 0-100 but arrive unclamped from callers.
const (
	AttrPassing     = "passing"
	AttrShooting    = "shooting"
	AttrDribbling   = "dribbling"
	AttrDefending   = "defending"
	AttrPace        = "pace"
	AttrPhysicality = "physicality"
)

// TeamConfig is the caller-supplied setup for one side of a match.
// Formation is opaque to the simulation math.
type TeamConfig struct {
	Name       string
	Attributes map[string]int
	Tactic     string
	Formation  string
}

// Score is the running scoreline. Each side is monotonically
// non-decreasing and mutated only by goal events in timeline order.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// TeamStats are the per-team aggregate counters carried on every
// emitted frame. Possession is resampled with jitter around a baseline;
// the remaining counters never decrease.
type TeamStats struct {
	Possession    float64 `json:"possession"`
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shotsOnTarget"`
	Corners       int     `json:"corners"`
	Fouls         int     `json:"fouls"`
	YellowCards   int     `json:"yellowCards"`
	RedCards      int     `json:"redCards"`
}

// MatchStats pairs both teams' counters.
type MatchStats struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`
}

// Team returns the stats for one side. Markers and ticks carry no side
// and return nil.
func (m *MatchStats) Team(s Side) *TeamStats {
	switch s {
	case SideHome:
		return &m.Home
	case SideAway:
		return &m.Away
	default:
		return nil
	}
}

// Weather values understood by the conditions stage.
const (
	WeatherSunny = "sunny"
	WeatherRainy = "rainy"
	WeatherWindy = "windy"
	WeatherSnow  = "snow"
)

// Crowd support levels. Crowd affects the home side only.
const (
	CrowdLow     = "low"
	CrowdMedium  = "medium"
	CrowdHigh    = "high"
	CrowdHostile = "hostile"
)

// Stadium sizes. Bigger grounds raise the card rates.
const (
	StadiumSmall  = "small"
	StadiumMedium = "medium"
	StadiumLarge  = "large"
)

// Tempo values.
const (
	TempoSlow   = "slow"
	TempoMedium = "medium"
	TempoHigh   = "high"
)

// TeamCondition describes one team's shape going into the match, each
// value in [0,1]. A zero value means the condition is unknown and is
// treated as neutral.
type TeamCondition struct {
	Morale  float64
	Fatigue float64
	Form    float64
}

// Neutral reports whether the condition carries no information.
func (c TeamCondition) Neutral() bool {
	return c == TeamCondition{}
}

// MatchConditions are the optional environmental modifiers applied on
// top of the tactical parameters. The zero value is the identity.
type MatchConditions struct {
	Weather    string
	Crowd      string
	Stadium    string
	Tempo      string
	Aggression float64
	Home       TeamCondition
	Away       TeamCondition
}
