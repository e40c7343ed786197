// Package tactics scores how well a squad fits a named tactic and derives
// the per-team performance profile a match is simulated from.
package tactics

import (
	"fmt"
	"sort"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
)

// defaultAttribute stands in for a rating the team sheet does not list.
const defaultAttribute = 50

// Requirement is one weighted attribute demand inside a tactic.
type Requirement struct {
	Target float64 `json:"target"`
	Weight float64 `json:"weight"`
}

// Effects are the multiplicative deltas a tactic applies to the statistic
// baselines, expressed as fractions (0.10 means +10%).
type Effects struct {
	Shots   float64 `json:"shots"`
	Target  float64 `json:"target"`
	Corners float64 `json:"corners"`
	Fouls   float64 `json:"fouls"`
}

// Spec describes one named tactic: the attribute profile it demands and the
// deltas it applies to its own side and to the opposition.
type Spec struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Requirements map[string]Requirement `json:"requirements"`
	Own          Effects                `json:"own"`
	Opponent     Effects                `json:"opponent"`
}

// Profile carries one team's derived multipliers, per-90 statistic targets,
// and instantaneous goal probability.
type Profile struct {
	Fit             float64 `json:"fit"`
	PositiveEffect  float64 `json:"positiveEffect"`
	NegativeEffect  float64 `json:"negativeEffect"`
	Penalty         float64 `json:"penalty"`
	Shots           float64 `json:"shots"`
	ShotsOnTarget   float64 `json:"shotsOnTarget"`
	Corners         float64 `json:"corners"`
	Fouls           float64 `json:"fouls"`
	GoalProbability float64 `json:"goalProbability"`
}

// Built-in tactic table.
var builtinTactics = []Spec{
	{
		Name:        "tiki-taka",
		Description: "Short passing and constant movement, working the ball through the lines.",
		Requirements: map[string]Requirement{
			model.AttrPassing:   {Target: 90, Weight: 0.4},
			model.AttrDribbling: {Target: 75, Weight: 0.3},
			model.AttrPace:      {Target: 60, Weight: 0.3},
		},
		Own:      Effects{Shots: 0.08, Target: 0.10, Corners: 0.12, Fouls: -0.05},
		Opponent: Effects{Shots: -0.10, Target: -0.12, Corners: -0.10, Fouls: -0.05},
	},
	{
		Name:        "gegenpressing",
		Description: "Win the ball back high within seconds of losing it.",
		Requirements: map[string]Requirement{
			model.AttrPace:        {Target: 85, Weight: 0.35},
			model.AttrDefending:   {Target: 80, Weight: 0.35},
			model.AttrPhysicality: {Target: 80, Weight: 0.3},
		},
		Own:      Effects{Shots: 0.15, Target: 0.18, Corners: 0.05, Fouls: 0.10},
		Opponent: Effects{Shots: -0.15, Target: -0.15, Corners: -0.08, Fouls: 0.10},
	},
	{
		Name:        "catenaccio",
		Description: "Deep defensive block that concedes territory but never space.",
		Requirements: map[string]Requirement{
			model.AttrDefending:   {Target: 95, Weight: 0.45},
			model.AttrPhysicality: {Target: 70, Weight: 0.3},
			model.AttrPace:        {Target: 55, Weight: 0.25},
		},
		Own:      Effects{Shots: -0.10, Target: -0.10, Corners: -0.15, Fouls: -0.10},
		Opponent: Effects{Shots: -0.05, Target: -0.05, Corners: -0.10, Fouls: -0.02},
	},
	{
		Name:        "total-football",
		Description: "Positional interchange everywhere on the pitch.",
		Requirements: map[string]Requirement{
			model.AttrPassing:   {Target: 80, Weight: 0.33},
			model.AttrDribbling: {Target: 80, Weight: 0.33},
			model.AttrPace:      {Target: 80, Weight: 0.34},
		},
		Own:      Effects{Shots: 0.12, Target: 0.12, Corners: 0.10, Fouls: 0},
		Opponent: Effects{Shots: -0.10, Target: -0.10, Corners: -0.05, Fouls: 0},
	},
	{
		Name:        "park-the-bus",
		Description: "Everyone behind the ball, concede nothing.",
		Requirements: map[string]Requirement{
			model.AttrDefending:   {Target: 90, Weight: 0.4},
			model.AttrPhysicality: {Target: 80, Weight: 0.35},
			model.AttrPassing:     {Target: 45, Weight: 0.25},
		},
		Own:      Effects{Shots: -0.12, Target: -0.10, Corners: -0.10, Fouls: -0.15},
		Opponent: Effects{Shots: -0.05, Target: -0.05, Corners: -0.05, Fouls: -0.10},
	},
	{
		Name:        "direct-play",
		Description: "Long balls and physical duels into the channels.",
		Requirements: map[string]Requirement{
			model.AttrPhysicality: {Target: 85, Weight: 0.35},
			model.AttrShooting:    {Target: 75, Weight: 0.35},
			model.AttrPace:        {Target: 70, Weight: 0.3},
		},
		Own:      Effects{Shots: 0.20, Target: 0.15, Corners: 0.08, Fouls: 0.05},
		Opponent: Effects{Shots: -0.02, Target: -0.02, Corners: -0.05, Fouls: 0.05},
	},
}

// Calculator computes tactical fit scores and match effect profiles against
// a statistic baseline table.
type Calculator struct {
	baselines *stats.Store
	tactics   map[string]Spec
}

// NewCalculator builds a Calculator over the built-in tactic table plus any
// options. With no WithBaselines option the built-in statistic table is used.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		tactics: make(map[string]Spec, len(builtinTactics)),
	}
	for _, spec := range builtinTactics {
		c.tactics[spec.Name] = spec
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baselines == nil {
		st, err := stats.NewStore()
		if err != nil {
			return nil, err
		}
		c.baselines = st
	}

	for name, spec := range c.tactics {
		if err := validateSpec(name, spec); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func validateSpec(name string, spec Spec) error {
	if name == "" || spec.Name != name {
		return fmt.Errorf("%w: name %q", ErrInvalidTactic, name)
	}
	if len(spec.Requirements) == 0 {
		return fmt.Errorf("%w: %s has no requirements", ErrInvalidTactic, name)
	}
	for attr, req := range spec.Requirements {
		if req.Target <= 0 || req.Weight <= 0 {
			return fmt.Errorf("%w: %s requirement %s", ErrInvalidTactic, name, attr)
		}
	}
	return nil
}

// Tactics returns the registered tactics sorted by name.
func (c *Calculator) Tactics() []Spec {
	out := make([]Spec, 0, len(c.tactics))
	for _, spec := range c.tactics {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Fit scores how well an attribute vector matches a tactic, in [0,1]. Each
// required attribute contributes min(rating/target, 1) weighted by the
// requirement weight; a rating the sheet does not list counts as 50.
func (c *Calculator) Fit(attributes map[string]int, tactic string) (float64, error) {
	spec, ok := c.tactics[tactic]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTactic, tactic)
	}
	if len(attributes) == 0 {
		return 0, ErrMissingAttributes
	}

	var sum, weights float64
	for attr, req := range spec.Requirements {
		rating := float64(defaultAttribute)
		if v, ok := attributes[attr]; ok {
			rating = float64(v)
		}
		score := rating / req.Target
		if score > 1 {
			score = 1
		}
		sum += score * req.Weight
		weights += req.Weight
	}
	return sum / weights, nil
}

// MatchEffects derives both teams' effect profiles from their fit scores and
// tactics. Each side's own deltas compose multiplicatively with the deltas
// the opposing tactic imposes; each side's penalty affects only itself.
func (c *Calculator) MatchEffects(homeFit, awayFit float64, homeTactic, awayTactic string) (home, away Profile, err error) {
	ht, ok := c.tactics[homeTactic]
	if !ok {
		return Profile{}, Profile{}, fmt.Errorf("%w: %s", ErrUnknownTactic, homeTactic)
	}
	at, ok := c.tactics[awayTactic]
	if !ok {
		return Profile{}, Profile{}, fmt.Errorf("%w: %s", ErrUnknownTactic, awayTactic)
	}

	home, err = c.profile(model.SideHome, homeFit, ht, at)
	if err != nil {
		return Profile{}, Profile{}, err
	}
	away, err = c.profile(model.SideAway, awayFit, at, ht)
	if err != nil {
		return Profile{}, Profile{}, err
	}
	return home, away, nil
}

func (c *Calculator) profile(side model.Side, fit float64, own, opp Spec) (Profile, error) {
	pos, neg, pen := banding(fit)

	shots, err := c.scaled(stats.Shots(side), own.Own.Shots, opp.Opponent.Shots)
	if err != nil {
		return Profile{}, err
	}
	target, err := c.scaled(stats.Target(side), own.Own.Target, opp.Opponent.Target)
	if err != nil {
		return Profile{}, err
	}
	corners, err := c.scaled(stats.Corners(side), own.Own.Corners, opp.Opponent.Corners)
	if err != nil {
		return Profile{}, err
	}
	fouls, err := c.scaled(stats.Fouls(side), own.Own.Fouls, opp.Opponent.Fouls)
	if err != nil {
		return Profile{}, err
	}

	var conversion float64
	if shots > 0 {
		conversion = target / shots
	}
	goalProb := shots / float64(model.FullTimeMinute) * conversion * (1 + pos) * (1 - pen)

	return Profile{
		Fit:             fit,
		PositiveEffect:  pos,
		NegativeEffect:  neg,
		Penalty:         pen,
		Shots:           shots,
		ShotsOnTarget:   target,
		Corners:         corners,
		Fouls:           fouls,
		GoalProbability: goalProb,
	}, nil
}

// scaled applies own and opposing tactic deltas to a baseline mean.
func (c *Calculator) scaled(st stats.Stat, ownDelta, oppDelta float64) (float64, error) {
	d, err := c.baselines.Get(st)
	if err != nil {
		return 0, err
	}
	v := d.Mean * (1 + ownDelta) * (1 + oppDelta)
	if v < 0 {
		v = 0
	}
	return v, nil
}

// banding maps a fit score onto the three-regime effect multipliers: strong
// fit earns the full scaling bonus, middling fit scales linearly, and poor
// fit turns into a penalty that caps out at 1.
func banding(fit float64) (pos, neg, pen float64) {
	switch {
	case fit >= 0.80:
		return 1, 1, 0
	case fit >= 0.50:
		s := (fit - 0.50) / 0.30
		return s, s, 0
	case fit >= 0.40:
		return 0, 0, (0.50 - fit) / 0.10
	default:
		return 0, 0, 1
	}
}
