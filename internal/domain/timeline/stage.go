package timeline

import (
	"fmt"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
)

// TeamParams are one side's generation parameters for a full match: expected
// counts per 90 minutes plus the per-minute goal probability.
type TeamParams struct {
	Goals      float64
	GoalProb   float64
	Shots      float64
	Target     float64
	Corners    float64
	Fouls      float64
	Yellows    float64
	Possession float64
}

// MatchParams are the full generation parameters a half is simulated from.
// Profiles carry the pure tactical math for reporting; the team params are
// what later stages keep adjusting.
type MatchParams struct {
	Home           TeamParams
	Away           TeamParams
	HomeProfile    tactics.Profile
	AwayProfile    tactics.Profile
	RedAfterYellow float64
}

// Team selects one side's params. The neutral side resolves to nil.
func (p *MatchParams) Team(s model.Side) *TeamParams {
	switch s {
	case model.SideHome:
		return &p.Home
	case model.SideAway:
		return &p.Away
	default:
		return nil
	}
}

// Profile selects one side's tactical profile.
func (p *MatchParams) Profile(s model.Side) tactics.Profile {
	if s == model.SideAway {
		return p.AwayProfile
	}
	return p.HomeProfile
}

// derivePossession recomputes the possession split from the current
// shots-plus-corners share. One side is computed, the other follows by
// subtraction so the two always sum to 100.
func (p *MatchParams) derivePossession() {
	h := p.Home.Shots + p.Home.Corners
	a := p.Away.Shots + p.Away.Corners
	total := h + a
	if total <= 0 {
		p.Home.Possession, p.Away.Possession = 50, 50
		return
	}
	p.Home.Possession = h / total * 100
	p.Away.Possession = 100 - p.Home.Possession
}

// clampTargets keeps every expected count non-negative and shots-on-target
// within shots.
func (p *MatchParams) clampTargets() {
	for _, t := range []*TeamParams{&p.Home, &p.Away} {
		for _, v := range []*float64{&t.Goals, &t.GoalProb, &t.Shots, &t.Target, &t.Corners, &t.Fouls, &t.Yellows} {
			if *v < 0 {
				*v = 0
			}
		}
		if t.Target > t.Shots {
			t.Target = t.Shots
		}
	}
	if p.RedAfterYellow < 0 {
		p.RedAfterYellow = 0
	}
}

// Stage transforms match parameters in place. Stages chain in a fixed order:
// base rates, tactical fit, then optional environmental conditions.
type Stage func(*MatchParams) error

// NewBaseParams builds league-average parameters straight from the baseline
// table, before any tactical or environmental stage runs.
func NewBaseParams(store *stats.Store) (MatchParams, error) {
	var p MatchParams
	for _, side := range []model.Side{model.SideHome, model.SideAway} {
		t := p.Team(side)
		for _, bind := range []struct {
			dst *float64
			st  stats.Stat
		}{
			{&t.Goals, stats.Goals(side)},
			{&t.Shots, stats.Shots(side)},
			{&t.Target, stats.Target(side)},
			{&t.Corners, stats.Corners(side)},
			{&t.Fouls, stats.Fouls(side)},
			{&t.Yellows, stats.Yellows(side)},
		} {
			d, err := store.Get(bind.st)
			if err != nil {
				return MatchParams{}, err
			}
			*bind.dst = d.Mean
		}
		t.GoalProb = t.Goals / float64(model.FullTimeMinute)
	}
	p.Home.Possession, p.Away.Possession = store.Possession()
	p.RedAfterYellow = store.RedAfterYellow()
	return p, nil
}

// TacticalStage scores both teams against their tactics and replaces the
// offensive targets with the derived effect profiles.
func TacticalStage(calc *tactics.Calculator, home, away model.TeamConfig) Stage {
	return func(p *MatchParams) error {
		homeFit, err := calc.Fit(home.Attributes, home.Tactic)
		if err != nil {
			return err
		}
		awayFit, err := calc.Fit(away.Attributes, away.Tactic)
		if err != nil {
			return err
		}

		hp, ap, err := calc.MatchEffects(homeFit, awayFit, home.Tactic, away.Tactic)
		if err != nil {
			return err
		}
		p.HomeProfile, p.AwayProfile = hp, ap
		applyProfile(&p.Home, hp)
		applyProfile(&p.Away, ap)

		p.clampTargets()
		p.derivePossession()
		return nil
	}
}

func applyProfile(t *TeamParams, pr tactics.Profile) {
	t.Shots = pr.Shots
	t.Target = pr.ShotsOnTarget
	t.Corners = pr.Corners
	t.Fouls = pr.Fouls
	t.GoalProb = pr.GoalProbability
	t.Goals = pr.GoalProbability * float64(model.FullTimeMinute)
}

// homeAdvantage is the flat home-side goal adjustment the conditions stage
// applies alongside the crowd factor.
const homeAdvantage = 0.15

// weatherEffect deltas apply to shots, shots on target, and goals.
type weatherEffect struct {
	shots  float64
	target float64
	goals  float64
}

var weatherEffects = map[string]weatherEffect{
	model.WeatherSunny: {},
	model.WeatherRainy: {shots: -0.10, target: -0.15, goals: -0.05},
	model.WeatherWindy: {shots: 0.05, target: -0.20, goals: -0.10},
	model.WeatherSnow:  {shots: -0.15, target: -0.25, goals: -0.15},
}

var crowdEffects = map[string]float64{
	model.CrowdLow:     0.02,
	model.CrowdMedium:  0.05,
	model.CrowdHigh:    0.10,
	model.CrowdHostile: -0.05,
}

// stadiumEffect deltas apply to yellow-card rate and the red follow-up
// probability.
type stadiumEffect struct {
	yellow float64
	red    float64
}

var stadiumEffects = map[string]stadiumEffect{
	model.StadiumSmall:  {yellow: -0.10, red: -0.10},
	model.StadiumMedium: {},
	model.StadiumLarge:  {yellow: 0.10, red: 0.05},
}

// tempoEffect deltas apply to shots, shots on target, and card rate.
type tempoEffect struct {
	shots  float64
	target float64
	cards  float64
}

var tempoEffects = map[string]tempoEffect{
	model.TempoSlow:   {shots: -0.15, target: 0.10, cards: -0.20},
	model.TempoMedium: {},
	model.TempoHigh:   {shots: 0.20, target: -0.05, cards: 0.15},
}

// ConditionsStage applies the environmental modifiers: weather, crowd, home
// advantage, stadium size, per-team condition, aggression, and tempo. A
// zero-valued conditions struct is the identity.
func ConditionsStage(cond model.MatchConditions) Stage {
	return func(p *MatchParams) error {
		if cond == (model.MatchConditions{}) {
			return nil
		}

		if cond.Weather != "" {
			w, ok := weatherEffects[cond.Weather]
			if !ok {
				return fmt.Errorf("%w: weather %q", ErrInvalidConditions, cond.Weather)
			}
			for _, t := range []*TeamParams{&p.Home, &p.Away} {
				t.Shots *= 1 + w.shots
				t.Target *= 1 + w.target
				t.GoalProb *= 1 + w.goals
			}
		}

		homeGoalDelta := homeAdvantage
		if cond.Crowd != "" {
			c, ok := crowdEffects[cond.Crowd]
			if !ok {
				return fmt.Errorf("%w: crowd %q", ErrInvalidConditions, cond.Crowd)
			}
			homeGoalDelta += c
		}
		p.Home.GoalProb *= 1 + homeGoalDelta

		if cond.Stadium != "" {
			s, ok := stadiumEffects[cond.Stadium]
			if !ok {
				return fmt.Errorf("%w: stadium %q", ErrInvalidConditions, cond.Stadium)
			}
			p.Home.Yellows *= 1 + s.yellow
			p.Away.Yellows *= 1 + s.yellow
			p.RedAfterYellow *= 1 + s.red
		}

		if cond.Tempo != "" {
			tp, ok := tempoEffects[cond.Tempo]
			if !ok {
				return fmt.Errorf("%w: tempo %q", ErrInvalidConditions, cond.Tempo)
			}
			for _, t := range []*TeamParams{&p.Home, &p.Away} {
				t.Shots *= 1 + tp.shots
				t.Target *= 1 + tp.target
				t.Yellows *= 1 + tp.cards
			}
		}

		if cond.Aggression > 0 {
			for _, t := range []*TeamParams{&p.Home, &p.Away} {
				t.Shots *= 1 + cond.Aggression*0.2
				t.Yellows *= 1 + cond.Aggression*0.5
			}
			p.RedAfterYellow *= 1 + cond.Aggression*0.8
		}

		for _, tc := range []struct {
			side model.Side
			cond model.TeamCondition
		}{
			{model.SideHome, cond.Home},
			{model.SideAway, cond.Away},
		} {
			if tc.cond.Neutral() {
				continue
			}
			m := ((0.5 + tc.cond.Morale) + (1 - tc.cond.Fatigue*0.7) + (0.3 + tc.cond.Form)) / 3
			t := p.Team(tc.side)
			t.Shots *= m
			t.Target *= m
			t.GoalProb *= m
		}

		for _, t := range []*TeamParams{&p.Home, &p.Away} {
			t.Goals = t.GoalProb * float64(model.FullTimeMinute)
		}
		p.clampTargets()
		p.derivePossession()
		return nil
	}
}
