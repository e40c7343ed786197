package timeline_test

import (
	"errors"
	"testing"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/stats"
	"github.com/okian/calcio/internal/domain/tactics"
	"github.com/okian/calcio/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func baseParams(t *testing.T) timeline.MatchParams {
	t.Helper()
	store, err := stats.NewStore()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	p, err := timeline.NewBaseParams(store)
	if err != nil {
		t.Fatalf("base params: %v", err)
	}
	return p
}

func TestBaseParams(t *testing.T) {
	Convey("Given league-average base parameters", t, func() {
		p := baseParams(t)

		Convey("Expected counts should mirror the baseline means", func() {
			So(p.Home.Goals, ShouldAlmostEqual, 1.49, 1e-9)
			So(p.Away.Goals, ShouldAlmostEqual, 1.15, 1e-9)
			So(p.Home.Shots, ShouldAlmostEqual, 12.76, 1e-9)
			So(p.Away.Yellows, ShouldAlmostEqual, 2.02, 1e-9)
			So(p.Home.GoalProb, ShouldAlmostEqual, 1.49/90, 1e-9)
		})

		Convey("Possession should sum to 100 with the home side ahead", func() {
			So(p.Home.Possession+p.Away.Possession, ShouldAlmostEqual, 100, 1e-9)
			So(p.Home.Possession, ShouldBeGreaterThan, p.Away.Possession)
		})

		Convey("The red follow-up probability should be derived", func() {
			So(p.RedAfterYellow, ShouldAlmostEqual, (0.08+0.11)/(1.71+2.02), 1e-9)
		})
	})
}

func TestTacticalStage(t *testing.T) {
	Convey("Given a tiki-taka side against a parked bus", t, func() {
		calc, err := tactics.NewCalculator()
		So(err, ShouldBeNil)

		home := model.TeamConfig{
			Name:   "Palermo",
			Tactic: "tiki-taka",
			Attributes: map[string]int{
				model.AttrPassing: 90, model.AttrDribbling: 75, model.AttrPace: 60,
			},
		}
		away := model.TeamConfig{
			Name:   "Catania",
			Tactic: "park-the-bus",
			Attributes: map[string]int{
				model.AttrDefending: 90, model.AttrPhysicality: 80, model.AttrPassing: 45,
			},
		}

		p := baseParams(t)
		So(timeline.TacticalStage(calc, home, away)(&p), ShouldBeNil)

		Convey("Targets should carry both tactics' deltas", func() {
			So(p.Home.Shots, ShouldAlmostEqual, 12.76*1.08*0.95, 1e-9)
			So(p.Home.Target, ShouldAlmostEqual, 5.12*1.10*0.95, 1e-9)
			So(p.Away.Shots, ShouldAlmostEqual, 10.41*0.88*0.90, 1e-9)
		})

		Convey("Profiles should be recorded for reporting", func() {
			So(p.HomeProfile.Fit, ShouldAlmostEqual, 1.0, 1e-9)
			So(p.AwayProfile.Fit, ShouldAlmostEqual, 1.0, 1e-9)
			So(p.HomeProfile.GoalProbability, ShouldBeGreaterThan, p.AwayProfile.GoalProbability)
		})

		Convey("Expected goals should follow the goal probability", func() {
			So(p.Home.Goals, ShouldAlmostEqual, p.Home.GoalProb*90, 1e-9)
			So(p.Home.GoalProb, ShouldAlmostEqual, p.HomeProfile.GoalProbability, 1e-9)
		})

		Convey("Possession should be rederived and still sum to 100", func() {
			So(p.Home.Possession+p.Away.Possession, ShouldAlmostEqual, 100, 1e-9)
			So(p.Home.Possession, ShouldBeGreaterThan, 50)
		})

		Convey("An unknown tactic should fail the stage", func() {
			bad := home
			bad.Tactic = "route-one"
			q := baseParams(t)
			err := timeline.TacticalStage(calc, bad, away)(&q)
			So(errors.Is(err, tactics.ErrUnknownTactic), ShouldBeTrue)
		})

		Convey("A missing attribute map should fail the stage", func() {
			bad := home
			bad.Attributes = nil
			q := baseParams(t)
			err := timeline.TacticalStage(calc, bad, away)(&q)
			So(errors.Is(err, tactics.ErrMissingAttributes), ShouldBeTrue)
		})
	})
}

func TestConditionsStage(t *testing.T) {
	Convey("Given the environmental conditions stage", t, func() {
		Convey("A zero-valued conditions struct should be the identity", func() {
			p := baseParams(t)
			q := p
			So(timeline.ConditionsStage(model.MatchConditions{})(&q), ShouldBeNil)
			So(q, ShouldResemble, p)
		})

		Convey("Rain should depress shooting for both sides", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{Weather: model.WeatherRainy}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			So(p.Home.Shots, ShouldAlmostEqual, before.Home.Shots*0.90, 1e-9)
			So(p.Home.Target, ShouldAlmostEqual, before.Home.Target*0.85, 1e-9)
			So(p.Away.Shots, ShouldAlmostEqual, before.Away.Shots*0.90, 1e-9)

			Convey("And home advantage should lift the home goal rate", func() {
				So(p.Home.GoalProb, ShouldAlmostEqual, before.Home.GoalProb*0.95*1.15, 1e-9)
				So(p.Away.GoalProb, ShouldAlmostEqual, before.Away.GoalProb*0.95, 1e-9)
			})
		})

		Convey("A loud crowd should stack with home advantage", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{Crowd: model.CrowdHigh}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			So(p.Home.GoalProb, ShouldAlmostEqual, before.Home.GoalProb*1.25, 1e-9)
			So(p.Away.GoalProb, ShouldAlmostEqual, before.Away.GoalProb, 1e-9)
		})

		Convey("A big stadium should raise the card rates", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{Stadium: model.StadiumLarge}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			So(p.Home.Yellows, ShouldAlmostEqual, before.Home.Yellows*1.10, 1e-9)
			So(p.Away.Yellows, ShouldAlmostEqual, before.Away.Yellows*1.10, 1e-9)
			So(p.RedAfterYellow, ShouldAlmostEqual, before.RedAfterYellow*1.05, 1e-9)
		})

		Convey("High tempo should trade accuracy for volume", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{Tempo: model.TempoHigh}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			So(p.Home.Shots, ShouldAlmostEqual, before.Home.Shots*1.20, 1e-9)
			So(p.Home.Target, ShouldAlmostEqual, before.Home.Target*0.95, 1e-9)
			So(p.Home.Yellows, ShouldAlmostEqual, before.Home.Yellows*1.15, 1e-9)
		})

		Convey("Aggression should raise shots and discipline risk", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{Aggression: 1}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			So(p.Home.Shots, ShouldAlmostEqual, before.Home.Shots*1.20, 1e-9)
			So(p.Home.Yellows, ShouldAlmostEqual, before.Home.Yellows*1.50, 1e-9)
			So(p.RedAfterYellow, ShouldAlmostEqual, before.RedAfterYellow*1.80, 1e-9)
		})

		Convey("Team condition should scale that side only", func() {
			p := baseParams(t)
			before := p
			cond := model.MatchConditions{
				Home: model.TeamCondition{Morale: 0.5, Fatigue: 0.5, Form: 0.5},
			}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)

			m := ((0.5 + 0.5) + (1 - 0.5*0.7) + (0.3 + 0.5)) / 3
			So(p.Home.Shots, ShouldAlmostEqual, before.Home.Shots*m, 1e-9)
			So(p.Home.GoalProb, ShouldAlmostEqual, before.Home.GoalProb*m*1.15, 1e-9)
			So(p.Away.Shots, ShouldAlmostEqual, before.Away.Shots, 1e-9)
		})

		Convey("Unknown condition values should be configuration errors", func() {
			for _, cond := range []model.MatchConditions{
				{Weather: "hail"},
				{Crowd: "deafening"},
				{Stadium: "colossal"},
				{Tempo: "frantic"},
			} {
				p := baseParams(t)
				err := timeline.ConditionsStage(cond)(&p)
				So(errors.Is(err, timeline.ErrInvalidConditions), ShouldBeTrue)
			}
		})

		Convey("Goals should track the adjusted probability", func() {
			p := baseParams(t)
			cond := model.MatchConditions{Weather: model.WeatherSnow}
			So(timeline.ConditionsStage(cond)(&p), ShouldBeNil)
			So(p.Home.Goals, ShouldAlmostEqual, p.Home.GoalProb*90, 1e-9)
		})
	})
}
