package timeline_test

import (
	"reflect"
	"testing"

	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/timeline"
	"pgregory.net/rapid"
)

var tacticNames = []string{
	"tiki-taka", "gegenpressing", "catenaccio",
	"total-football", "park-the-bus", "direct-play",
}

var attributeNames = []string{
	model.AttrPassing, model.AttrShooting, model.AttrDribbling,
	model.AttrDefending, model.AttrPace, model.AttrPhysicality,
}

func randomTeam(t *rapid.T, label string) model.TeamConfig {
	attrs := make(map[string]int, len(attributeNames))
	for _, name := range attributeNames {
		attrs[name] = rapid.IntRange(1, 99).Draw(t, label+"."+name)
	}
	return model.TeamConfig{
		Name:       label,
		Tactic:     rapid.SampledFrom(tacticNames).Draw(t, label+".tactic"),
		Formation:  "4-4-2",
		Attributes: attrs,
	}
}

func randomConditions(t *rapid.T) model.MatchConditions {
	return model.MatchConditions{
		Weather: rapid.SampledFrom([]string{
			model.WeatherSunny, model.WeatherRainy, model.WeatherWindy, model.WeatherSnow,
		}).Draw(t, "weather"),
		Crowd: rapid.SampledFrom([]string{
			model.CrowdLow, model.CrowdMedium, model.CrowdHigh, model.CrowdHostile,
		}).Draw(t, "crowd"),
		Stadium: rapid.SampledFrom([]string{
			model.StadiumSmall, model.StadiumMedium, model.StadiumLarge,
		}).Draw(t, "stadium"),
		Tempo: rapid.SampledFrom([]string{
			model.TempoSlow, model.TempoMedium, model.TempoHigh,
		}).Draw(t, "tempo"),
		Aggression: rapid.Float64Range(0, 1).Draw(t, "aggression"),
		Home: model.TeamCondition{
			Morale:  rapid.Float64Range(0, 1).Draw(t, "home.morale"),
			Fatigue: rapid.Float64Range(0, 1).Draw(t, "home.fatigue"),
			Form:    rapid.Float64Range(0, 1).Draw(t, "home.form"),
		},
		Away: model.TeamCondition{
			Morale:  rapid.Float64Range(0, 1).Draw(t, "away.morale"),
			Fatigue: rapid.Float64Range(0, 1).Draw(t, "away.fatigue"),
			Form:    rapid.Float64Range(0, 1).Draw(t, "away.form"),
		},
	}
}

func runMatch(t *rapid.T, gen *timeline.Generator) (first, second []model.TimelineEvent) {
	first, err := gen.FirstHalf()
	if err != nil {
		t.Fatalf("first half: %v", err)
	}
	if err := gen.MarkHalfTime(); err != nil {
		t.Fatalf("half-time: %v", err)
	}
	second, err = gen.SecondHalf()
	if err != nil {
		t.Fatalf("second half: %v", err)
	}
	if err := gen.MarkFullTime(); err != nil {
		t.Fatalf("full-time: %v", err)
	}
	return first, second
}

func TestDeterminismRandomized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		home := randomTeam(t, "home")
		away := randomTeam(t, "away")
		mode := rapid.SampledFrom([]timeline.GoalMode{
			timeline.GoalModeBernoulli, timeline.GoalModePoisson,
		}).Draw(t, "mode")

		build := func() *timeline.Generator {
			gen, err := timeline.NewGenerator(
				timeline.WithTeams(home, away),
				timeline.WithSeed(seed),
				timeline.WithGoalMode(mode),
			)
			if err != nil {
				t.Fatalf("generator: %v", err)
			}
			return gen
		}

		a, b := build(), build()
		aFirst, aSecond := runMatch(t, a)
		bFirst, bSecond := runMatch(t, b)

		if !reflect.DeepEqual(aFirst, bFirst) {
			t.Fatalf("first halves diverged:\n%v\n%v", aFirst, bFirst)
		}
		if !reflect.DeepEqual(aSecond, bSecond) {
			t.Fatalf("second halves diverged:\n%v\n%v", aSecond, bSecond)
		}
	})
}

func TestHalfShapeRandomized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen, err := timeline.NewGenerator(
			timeline.WithTeams(randomTeam(t, "home"), randomTeam(t, "away")),
			timeline.WithSeed(rapid.Int64().Draw(t, "seed")),
			timeline.WithConditions(randomConditions(t)),
		)
		if err != nil {
			t.Fatalf("generator: %v", err)
		}
		first, second := runMatch(t, gen)

		checkHalf := func(name string, events []model.TimelineEvent, lo, hi int, closer model.EventType) {
			if len(events) == 0 {
				t.Fatalf("%s: no events", name)
			}
			if got := events[len(events)-1].Type(); got != closer {
				t.Fatalf("%s: closes with %s, want %s", name, got, closer)
			}
			prev := 0
			for i, ev := range events {
				if ev.Minute() < prev {
					t.Fatalf("%s: minute %d after %d at index %d", name, ev.Minute(), prev, i)
				}
				prev = ev.Minute()
				if i == len(events)-1 {
					break
				}
				if ev.Minute() < lo || ev.Minute() > hi {
					t.Fatalf("%s: minute %d outside [%d,%d]", name, ev.Minute(), lo, hi)
				}
			}
		}

		checkHalf("first half", first, model.FirstHalfStart, model.HalfTimeMinute, model.EventHalfTime)
		checkHalf("second half", second, model.SecondHalfStart, model.FullTimeMinute, model.EventFullTime)

		if ft := second[len(second)-1].Minute(); ft <= model.FullTimeMinute || ft > model.FullTimeMinute+6 {
			t.Fatalf("full-time at minute %d", ft)
		}
	})
}

func TestRedFollowsYellowRandomized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen, err := timeline.NewGenerator(
			timeline.WithTeams(randomTeam(t, "home"), randomTeam(t, "away")),
			timeline.WithSeed(rapid.Int64().Draw(t, "seed")),
			timeline.WithConditions(randomConditions(t)),
		)
		if err != nil {
			t.Fatalf("generator: %v", err)
		}
		first, second := runMatch(t, gen)
		match := append(append([]model.TimelineEvent{}, first...), second...)

		for i, ev := range match {
			if ev.Type() != model.EventRedCard {
				continue
			}
			found := false
			for _, prior := range match[:i] {
				if prior.Type() == model.EventYellowCard &&
					prior.Side() == ev.Side() &&
					prior.Minute() < ev.Minute() {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("red at minute %d for %s without an earlier yellow", ev.Minute(), ev.Side())
			}
		}
	})
}

func TestSubstitutionCapRandomized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		allowed := rapid.IntRange(0, 5).Draw(t, "cap")
		lo := rapid.IntRange(1, 90).Draw(t, "lo")
		hi := rapid.IntRange(lo, 90).Draw(t, "hi")

		gen, err := timeline.NewGenerator(
			timeline.WithTeams(randomTeam(t, "home"), randomTeam(t, "away")),
			timeline.WithSeed(rapid.Int64().Draw(t, "seed")),
			timeline.WithSubstitutionCap(allowed),
			timeline.WithSubstitutionWindow(lo, hi),
		)
		if err != nil {
			t.Fatalf("generator: %v", err)
		}
		first, second := runMatch(t, gen)

		subs := map[model.Side]int{}
		for _, ev := range append(append([]model.TimelineEvent{}, first...), second...) {
			if ev.Type() != model.EventSubstitution {
				continue
			}
			subs[ev.Side()]++
			if ev.Minute() < lo || ev.Minute() > hi {
				t.Fatalf("substitution at minute %d outside [%d,%d]", ev.Minute(), lo, hi)
			}
		}
		if subs[model.SideHome] != allowed || subs[model.SideAway] != allowed {
			t.Fatalf("substitutions home=%d away=%d, want %d each", subs[model.SideHome], subs[model.SideAway], allowed)
		}
	})
}
