package testmatch

import (
	"fmt"
	"log"
	"math"
)

// verifyMatch checks the stream invariants over the full two-half frame
// sequence. Every frame carries a score and stats snapshot, so each check
// runs at every point of the stream, not just at full-time.
func verifyMatch(first, second []Frame) error {
	log.Println("Verifying stream invariants...")

	if len(first) == 0 {
		return fmt.Errorf("first half produced no frames")
	}
	if len(second) == 0 {
		return fmt.Errorf("second half produced no frames")
	}

	all := make([]Frame, 0, len(first)+len(second))
	all = append(all, first...)
	all = append(all, second...)

	if err := verifyScoreConsistency(all); err != nil {
		return err
	}
	if err := verifyStatsInvariants(all); err != nil {
		return err
	}
	if err := verifyMinuteOrder(first, "first half"); err != nil {
		return err
	}
	if err := verifyMinuteOrder(second, "second half"); err != nil {
		return err
	}
	if err := verifyHalfBoundaries(first, second); err != nil {
		return err
	}

	log.Println("All stream invariants hold")
	return nil
}

// verifyScoreConsistency recounts goal events and compares against the
// score carried on every frame.
func verifyScoreConsistency(frames []Frame) error {
	var home, away int
	for i, frame := range frames {
		if frame.Type == "event" && frame.Event != nil && frame.Event.Type == "goal" {
			switch frame.Event.Team {
			case "home":
				home++
			case "away":
				away++
			default:
				return fmt.Errorf("frame %d: goal with unknown team %q", i, frame.Event.Team)
			}
		}
		if frame.Score.Home != home || frame.Score.Away != away {
			return fmt.Errorf("frame %d (minute %d): score %d-%d does not match counted goals %d-%d",
				i, frame.Minute, frame.Score.Home, frame.Score.Away, home, away)
		}
	}
	return nil
}

// verifyStatsInvariants checks possession sum, shot ordering, and that no
// counter ever decreases.
func verifyStatsInvariants(frames []Frame) error {
	var prev MatchStats
	for i, frame := range frames {
		sum := frame.Stats.Home.Possession + frame.Stats.Away.Possession
		if math.Abs(sum-100) > PossessionTolerance {
			return fmt.Errorf("frame %d (minute %d): possession sums to %.2f", i, frame.Minute, sum)
		}

		for _, side := range []struct {
			name string
			cur  TeamStats
			prev TeamStats
		}{
			{"home", frame.Stats.Home, prev.Home},
			{"away", frame.Stats.Away, prev.Away},
		} {
			if side.cur.ShotsOnTarget > side.cur.Shots {
				return fmt.Errorf("frame %d (minute %d): %s has %d shots on target but only %d shots",
					i, frame.Minute, side.name, side.cur.ShotsOnTarget, side.cur.Shots)
			}
			if i > 0 && countersDecreased(side.prev, side.cur) {
				return fmt.Errorf("frame %d (minute %d): %s counters decreased", i, frame.Minute, side.name)
			}
		}
		prev = frame.Stats
	}
	return nil
}

// countersDecreased reports whether any monotone counter went backwards.
// Possession is resampled per tick and exempt.
func countersDecreased(prev, cur TeamStats) bool {
	return cur.Shots < prev.Shots ||
		cur.ShotsOnTarget < prev.ShotsOnTarget ||
		cur.Corners < prev.Corners ||
		cur.Fouls < prev.Fouls ||
		cur.YellowCards < prev.YellowCards ||
		cur.RedCards < prev.RedCards
}

// verifyMinuteOrder checks that minutes never go backwards within a half.
func verifyMinuteOrder(frames []Frame, half string) error {
	last := 0
	for i, frame := range frames {
		if frame.Minute < last {
			return fmt.Errorf("%s frame %d: minute %d after minute %d", half, i, frame.Minute, last)
		}
		last = frame.Minute
	}
	return nil
}

// verifyHalfBoundaries checks the half markers and the second half's clock.
func verifyHalfBoundaries(first, second []Frame) error {
	if marker := lastEvent(first); marker == nil || marker.Type != "half-time" {
		return fmt.Errorf("first half does not end with a half-time marker")
	}
	if marker := lastEvent(second); marker == nil || marker.Type != "full-time" {
		return fmt.Errorf("second half does not end with a full-time marker")
	}

	for i, frame := range first {
		if frame.Minute > HalfTimeMinute {
			return fmt.Errorf("first half frame %d has minute %d", i, frame.Minute)
		}
	}
	for i, frame := range second {
		if frame.Minute < SecondHalfStart {
			return fmt.Errorf("second half frame %d has minute %d", i, frame.Minute)
		}
	}
	return nil
}

// lastEvent returns the final event body of a half, skipping minute ticks.
func lastEvent(frames []Frame) *EventBody {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Type == "event" && frames[i].Event != nil {
			return frames[i].Event
		}
	}
	return nil
}
