package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/calcio/internal/app"
	"github.com/okian/calcio/internal/domain/model"
	"github.com/okian/calcio/internal/domain/timeline"
	"github.com/okian/calcio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// collect drains a stream channel into a slice.
func collect(ch <-chan model.Frame) []model.Frame {
	frames := make([]model.Frame, 0, 128)
	for frame := range ch {
		frames = append(frames, frame)
	}
	return frames
}

// eventSkeleton reduces a frame sequence to its deterministic core: the
// minute, team, and type of every event frame. Descriptions are excluded
// because enrichment wording is not part of the reproducibility contract.
func eventSkeleton(frames []model.Frame) []string {
	var skeleton []string
	for _, frame := range frames {
		if frame.Kind != model.FrameEvent || frame.Event == nil {
			continue
		}
		skeleton = append(skeleton, fmt.Sprintf("%d:%s:%s", frame.Minute, frame.Event.Team, frame.Event.Type))
	}
	return skeleton
}

// countGoals recounts goal events per side.
func countGoals(frames []model.Frame) model.Score {
	var score model.Score
	for _, frame := range frames {
		if frame.Kind != model.FrameEvent || frame.Event == nil || frame.Event.Type != string(model.EventGoal) {
			continue
		}
		switch frame.Event.Team {
		case string(model.SideHome):
			score.Home++
		case string(model.SideAway):
			score.Away++
		}
	}
	return score
}

// lastEventType returns the type of the final event frame in a half.
func lastEventType(frames []model.Frame) string {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Kind == model.FrameEvent && frames[i].Event != nil {
			return frames[i].Event.Type
		}
	}
	return ""
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with pacing disabled", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc, err := startedService(ctx, service.WithSeed(7))
		So(err, ShouldBeNil)
		defer svc.Stop()

		Convey("When playing a full match end-to-end", func() {
			info, err := svc.CreateMatch(ctx, possessionSide(), defensiveSide(), model.MatchConditions{})
			So(err, ShouldBeNil)
			So(svc.ActiveSessions(ctx), ShouldEqual, 1)

			// First half
			firstCh, err := svc.StreamFirstHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			first := collect(firstCh)
			So(len(first), ShouldBeGreaterThanOrEqualTo, model.HalfTimeMinute)

			Convey("Then the first half should open at minute one with a tick", func() {
				So(first[0].Kind, ShouldEqual, model.FrameMinuteUpdate)
				So(first[0].Minute, ShouldEqual, model.FirstHalfStart)
			})

			Convey("Then first-half minutes should stay ordered and within bounds", func() {
				last := 0
				for _, frame := range first {
					So(frame.Minute, ShouldBeGreaterThanOrEqualTo, last)
					So(frame.Minute, ShouldBeLessThanOrEqualTo, model.HalfTimeMinute)
					last = frame.Minute
				}
			})

			Convey("Then the half-time marker should close the first half", func() {
				So(lastEventType(first), ShouldEqual, string(model.EventHalfTime))

				snapshot, err := svc.Snapshot(ctx, info.ID)
				So(err, ShouldBeNil)
				So(snapshot.State, ShouldEqual, "half_time")
				So(snapshot.Minute, ShouldEqual, model.HalfTimeMinute)
			})

			Convey("Then every frame should carry a consistent scoreboard", func() {
				var running model.Score
				for _, frame := range first {
					if frame.Kind == model.FrameEvent && frame.Event != nil && frame.Event.Type == string(model.EventGoal) {
						if frame.Event.Team == string(model.SideHome) {
							running.Home++
						} else {
							running.Away++
						}
					}
					So(frame.Score, ShouldResemble, running)

					sum := frame.Stats.Home.Possession + frame.Stats.Away.Possession
					So(sum, ShouldAlmostEqual, 100, 0.5)
					So(frame.Stats.Home.ShotsOnTarget, ShouldBeLessThanOrEqualTo, frame.Stats.Home.Shots)
					So(frame.Stats.Away.ShotsOnTarget, ShouldBeLessThanOrEqualTo, frame.Stats.Away.Shots)
				}
			})

			// Half-time tactic change, then the second half.
			profile, err := svc.UpdateTactic(ctx, info.ID, model.SideAway, "gegenpressing")
			So(err, ShouldBeNil)
			So(profile.Fit, ShouldBeGreaterThan, 0)
			So(profile.Fit, ShouldBeLessThanOrEqualTo, 1)

			secondCh, err := svc.StreamSecondHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			second := collect(secondCh)
			So(len(second), ShouldBeGreaterThanOrEqualTo, model.FullTimeMinute-model.SecondHalfStart)

			Convey("Then the second half should run from minute forty-six to the whistle", func() {
				So(second[0].Minute, ShouldEqual, model.SecondHalfStart)
				for _, frame := range second {
					So(frame.Minute, ShouldBeGreaterThanOrEqualTo, model.SecondHalfStart)
				}
				So(lastEventType(second), ShouldEqual, string(model.EventFullTime))

				finalMinute := second[len(second)-1].Minute
				So(finalMinute, ShouldBeGreaterThan, model.FullTimeMinute)
			})

			Convey("Then the final snapshot should settle at full-time", func() {
				snapshot, err := svc.Snapshot(ctx, info.ID)
				So(err, ShouldBeNil)
				So(snapshot.State, ShouldEqual, "full_time")

				all := append(append([]model.Frame{}, first...), second...)
				So(snapshot.Score, ShouldResemble, countGoals(all))

				// The snapshot history keeps event frames only, ticks are
				// framing and not replayed.
				for _, frame := range snapshot.Events {
					So(frame.Kind, ShouldEqual, model.FrameEvent)
				}
				So(len(snapshot.Events), ShouldEqual, len(eventSkeleton(all)))
			})

			Convey("Then closing the finished match should empty the registry", func() {
				So(svc.CloseMatch(ctx, info.ID), ShouldBeNil)
				So(svc.ActiveSessions(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestServiceLifecycleOrder(t *testing.T) {
	Convey("Given a started service with one fresh match", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc, err := startedService(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop()

		info, err := svc.CreateMatch(ctx, possessionSide(), defensiveSide(), model.MatchConditions{})
		So(err, ShouldBeNil)

		Convey("When requesting the second half before the first", func() {
			_, err := svc.StreamSecondHalf(ctx, info.ID)

			Convey("Then the order violation should surface", func() {
				So(errors.Is(err, timeline.ErrSecondHalfBeforeHalfTime), ShouldBeTrue)
			})
		})

		Convey("When streaming an unknown match", func() {
			_, err := svc.StreamFirstHalf(ctx, "no-such-match")

			Convey("Then it should report not found", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When replaying halves after the match has run its course", func() {
			firstCh, err := svc.StreamFirstHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			collect(firstCh)

			secondCh, err := svc.StreamSecondHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			collect(secondCh)

			Convey("Then the first half cannot run twice", func() {
				_, err := svc.StreamFirstHalf(ctx, info.ID)
				So(errors.Is(err, timeline.ErrHalfAlreadyGenerated), ShouldBeTrue)
			})

			Convey("Then the second half cannot run twice", func() {
				_, err := svc.StreamSecondHalf(ctx, info.ID)
				So(errors.Is(err, timeline.ErrHalfAlreadyGenerated), ShouldBeTrue)
			})

			Convey("Then tactic changes are over at full-time", func() {
				_, err := svc.UpdateTactic(ctx, info.ID, model.SideHome, "direct-play")
				So(errors.Is(err, timeline.ErrMatchFinished), ShouldBeTrue)
			})
		})
	})
}

func TestServiceStreamExclusivity(t *testing.T) {
	Convey("Given a match whose first half is mid-stream", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc, err := startedService(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop()

		info, err := svc.CreateMatch(ctx, possessionSide(), defensiveSide(), model.MatchConditions{})
		So(err, ShouldBeNil)

		// Leave the channel unconsumed so the emitter stays blocked on the
		// first frame and the session keeps its streaming flag up.
		firstCh, err := svc.StreamFirstHalf(ctx, info.ID)
		So(err, ShouldBeNil)

		Convey("When a second stream is requested for the same match", func() {
			_, err := svc.StreamFirstHalf(ctx, info.ID)

			Convey("Then the live stream wins", func() {
				So(errors.Is(err, service.ErrStreamActive), ShouldBeTrue)
			})
		})

		collect(firstCh)
	})
}

func TestServiceStreamCancellation(t *testing.T) {
	Convey("Given a paced match and an impatient consumer", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc, err := startedService(ctx, service.WithTickDelay(2*time.Millisecond))
		So(err, ShouldBeNil)
		defer svc.Stop()

		info, err := svc.CreateMatch(ctx, possessionSide(), defensiveSide(), model.MatchConditions{})
		So(err, ShouldBeNil)

		streamCtx, stop := context.WithCancel(ctx)
		firstCh, err := svc.StreamFirstHalf(streamCtx, info.ID)
		So(err, ShouldBeNil)

		Convey("When the consumer walks away after one frame", func() {
			<-firstCh
			stop()
			collect(firstCh) // drains whatever was in flight until close

			Convey("Then the half still completes internally", func() {
				deadline := time.Now().Add(5 * time.Second)
				state := ""
				for time.Now().Before(deadline) {
					snapshot, err := svc.Snapshot(ctx, info.ID)
					So(err, ShouldBeNil)
					state = snapshot.State
					if state == "half_time" {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(state, ShouldEqual, "half_time")
			})

			Convey("And the second half remains streamable afterwards", func() {
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					snapshot, err := svc.Snapshot(ctx, info.ID)
					So(err, ShouldBeNil)
					if snapshot.State == "half_time" {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}

				secondCh, err := svc.StreamSecondHalf(ctx, info.ID)
				So(err, ShouldBeNil)
				second := collect(secondCh)
				So(lastEventType(second), ShouldEqual, string(model.EventFullTime))
			})
		})
	})
}

func TestServiceReproducibility(t *testing.T) {
	Convey("Given two services sharing a seed", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		play := func(seed int64) ([]string, model.Score) {
			svc, err := startedService(ctx, service.WithSeed(seed))
			So(err, ShouldBeNil)
			defer svc.Stop()

			info, err := svc.CreateMatch(ctx, possessionSide(), defensiveSide(), model.MatchConditions{})
			So(err, ShouldBeNil)

			firstCh, err := svc.StreamFirstHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			frames := collect(firstCh)

			secondCh, err := svc.StreamSecondHalf(ctx, info.ID)
			So(err, ShouldBeNil)
			frames = append(frames, collect(secondCh)...)

			snapshot, err := svc.Snapshot(ctx, info.ID)
			So(err, ShouldBeNil)
			return eventSkeleton(frames), snapshot.Score
		}

		Convey("When the same fixture is played twice", func() {
			firstRun, firstScore := play(99)
			secondRun, secondScore := play(99)

			Convey("Then the event sequences should be identical", func() {
				So(len(firstRun), ShouldBeGreaterThan, 0)
				So(secondRun, ShouldResemble, firstRun)
				So(secondScore, ShouldResemble, firstScore)
			})
		})
	})
}

func TestServiceConcurrentMatches(t *testing.T) {
	Convey("Given a started service under concurrent load", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc, err := startedService(ctx, service.WithShardCount(4))
		So(err, ShouldBeNil)
		defer svc.Stop()

		const matches = 8

		Convey("When several matches run their first halves in parallel", func() {
			var wg sync.WaitGroup
			errs := make([]error, matches)

			for i := 0; i < matches; i++ {
				home := possessionSide()
				home.Name = fmt.Sprintf("Home %d", i)
				away := defensiveSide()
				away.Name = fmt.Sprintf("Away %d", i)

				info, err := svc.CreateMatch(ctx, home, away, model.MatchConditions{})
				So(err, ShouldBeNil)

				wg.Add(1)
				go func(idx int, id string) {
					defer wg.Done()
					ch, err := svc.StreamFirstHalf(ctx, id)
					if err != nil {
						errs[idx] = err
						return
					}
					frames := collect(ch)
					if len(frames) == 0 {
						errs[idx] = fmt.Errorf("match %s produced no frames", id)
					}
				}(i, info.ID)
			}
			wg.Wait()

			Convey("Then every match should stream cleanly", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
				So(svc.ActiveSessions(ctx), ShouldEqual, matches)
			})
		})
	})
}
