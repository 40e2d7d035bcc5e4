package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/engine"
	"github.com/okian/matchlog/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// runMatch simulates a short seeded match and fails the test on any error.
func runMatch(seed int64, minutes int) *engine.Result {
	eng, err := engine.New(
		engine.WithSeed(seed),
		engine.WithDuration(minutes),
	)
	So(err, ShouldBeNil)
	res, err := eng.Run(context.Background())
	So(err, ShouldBeNil)
	return res
}

func TestConfigurationValidation(t *testing.T) {
	Convey("Given engine construction", t, func() {
		Convey("When the duration is negative", func() {
			_, err := engine.New(engine.WithDuration(-1))

			Convey("Then it fails before any tick", func() {
				So(errors.Is(err, engine.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a formation is malformed", func() {
			for _, bad := range []string{"4-4-3", "4", "a-b-c", "0-10", "4-4-1-1-1"} {
				_, err := engine.New(engine.WithFormations(bad, "4-4-2"))
				So(errors.Is(err, engine.ErrInvalidConfig), ShouldBeTrue)
			}
		})

		Convey("When an unusual but legal formation is given", func() {
			_, err := engine.New(engine.WithFormations("5-4-1", "3-4-3"))
			So(err, ShouldBeNil)
		})

		Convey("When building with defaults", func() {
			eng, err := engine.New()
			So(err, ShouldBeNil)

			Convey("Then the match ID falls in the four-digit range", func() {
				So(eng.MatchID(), ShouldBeBetweenOrEqual, 1000, 9999)
				So(eng.Running(), ShouldBeFalse)
			})
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given two engines built from the same seed", t, func() {
		a := runMatch(42, 15)
		b := runMatch(42, 15)

		Convey("Then they produce bit-identical logs", func() {
			So(a.MatchID, ShouldEqual, b.MatchID)
			So(a.HomeScore, ShouldEqual, b.HomeScore)
			So(a.AwayScore, ShouldEqual, b.AwayScore)
			So(a.Records, ShouldResemble, b.Records)
		})
	})

	Convey("Given two engines built from different seeds", t, func() {
		a := runMatch(1, 15)
		b := runMatch(2, 15)

		Convey("Then the logs diverge", func() {
			So(a.Records, ShouldNotResemble, b.Records)
		})
	})
}

func TestZeroDurationBoundary(t *testing.T) {
	Convey("Given a zero-minute match", t, func() {
		res := runMatch(7, 0)

		Convey("Then it completes with an empty log", func() {
			So(res.Records, ShouldBeEmpty)
			So(res.ElapsedMinutes, ShouldEqual, 0)
			So(res.Possessions, ShouldEqual, 0)
			So(res.HomeScore, ShouldEqual, 0)
			So(res.AwayScore, ShouldEqual, 0)
		})
	})
}

func TestCancellation(t *testing.T) {
	Convey("Given a canceled context", t, func() {
		eng, err := engine.New(engine.WithDuration(90))
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When running the match", func() {
			_, err := eng.Run(ctx)

			Convey("Then it aborts with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(eng.Running(), ShouldBeFalse)
			})
		})
	})
}

func TestLogShape(t *testing.T) {
	Convey("Given a completed match", t, func() {
		res := runMatch(99, 30)
		So(len(res.Records), ShouldBeGreaterThan, 0)

		Convey("Then the log opens with the kickoff possession", func() {
			first := res.Records[0]
			So(first.Action, ShouldEqual, model.ActionPossessionStart)
			So(first.Team, ShouldEqual, model.TeamHome)
			So(first.PlayerID, ShouldEqual, 0)
			So(first.Zone, ShouldEqual, "C3")
			So(first.PossessionID, ShouldEndWith, "-P001")
		})

		Convey("Then every record is fully populated", func() {
			for _, rec := range res.Records {
				So(rec.PossessionID, ShouldStartWith, "M")
				So(rec.Timestamp.IsZero(), ShouldBeFalse)
				So(rec.Action, ShouldNotBeEmpty)
				So(rec.Zone, ShouldNotBeEmpty)
				So(rec.Pressure == 0 || rec.Pressure == 1, ShouldBeTrue)
			}
		})

		Convey("Then timestamps advance on the tick grid", func() {
			kickoff := res.Records[0].Timestamp
			prev := kickoff
			for _, rec := range res.Records {
				So(rec.Timestamp.Before(prev), ShouldBeFalse)
				So(rec.Timestamp.Sub(kickoff)%(6*time.Second), ShouldEqual, time.Duration(0))
				prev = rec.Timestamp
			}
		})

		Convey("Then possession episodes are contiguous and never reused", func() {
			seen := make(map[string]bool)
			last := ""
			for _, rec := range res.Records {
				if rec.PossessionID != last {
					So(seen[rec.PossessionID], ShouldBeFalse)
					seen[rec.PossessionID] = true
					last = rec.PossessionID
				}
			}
			So(len(seen), ShouldEqual, res.Possessions)
		})

		Convey("Then every episode is bracketed by start and end markers", func() {
			byID := make(map[string][]model.EventRecord)
			var order []string
			for _, rec := range res.Records {
				if _, ok := byID[rec.PossessionID]; !ok {
					order = append(order, rec.PossessionID)
				}
				byID[rec.PossessionID] = append(byID[rec.PossessionID], rec)
			}
			for i, id := range order {
				events := byID[id]
				So(events[0].Action, ShouldEqual, model.ActionPossessionStart)
				// The final episode may be cut off by the whistle.
				if i < len(order)-1 {
					So(events[len(events)-1].Action, ShouldEqual, model.ActionPossessionEnd)
				}
			}
		})
	})
}

func TestScoringInvariants(t *testing.T) {
	Convey("Given a completed match", t, func() {
		res := runMatch(2024, 90)

		Convey("Then the final score equals the goal records", func() {
			home, away := 0, 0
			for _, rec := range res.Records {
				if rec.Action != model.ActionGoal {
					continue
				}
				if rec.Team == model.TeamHome {
					home++
				} else {
					away++
				}
			}
			So(home, ShouldEqual, res.HomeScore)
			So(away, ShouldEqual, res.AwayScore)
		})

		Convey("Then scoring value is non-negative and shots-only", func() {
			for _, rec := range res.Records {
				So(rec.XGChange, ShouldBeGreaterThanOrEqualTo, 0)
				if !rec.Action.IsShot() {
					So(rec.XGChange, ShouldEqual, 0)
				}
				if rec.Action == model.ActionGoal {
					So(rec.XGChange, ShouldEqual, 1.0)
					So(rec.Outcome, ShouldEqual, model.OutcomeSuccess)
				}
			}
		})

		Convey("Then every goal follows a beaten goalkeeper", func() {
			for i, rec := range res.Records {
				if rec.Action != model.ActionGoal {
					continue
				}
				So(i, ShouldBeGreaterThanOrEqualTo, 2)
				save := res.Records[i-1]
				shot := res.Records[i-2]
				So(save.Action, ShouldEqual, model.ActionSave)
				So(save.Outcome, ShouldEqual, model.OutcomeFailure)
				So(save.Team, ShouldEqual, rec.Team.Opponent())
				So(shot.Action, ShouldEqual, model.ActionShot)
				So(shot.Outcome, ShouldEqual, model.OutcomeSuccess)
				So(shot.Team, ShouldEqual, rec.Team)
				So(shot.PlayerID, ShouldEqual, rec.PlayerID)
			}
		})

		Convey("Then the score context replays from the log alone", func() {
			home, away := 0, 0
			for _, rec := range res.Records {
				if rec.Action == model.ActionGoal {
					if rec.Team == model.TeamHome {
						home++
					} else {
						away++
					}
				}
				So(rec.TeamStatus, ShouldEqual, model.StatusOf(home, away))
			}
		})
	})
}

func TestTurnoverOrdering(t *testing.T) {
	Convey("Given a completed match", t, func() {
		res := runMatch(61, 45)

		Convey("Then a new possession opens for the other side after each turnover", func() {
			for i, rec := range res.Records {
				if rec.Action != model.ActionPossessionEnd {
					continue
				}
				if i+1 >= len(res.Records) {
					continue
				}
				next := res.Records[i+1]
				So(next.Action, ShouldEqual, model.ActionPossessionStart)
				So(next.PossessionID, ShouldNotEqual, rec.PossessionID)
			}
		})

		Convey("Then successful tackles hand the ball to the tackler's side", func() {
			for i, rec := range res.Records {
				if rec.Action != model.ActionTackle && rec.Action != model.ActionInterception {
					continue
				}
				if rec.Outcome != model.OutcomeSuccess || i+3 >= len(res.Records) {
					continue
				}
				// end(old) -> start(new) -> recovery by the winner
				So(res.Records[i+1].Action, ShouldEqual, model.ActionPossessionEnd)
				So(res.Records[i+2].Action, ShouldEqual, model.ActionPossessionStart)
				So(res.Records[i+2].Team, ShouldEqual, rec.Team)
				So(res.Records[i+3].Action, ShouldEqual, model.ActionBallRecovery)
				So(res.Records[i+3].Team, ShouldEqual, rec.Team)
				So(res.Records[i+3].PlayerID, ShouldEqual, rec.PlayerID)
			}
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a completed match", t, func() {
		res := runMatch(314, 30)
		stats := engine.ComputeStats(res.Records)

		Convey("Then the projection agrees with the engine's final state", func() {
			So(stats.HomeScore, ShouldEqual, res.HomeScore)
			So(stats.AwayScore, ShouldEqual, res.AwayScore)
			So(stats.TotalEvents, ShouldEqual, len(res.Records))
			So(stats.Possessions["Home"]+stats.Possessions["Away"], ShouldEqual, res.Possessions)
		})

		Convey("Then action tallies cover the whole log", func() {
			total := 0
			for _, n := range stats.ActionCounts {
				total += n
			}
			So(total, ShouldEqual, len(res.Records))
			for action, n := range stats.ActionSuccesses {
				So(n, ShouldBeLessThanOrEqualTo, stats.ActionCounts[action])
			}
		})

		Convey("Then accumulated shot value is plausible", func() {
			So(stats.HomeXG, ShouldBeGreaterThanOrEqualTo, float64(res.HomeScore))
			So(stats.AwayXG, ShouldBeGreaterThanOrEqualTo, float64(res.AwayScore))
		})
	})
}

func TestPossessionIDFormat(t *testing.T) {
	Convey("Given a completed match", t, func() {
		res := runMatch(5, 10)

		Convey("Then every possession ID carries the match prefix", func() {
			for _, rec := range res.Records {
				So(strings.HasPrefix(rec.PossessionID, "M"), ShouldBeTrue)
				So(strings.Contains(rec.PossessionID, "-P"), ShouldBeTrue)
			}
		})
	})
}
