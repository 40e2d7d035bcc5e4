package analysis_test

import (
	"context"
	"io"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchlog/internal/analysis"
	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestBatchRun(t *testing.T) {
	Convey("Given a small batch configuration", t, func() {
		cfg := analysis.Config{
			Matches:         4,
			Workers:         2,
			BaseSeed:        100,
			DurationMinutes: 10,
		}

		Convey("When running the batch", func() {
			report, err := analysis.Run(context.Background(), cfg)
			So(err, ShouldBeNil)

			Convey("Then one summary per match comes back, sorted by seed", func() {
				So(report.RunID, ShouldNotBeEmpty)
				So(len(report.Matches), ShouldEqual, 4)
				for i, m := range report.Matches {
					So(m.Seed, ShouldEqual, int64(100+i))
					So(m.MatchID, ShouldBeBetweenOrEqual, 1000, 9999)
					So(m.Events, ShouldBeGreaterThan, 0)
					So(m.Possessions, ShouldBeGreaterThan, 0)
				}
			})

			Convey("Then the aggregates are consistent with the summaries", func() {
				goals := 0
				for _, m := range report.Matches {
					goals += m.HomeScore + m.AwayScore
				}
				So(report.TotalGoals, ShouldEqual, goals)
				So(report.AvgGoals, ShouldEqual, float64(goals)/4)
				So(report.AvgPossessions, ShouldBeGreaterThan, 0)
				So(report.AvgPossessionLength, ShouldBeGreaterThan, 0)
			})

			Convey("Then pressure splits cover the on-ball actions", func() {
				So(report.ByPressure, ShouldContainKey, model.ActionPass)
				So(report.ByPressure, ShouldContainKey, model.ActionDribble)
				So(report.ByPressure, ShouldContainKey, model.ActionShot)

				pass := report.ByPressure[model.ActionPass]
				So(pass.Attempts[0]+pass.Attempts[1], ShouldBeGreaterThan, 0)
				for flag := 0; flag <= 1; flag++ {
					So(pass.Rate(flag), ShouldBeBetweenOrEqual, 0, 1)
					So(pass.Successes[flag], ShouldBeLessThanOrEqualTo, pass.Attempts[flag])
				}
			})
		})

		Convey("When running the same batch twice", func() {
			a, err := analysis.Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			b, err := analysis.Run(context.Background(), cfg)
			So(err, ShouldBeNil)

			Convey("Then everything but the run identity matches", func() {
				So(a.Matches, ShouldResemble, b.Matches)
				So(a.TotalGoals, ShouldEqual, b.TotalGoals)
				So(a.ByPressure, ShouldResemble, b.ByPressure)
				So(a.RunID, ShouldNotEqual, b.RunID)
			})
		})

		Convey("When a match fails to build", func() {
			bad := cfg
			bad.HomeFormation = "4-4-4"
			_, err := analysis.Run(context.Background(), bad)
			So(err, ShouldNotBeNil)
		})

		Convey("When the context is already canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := analysis.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
