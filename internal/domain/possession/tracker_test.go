package possession_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/domain/possession"
)

func TestTracker(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := possession.NewTracker(4821)
		at := time.Date(2025, 5, 17, 15, 0, 0, 0, time.UTC)

		Convey("Then no episode is open", func() {
			So(tr.Current(), ShouldBeNil)
			So(tr.CurrentID(), ShouldEqual, "")
			So(tr.Total(), ShouldEqual, 0)
		})

		Convey("When starting the first episode", func() {
			ep, err := tr.Start(model.TeamHome, at)
			So(err, ShouldBeNil)

			Convey("Then the ID carries the match and a padded sequence", func() {
				So(ep.ID, ShouldEqual, "M4821-P001")
				So(ep.Team, ShouldEqual, model.TeamHome)
				So(ep.Open(), ShouldBeTrue)
				So(tr.CurrentID(), ShouldEqual, ep.ID)
			})

			Convey("When starting another episode without ending the first", func() {
				_, err := tr.Start(model.TeamAway, at)

				Convey("Then the invariant violation surfaces", func() {
					So(errors.Is(err, possession.ErrInvariant), ShouldBeTrue)
				})
			})

			Convey("When players touch the ball", func() {
				So(tr.Touch(7), ShouldBeNil)
				So(tr.Touch(7), ShouldBeNil)
				So(tr.Touch(10), ShouldBeNil)
				So(tr.Touch(7), ShouldBeNil)

				Convey("Then consecutive touches by one player collapse", func() {
					So(ep.Players, ShouldResemble, []int{7, 10, 7})
				})
			})

			Convey("When the episode ends", func() {
				closed, err := tr.End()
				So(err, ShouldBeNil)

				Convey("Then it is closed and the tracker is empty", func() {
					So(closed.ID, ShouldEqual, ep.ID)
					So(closed.Open(), ShouldBeFalse)
					So(tr.Current(), ShouldBeNil)
				})

				Convey("Then the next episode continues the sequence", func() {
					next, err := tr.Start(model.TeamAway, at.Add(6*time.Second))
					So(err, ShouldBeNil)
					So(next.ID, ShouldEqual, "M4821-P002")
					So(tr.Total(), ShouldEqual, 2)
					So(tr.Count(model.TeamHome), ShouldEqual, 1)
					So(tr.Count(model.TeamAway), ShouldEqual, 1)
				})
			})
		})

		Convey("When touching or ending with nothing open", func() {
			So(errors.Is(tr.Touch(9), possession.ErrInvariant), ShouldBeTrue)
			_, err := tr.End()
			So(errors.Is(err, possession.ErrInvariant), ShouldBeTrue)
		})
	})
}
