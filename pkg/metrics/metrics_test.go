package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithRegistry(reg),
			WithNamespace("test"),
			WithSubsystem("match"),
			WithCustomLabels(map[string]string{"instance": "unit"}),
		)

		Convey("When recording simulation activity", func() {
			m.matchesTotal.Inc()
			m.eventsLogged.WithLabelValues("Pass").Add(3)
			m.goalsTotal.WithLabelValues("Home").Inc()
			m.possessionsTotal.WithLabelValues("Away").Add(2)

			Convey("Then the counters report what was recorded", func() {
				So(testutil.ToFloat64(m.matchesTotal), ShouldEqual, 1)
				So(testutil.ToFloat64(m.eventsLogged.WithLabelValues("Pass")), ShouldEqual, 3)
				So(testutil.ToFloat64(m.goalsTotal.WithLabelValues("Home")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.possessionsTotal.WithLabelValues("Away")), ShouldEqual, 2)
			})

			Convey("Then the registry gathers the namespaced families", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_match_matches_total"], ShouldBeTrue)
				So(names["test_match_events_logged_total"], ShouldBeTrue)
				So(names["test_match_goals_total"], ShouldBeTrue)
			})
		})

		Convey("When observing durations", func() {
			m.matchDuration.Observe(0.25)
			m.exportDuration.WithLabelValues("csv").Observe(0.01)

			Convey("Then the histograms accept the samples", func() {
				So(testutil.CollectAndCount(m.matchDuration), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.exportDuration), ShouldEqual, 1)
			})
		})
	})

	Convey("Given the package-level helpers", t, func() {
		before := testutil.ToFloat64(Default().matchesTotal)

		Convey("When recording through them", func() {
			RecordMatchCompleted()
			RecordEventLogged("Shot")
			RecordGoal("Away")
			RecordPossession("Home")
			ObserveMatchRun(0.1)
			ObserveExport("xes", 0.02)
			RecordExportError()
			RecordStoreWrite()
			RecordStoreError()

			Convey("Then the shared manager accumulates", func() {
				So(testutil.ToFloat64(Default().matchesTotal), ShouldEqual, before+1)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		// The helpers consult the default manager's flag; a standalone
		// disabled manager still registers but records nothing through them.
		reg := prometheus.NewRegistry()
		m := NewManager(WithRegistry(reg), WithEnabled(false))
		So(m.enabled, ShouldBeFalse)
	})
}
