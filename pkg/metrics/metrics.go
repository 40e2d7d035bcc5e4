// Package metrics provides Prometheus metrics for the matchlog simulator.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for the simulator.
type Manager struct {
	namespace    string
	subsystem    string
	buckets      []float64
	enabled      bool
	customLabels map[string]string
	registry     prometheus.Registerer

	matchesTotal     prometheus.Counter
	eventsLogged     *prometheus.CounterVec
	goalsTotal       *prometheus.CounterVec
	possessionsTotal *prometheus.CounterVec
	matchDuration    prometheus.Histogram
	exportDuration   *prometheus.HistogramVec
	exportErrors     prometheus.Counter
	storeWrites      prometheus.Counter
	storeErrors      prometheus.Counter
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "matchlog",
		subsystem: "sim",
		buckets:   prometheus.DefBuckets,
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.matchesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_total",
		Help:        "Completed match simulations.",
		ConstLabels: prometheus.Labels(m.customLabels),
	})
	m.eventsLogged = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_logged_total",
		Help:        "Event records appended to the match log, by action.",
		ConstLabels: prometheus.Labels(m.customLabels),
	}, []string{"action"})
	m.goalsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "goals_total",
		Help:        "Goals scored, by team.",
		ConstLabels: prometheus.Labels(m.customLabels),
	}, []string{"team"})
	m.possessionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "possessions_total",
		Help:        "Possession episodes opened, by team.",
		ConstLabels: prometheus.Labels(m.customLabels),
	}, []string{"team"})
	m.matchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_run_seconds",
		Help:        "Wall-clock time spent simulating one match.",
		Buckets:     m.buckets,
		ConstLabels: prometheus.Labels(m.customLabels),
	})
	m.exportDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "export",
		Name:        "duration_seconds",
		Help:        "Time spent serializing the event log, by format.",
		Buckets:     m.buckets,
		ConstLabels: prometheus.Labels(m.customLabels),
	}, []string{"format"})
	m.exportErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "export",
		Name:        "errors_total",
		Help:        "Export serialization failures.",
		ConstLabels: prometheus.Labels(m.customLabels),
	})
	m.storeWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "writes_total",
		Help:        "Matches persisted to the event store.",
		ConstLabels: prometheus.Labels(m.customLabels),
	})
	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "errors_total",
		Help:        "Event store write failures.",
		ConstLabels: prometheus.Labels(m.customLabels),
	})

	return m
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the lazily-created package-level Manager.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// RecordMatchCompleted increments the completed-matches counter.
func RecordMatchCompleted() {
	m := Default()
	if !m.enabled {
		return
	}
	m.matchesTotal.Inc()
}

// RecordEventLogged counts one appended event record.
func RecordEventLogged(action string) {
	m := Default()
	if !m.enabled {
		return
	}
	m.eventsLogged.WithLabelValues(action).Inc()
}

// RecordGoal counts a goal for the given team.
func RecordGoal(team string) {
	m := Default()
	if !m.enabled {
		return
	}
	m.goalsTotal.WithLabelValues(team).Inc()
}

// RecordPossession counts a possession episode opened by the given team.
func RecordPossession(team string) {
	m := Default()
	if !m.enabled {
		return
	}
	m.possessionsTotal.WithLabelValues(team).Inc()
}

// ObserveMatchRun records wall-clock simulation time in seconds.
func ObserveMatchRun(seconds float64) {
	m := Default()
	if !m.enabled {
		return
	}
	m.matchDuration.Observe(seconds)
}

// ObserveExport records serialization time for one export format.
func ObserveExport(format string, seconds float64) {
	m := Default()
	if !m.enabled {
		return
	}
	m.exportDuration.WithLabelValues(format).Observe(seconds)
}

// RecordExportError counts a failed export.
func RecordExportError() {
	m := Default()
	if !m.enabled {
		return
	}
	m.exportErrors.Inc()
}

// RecordStoreWrite counts a persisted match.
func RecordStoreWrite() {
	m := Default()
	if !m.enabled {
		return
	}
	m.storeWrites.Inc()
}

// RecordStoreError counts a failed store write.
func RecordStoreError() {
	m := Default()
	if !m.enabled {
		return
	}
	m.storeErrors.Inc()
}
