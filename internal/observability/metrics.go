package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionTransitions counts applied reaction transitions by target kind and statuses.
	ReactionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_transitions_total",
		Help: "Total number of applied reaction transitions",
	}, []string{"target", "from", "to"})

	// ReactionNoops counts reactions that repeated the current status.
	ReactionNoops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_noops_total",
		Help: "Total number of reactions that did not change state",
	}, []string{"target"})

	// ReactionConflicts counts optimistic version conflicts.
	ReactionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_conflicts_total",
		Help: "Total number of optimistic reaction write conflicts",
	}, []string{"target"})

	// ReactionRetriesExhausted counts reactions abandoned after the retry budget.
	ReactionRetriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_retries_exhausted_total",
		Help: "Total number of reactions that failed after all retries",
	}, []string{"target"})

	// EventsPublished counts reaction events by sink and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_events_published_total",
		Help: "Total number of published domain events",
	}, []string{"sink", "result"})
)

// DatabaseMetrics records query latency for one repository.
type DatabaseMetrics struct {
	table string
}

// NewDatabaseMetrics returns a DatabaseMetrics for the given table.
func NewDatabaseMetrics(table string) *DatabaseMetrics {
	return &DatabaseMetrics{table: table}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, m.table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, start)
	}
}

// RecordReaction counts one reaction outcome.
func RecordReaction(target, from, to string, changed bool) {
	if !changed {
		ReactionNoops.WithLabelValues(target).Inc()
		return
	}
	ReactionTransitions.WithLabelValues(target, from, to).Inc()
}
