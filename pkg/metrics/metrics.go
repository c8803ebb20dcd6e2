package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion metrics (spec §4.4)
	IngestionLagSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronicle_ingestion_lag_seconds",
			Help: "Age of the latest committed milestone relative to wall clock",
		},
	)

	MilestoneCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronicle_milestone_commit_duration_seconds",
			Help:    "Time taken to commit one milestone's cone to the store",
			Buckets: prometheus.DefBuckets,
		},
	)

	MilestonesCommittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_milestones_committed_total",
			Help: "Total milestones committed, by source (ingestion or gapfiller)",
		},
		[]string{"source"},
	)

	// Gap filler metrics (spec §4.3)
	GapCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronicle_gap_count",
			Help: "Number of milestone indices currently missing inside the gap filler's effective range",
		},
	)

	GapFillRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_gap_fill_requests_total",
			Help: "Total gap-fill requests issued to the node, by outcome",
		},
		[]string{"outcome"},
	)

	// Indexer query metrics (spec §4.5)
	IndexerQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronicle_indexer_query_duration_seconds",
			Help:    "Time taken to answer a typed output query, by output kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	IndexerQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_indexer_queries_total",
			Help: "Total typed output queries served, by output kind",
		},
		[]string{"kind"},
	)

	// HTTP API metrics (spec §6.2)
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_api_requests_total",
			Help: "Total HTTP API requests, by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronicle_api_request_duration_seconds",
			Help:    "HTTP API request duration in seconds, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Supervisor metrics (spec §4.7)
	WorkerRestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_worker_restarts_total",
			Help: "Total worker restarts performed by the supervisor, by worker name",
		},
		[]string{"worker"},
	)
)

func init() {
	prometheus.MustRegister(
		IngestionLagSeconds,
		MilestoneCommitDuration,
		MilestonesCommittedTotal,
		GapCount,
		GapFillRequestsTotal,
		IndexerQueryDuration,
		IndexerQueriesTotal,
		APIRequestsTotal,
		APIRequestDuration,
		WorkerRestartsTotal,
	)
}

// Handler returns the Prometheus HTTP handler for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations and observing the elapsed
// duration against a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
