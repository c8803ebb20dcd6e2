/*
Package metrics registers Chronicle's Prometheus metrics and exposes them
over /metrics via promhttp.

# Core Components

Metric Registry:
  - Package-level prometheus.Collector variables, registered once in
    init() against the default registry.

Ingestion & gap filler:
  - chronicle_ingestion_lag_seconds (gauge): age of the latest committed
    milestone.
  - chronicle_milestone_commit_duration_seconds (histogram) and
    chronicle_milestones_committed_total{source} (counter).
  - chronicle_gap_count (gauge) and
    chronicle_gap_fill_requests_total{outcome} (counter).

Indexer & API:
  - chronicle_indexer_query_duration_seconds{kind} and
    chronicle_indexer_queries_total{kind}.
  - chronicle_api_requests_total{route,status} and
    chronicle_api_request_duration_seconds{route}.

Supervisor:
  - chronicle_worker_restarts_total{worker}, incremented alongside the
    events.EventWorkerRestarted signal.

Collector:
  - Polls the store and node every 15s for the two gauges that have no
    natural call site on the hot path (ingestion lag, gap count), the
    same ticker/stopCh shape used elsewhere in this codebase for
    background loops.

Timer:
  - Convenience wrapper: start a Timer, ObserveDuration(histogram) or
    ObserveDurationVec(histogramVec, labels...) when the operation ends.

# Usage

	timer := metrics.NewTimer()
	if err := ingestMilestone(ctx, m); err != nil {
		return err
	}
	timer.ObserveDuration(metrics.MilestoneCommitDuration)
	metrics.MilestonesCommittedTotal.WithLabelValues("ingestion").Inc()

	http.Handle("/metrics", metrics.Handler())

# Design Patterns

Package-level registration, label cardinality kept to enum-like values
(route, status, worker name, output kind) — never request IDs or
timestamps.
*/
package metrics
