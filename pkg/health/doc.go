/*
Package health provides pluggable health checks used by Chronicle's own
liveness signal and by preflight checks against the upstream node.

The Checker interface (Check(ctx) Result, Type() CheckType) is the
teacher's original modular design: a health check is anything that can
report Healthy/Message/Duration, independent of what it actually probes.
Two checkers are provided:

  - SyncLivenessChecker backs the /health endpoint (spec §6.2): healthy
    iff the store's latest committed slot is within MaxLag (default 5m)
    of now.
  - TCPChecker is a generic reusable probe, used as a preflight
    reachability check against the node's address before cmd/chronicle
    starts the supervisor.

Status tracks consecutive successes/failures against a Config (interval,
timeout, retries, start period) the same way regardless of which Checker
backs it — for a check that needs debouncing rather than an instant
yes/no. Nothing in this repository drives a Status today: /health reads
SyncLivenessChecker directly, and the node-reachability preflight in
cmd/chronicle is a single instant TCPChecker.Check.

# Usage

	checker := health.NewSyncLivenessChecker(store)
	result := checker.Check(ctx)
	if !result.Healthy {
		http.Error(w, result.Message, http.StatusServiceUnavailable)
	}
*/
package health
