/*
Package supervisor runs Chronicle's long-lived workers — the ingestion
worker, the gap filler, and the HTTP API — under one cancellation root
and decides, per spec §4.7 and §7, whether a failure clears on retry or
should bring the process down.

# Core Components

Worker:
  - Anything with Run(ctx) error that returns promptly once ctx is
    canceled. WorkerFunc adapts a plain function.

Supervisor:
  - Owns the shared context. Run starts every registered worker in its
    own goroutine and blocks until the parent context is canceled or one
    worker fails with a non-restartable error.

Failure classification (restartable):
  - chronoerr.TransportTransient, chronoerr.StorageTransient and
    chronoerr.ProtocolViolation are restarted with exponential backoff
    (github.com/cenkalti/backoff/v4): the upstream node or the store is
    expected to recover, or the ingestion worker simply resumes the
    ledger-update stream from the last completed milestone.
  - Anything else — chronoerr.StorageFatal, a panic recovered inside the
    worker, an unclassified error — cancels the shared context so every
    other worker unwinds, and Run returns that error to the caller.

# Usage

	sup := supervisor.New(log.Logger, broker, supervisor.DefaultConfig())
	err := sup.Run(ctx, map[string]supervisor.Worker{
		"ingestion": ingestionWorker,
		"gapfiller": gapFiller,
		"httpapi":   apiServer,
	})

# Design Patterns

One cancellation root, N supervised children: a child's only contract is
to stop promptly on ctx.Done(). The supervisor never inspects what a
worker was doing, only the shape of the error it returned.

# Limitations

Each worker keeps its own backoff schedule. The backoff library's default
randomization of each interval is left in place, but nothing coordinates
two workers that fail at the same time.
*/
package supervisor
