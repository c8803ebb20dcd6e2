/*
Package events provides an in-memory event broker for Chronicle's internal
lifecycle signaling.

The events package implements a lightweight, non-blocking pub/sub bus. The
supervisor is its only publisher: it announces worker restarts and its own
shutdown to whatever subscribes.

# Core Components

Event Broker:
  - Central message bus, one buffered channel (100) in front of a
    broadcast loop, one buffered channel (50) per subscriber
  - Non-blocking publish; full subscriber buffers skip rather than block
  - Graceful shutdown via broker.Stop()

Event:
  - ID, Type, Timestamp, Message, Metadata (string key/value pairs)

Event Types:
  - sync.next: a committed-milestone signal; defined, but neither the
    ingestion worker nor the gap filler publishes it
  - gapfiller.idle: a gap-filler-idle signal; defined, but the gap filler
    does not publish it
  - worker.restarted: the supervisor restarted a child after a classified
    transient failure (spec §4.7) — metadata carries "worker", "reason"
  - shutdown: broadcast once, on the first shutdown signal (spec §5)

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			switch event.Type {
			case events.EventSyncNext:
				metrics.RecordMilestoneCommitted(event.Metadata["milestone_index"])
			case events.EventShutdown:
				return
			}
		}
	}()

	broker.Publish(&events.Event{
		Type:     events.EventSyncNext,
		Message:  "milestone 1284031 committed",
		Metadata: map[string]string{"milestone_index": "1284031"},
	})

# Design Patterns

Non-blocking publish, fan-out to all subscribers, fire-and-forget delivery
(no acknowledgment, no retry): suitable for observability signals, not for
anything requiring guaranteed delivery — the store and its sync markers
remain the source of truth for what has actually been committed.

# Limitations

In-memory only, no persistence or replay, no ordering guarantee across
subscribers, no topic filtering (every subscriber receives every event and
filters client-side). Always `defer broker.Unsubscribe(sub)`; an
unsubscribed channel held open is the only leak this package can cause.
*/
package events
