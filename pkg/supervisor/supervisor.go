// Package supervisor runs Chronicle's long-lived workers (ingestion, gap
// filler, the HTTP API) under one cancellation root and restarts them on
// the failure classes that are expected to clear on retry (spec §4.7,
// §7). It is the single place a transient node or storage hiccup is told
// apart from a failure that should bring the whole process down.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/events"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/metrics"
)

// Worker is a long-lived task the supervisor restarts on transient
// failure. Run must return promptly once ctx is canceled.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a plain function to Worker.
type WorkerFunc func(ctx context.Context) error

func (f WorkerFunc) Run(ctx context.Context) error { return f(ctx) }

// Config controls the restart backoff applied to a classified-transient
// worker failure.
type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration // 0 disables the elapsed-time ceiling: retry forever
}

// DefaultConfig returns the default restart backoff schedule: 1s initial
// interval, 1m cap, no elapsed-time ceiling.
func DefaultConfig() Config {
	return Config{
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		MaxElapsedTime:  0,
	}
}

func (c Config) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.MaxElapsedTime = c.MaxElapsedTime
	return b
}

// Supervisor owns the cancellation root for every worker registered with
// it. The first worker to return a non-restartable error cancels the
// root and every other worker unwinds.
type Supervisor struct {
	log    zerolog.Logger
	broker *events.Broker
	cfg    Config

	cancel context.CancelFunc
	errCh  chan error
	names  []string
}

// New builds a Supervisor. broker may be nil: restart and shutdown
// events are then simply not published.
func New(log zerolog.Logger, broker *events.Broker, cfg Config) *Supervisor {
	return &Supervisor{log: log.With().Str("component", "supervisor").Logger(), broker: broker, cfg: cfg}
}

// registration pairs a worker with the name it's logged and reported
// under.
type registration struct {
	name   string
	worker Worker
}

// Run starts every registered worker and blocks until ctx is canceled or
// one worker fails with a non-restartable error, whichever comes first.
// It returns the fatal error, or nil on a clean ctx cancellation.
func (s *Supervisor) Run(ctx context.Context, workers map[string]Worker) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel

	fatal := make(chan error, len(workers))
	for name, w := range workers {
		reg := registration{name: name, worker: w}
		go s.superviseOne(runCtx, reg, fatal)
	}

	select {
	case <-ctx.Done():
		s.publishShutdown()
		cancel()
		return nil
	case err := <-fatal:
		s.publishShutdown()
		cancel()
		return err
	}
}

// superviseOne restarts reg.worker with backoff until runCtx is canceled
// or a non-restartable error is observed, in which case it is sent to
// fatal and the whole supervisor unwinds.
func (s *Supervisor) superviseOne(runCtx context.Context, reg registration, fatal chan<- error) {
	b := backoff.WithContext(s.cfg.backOff(), runCtx)

	for {
		err := s.runOnce(runCtx, reg)
		if err == nil {
			return // runCtx was canceled; clean stop
		}

		if runCtx.Err() != nil {
			return
		}

		if !restartable(err) {
			select {
			case fatal <- fmt.Errorf("%s: %w", reg.name, err):
			default:
			}
			return
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			select {
			case fatal <- fmt.Errorf("%s: restart budget exhausted: %w", reg.name, err):
			default:
			}
			return
		}

		s.log.Warn().Str("worker", reg.name).Err(err).Dur("backoff", wait).Msg("worker failed, restarting")
		s.publishRestart(reg.name, err)
		metrics.WorkerRestartsTotal.WithLabelValues(reg.name).Inc()

		timer := time.NewTimer(wait)
		select {
		case <-runCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce invokes reg.worker.Run and recovers a panic into an error so a
// single worker's bug can't crash the process outright; the panic is
// still treated as non-restartable.
func (s *Supervisor) runOnce(runCtx context.Context, reg registration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return reg.worker.Run(runCtx)
}

// restartable reports whether err belongs to a failure class expected to
// clear on retry (spec §4.7): transport or storage transients, and a
// ledger-update protocol violation (the ingestion worker resumes the
// stream from the last completed milestone). Everything else, including
// chronoerr.StorageFatal and an unclassified error, brings the process
// down.
func restartable(err error) bool {
	var transportTransient *chronoerr.TransportTransient
	var storageTransient *chronoerr.StorageTransient
	var protocolViolation *chronoerr.ProtocolViolation
	return errors.As(err, &transportTransient) ||
		errors.As(err, &storageTransient) ||
		errors.As(err, &protocolViolation)
}

func (s *Supervisor) publishRestart(name string, cause error) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{
		Type:     events.EventWorkerRestarted,
		Message:  fmt.Sprintf("restarting %s", name),
		Metadata: map[string]string{"worker": name, "reason": cause.Error()},
	})
}

func (s *Supervisor) publishShutdown() {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{Type: events.EventShutdown, Message: "supervisor shutting down"})
}
