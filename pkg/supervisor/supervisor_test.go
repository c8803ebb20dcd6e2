package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
)

func testConfig() Config {
	return Config{InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, MaxElapsedTime: 0}
}

func TestRunReturnsNilOnContextCancel(t *testing.T) {
	sup := New(zerolog.Nop(), nil, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	worker := WorkerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx, map[string]Worker{"w": worker}) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRunRestartsTransientFailure(t *testing.T) {
	sup := New(zerolog.Nop(), nil, testConfig())

	var attempts int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := WorkerFunc(func(ctx context.Context) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return &chronoerr.TransportTransient{Cause: errors.New("node unavailable")}
		}
		<-ctx.Done()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx, map[string]Worker{"w": worker}) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) >= 3 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRunShutsDownOnFatalFailure(t *testing.T) {
	sup := New(zerolog.Nop(), nil, testConfig())

	ctx := context.Background()
	fatalErr := &chronoerr.StorageFatal{Cause: errors.New("schema violation")}
	worker := WorkerFunc(func(ctx context.Context) error {
		return fatalErr
	})

	// A sibling worker should be canceled once the fatal worker fails.
	siblingCanceled := make(chan struct{})
	sibling := WorkerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		close(siblingCanceled)
		return nil
	})

	err := sup.Run(ctx, map[string]Worker{"fatal": worker, "sibling": sibling})
	require.Error(t, err)
	require.ErrorIs(t, err, fatalErr)

	select {
	case <-siblingCanceled:
	case <-time.After(time.Second):
		t.Fatal("sibling worker was not canceled after fatal failure")
	}
}

func TestRestartableClassifiesErrors(t *testing.T) {
	require.True(t, restartable(&chronoerr.TransportTransient{Cause: errors.New("x")}))
	require.True(t, restartable(&chronoerr.StorageTransient{Cause: errors.New("x")}))
	require.True(t, restartable(&chronoerr.ProtocolViolation{Reason: "count mismatch"}))
	require.False(t, restartable(&chronoerr.StorageFatal{Cause: errors.New("x")}))
	require.False(t, restartable(errors.New("unclassified")))
}
