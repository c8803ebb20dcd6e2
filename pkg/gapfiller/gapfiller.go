// Package gapfiller implements the gap-filler policy (spec §4.3): it
// discovers which milestone indices the store is missing inside its
// effective range and requests them from the node with bounded
// concurrency, independently of and concurrently with live ingestion.
package gapfiller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/ingestion"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// ModeKind selects how the gap filler's start index is derived.
type ModeKind uint8

const (
	// ModeMaxBehind clamps the start index to latest-N; earlier history
	// is never filled.
	ModeMaxBehind ModeKind = iota
	// ModeFromIndex fills starting at a fixed configured index.
	ModeFromIndex
)

// Config is the gap filler's policy (spec §4.3).
type Config struct {
	Mode                ModeKind
	MaxBehind           types.MilestoneIndex
	FromIndex           types.MilestoneIndex
	MaxParallelRequests int
	RetryDelay          time.Duration
}

// Filler repeatedly computes the store's sync gaps within its effective
// range and fills them from the node, sleeping between passes once the
// gap iterator is exhausted (spec §4.3, liveness property P8).
type Filler struct {
	cfg    Config
	source source.Source
	store  storage.Store
	log    zerolog.Logger

	// onMilestoneFilled, when set, is invoked after each milestone is
	// successfully committed; tests use it to observe SyncNext ticks
	// without a real node or store.
	onMilestoneFilled func(types.MilestoneIndex)
}

func New(cfg Config, src source.Source, store storage.Store, log zerolog.Logger) *Filler {
	if cfg.MaxParallelRequests <= 0 {
		cfg.MaxParallelRequests = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Second
	}
	return &Filler{cfg: cfg, source: src, store: store, log: log}
}

// effectiveRange derives [max(pruning, configured_start), latest] from the
// node's current status (spec §4.3).
func (f *Filler) effectiveRange(ctx context.Context) (types.Range, error) {
	status, err := f.source.NodeStatus(ctx)
	if err != nil {
		return types.Range{}, err
	}
	start := status.PruningIndex
	switch f.cfg.Mode {
	case ModeMaxBehind:
		if status.LatestMilestoneIndex > f.cfg.MaxBehind {
			clamped := status.LatestMilestoneIndex - f.cfg.MaxBehind
			if clamped > start {
				start = clamped
			}
		}
	case ModeFromIndex:
		if f.cfg.FromIndex > start {
			start = f.cfg.FromIndex
		}
	}
	if start > status.LatestMilestoneIndex {
		start = status.LatestMilestoneIndex
	}
	return types.Range{Start: start, End: status.LatestMilestoneIndex}, nil
}

// Run loops forever (until ctx is cancelled): compute gaps, fill them
// with bounded concurrency, and sleep RetryDelay once none remain.
func (f *Filler) Run(ctx context.Context) error {
	for {
		if err := f.fillOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.cfg.RetryDelay):
		}
	}
}

func (f *Filler) fillOnce(ctx context.Context) error {
	r, err := f.effectiveRange(ctx)
	if err != nil {
		return err
	}
	if r.Len() <= 0 {
		return nil
	}
	_, gaps, err := f.store.GetSyncData(ctx, r)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(f.cfg.MaxParallelRequests)

	for _, gap := range gaps {
		for index := gap.Start; index <= gap.End; index++ {
			index := index
			group.Go(func() error {
				return f.fillMilestone(gctx, index)
			})
		}
	}
	return group.Wait()
}

// fillMilestone ingests a single historical milestone through the same
// FSM live ingestion uses, scoped to a one-milestone range.
func (f *Filler) fillMilestone(ctx context.Context, index types.MilestoneIndex) error {
	worker := ingestion.New(f.source, f.store, f.log)
	if err := worker.Run(ctx, types.Range{Start: index, End: index}); err != nil {
		return err
	}
	if f.onMilestoneFilled != nil {
		f.onMilestoneFilled(index)
	}
	return nil
}
