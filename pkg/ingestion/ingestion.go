// Package ingestion implements the per-milestone ingestion worker (spec
// §4.4): it drives a small state machine over the node's ledger-update
// stream, assembles a milestone's cone in white-flag order, and commits
// the whole thing to the store in a single transaction.
package ingestion

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// state is the per-milestone ledger-update FSM (spec §4.4).
type state uint8

const (
	stateIdle state = iota
	stateCollecting
)

// Worker ingests confirmed milestones in index order, turning each one
// into a single atomic store commit.
type Worker struct {
	source source.Source
	store  storage.Store
	log    zerolog.Logger
}

func New(src source.Source, store storage.Store, log zerolog.Logger) *Worker {
	return &Worker{source: src, store: store, log: log}
}

// collector tracks the in-flight milestone while the FSM is in
// stateCollecting.
type collector struct {
	index    types.MilestoneIndex
	expected uint32
	created  []types.LedgerOutput
	spent    []types.LedgerSpent
}

// Run drives the ingestion FSM over the ledger-update stream for r,
// pairing each completed milestone with its decoded payload (read off the
// confirmed-milestones stream) and cone (read_milestone_cone), then
// committing it. It returns when the ledger-update stream ends (io.EOF,
// surfaced as nil) or on the first unrecoverable error; the caller
// (pkg/supervisor) classifies the error and decides whether to restart.
func (w *Worker) Run(ctx context.Context, r types.Range) error {
	milestones, err := w.source.ListenToConfirmedMilestones(ctx, r)
	if err != nil {
		return err
	}
	defer milestones.Close()

	updates, err := w.source.ListenToLedgerUpdates(ctx, r)
	if err != nil {
		return err
	}
	defer updates.Close()

	st := stateIdle
	var cur collector

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, err := updates.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch event.Kind {
		case source.LedgerUpdateBeginEvent:
			if st != stateIdle {
				return &chronoerr.ProtocolViolation{Reason: "Begin received while a milestone was already being collected"}
			}
			cur = collector{
				index:    event.Marker.MilestoneIndex,
				expected: event.Marker.ConsumedCount + event.Marker.CreatedCount,
			}
			st = stateCollecting

		case source.LedgerUpdateConsumedEvent:
			if st != stateCollecting {
				return &chronoerr.ProtocolViolation{Reason: "Consumed received without an active Begin"}
			}
			cur.spent = append(cur.spent, event.Consumed)

		case source.LedgerUpdateCreatedEvent:
			if st != stateCollecting {
				return &chronoerr.ProtocolViolation{Reason: "Created received without an active Begin"}
			}
			cur.created = append(cur.created, event.Created)

		case source.LedgerUpdateEndEvent:
			if st != stateCollecting {
				return &chronoerr.ProtocolViolation{Reason: "End received without an active Begin"}
			}
			if event.Marker.MilestoneIndex != cur.index {
				return &chronoerr.ProtocolViolation{Reason: fmt.Sprintf("End index %d does not match Begin index %d", event.Marker.MilestoneIndex, cur.index)}
			}
			got := uint32(len(cur.created) + len(cur.spent))
			if got != cur.expected {
				return &chronoerr.ProtocolViolation{Reason: fmt.Sprintf("milestone %d: expected %d ledger updates, received %d", cur.index, cur.expected, got)}
			}

			mp, err := milestones.Recv()
			if err != nil {
				return err
			}
			if mp.Milestone.Index != cur.index {
				return &chronoerr.ProtocolViolation{Reason: fmt.Sprintf("confirmed-milestone stream out of sync: got index %d, expected %d", mp.Milestone.Index, cur.index)}
			}

			blocks, err := w.collectCone(ctx, cur.index)
			if err != nil {
				return err
			}

			if err := w.store.CommitMilestone(ctx, mp.Milestone, blocks, storage.OutputsBatch{Created: cur.created, Spent: cur.spent}, mp.Params); err != nil {
				return err
			}
			w.log.Info().Uint32("milestone", uint32(cur.index)).Int("blocks", len(blocks.Blocks)).Msg("committed milestone")

			st = stateIdle
			cur = collector{}

		default:
			return &chronoerr.ProtocolViolation{Reason: fmt.Sprintf("unknown ledger update event kind %d", event.Kind)}
		}
	}
}

// collectCone reads a milestone's cone in the order the node emits it,
// assigning the white-flag index each block is enumerated at (spec §4.4)
// and deriving the parent edges its blocks introduce.
func (w *Worker) collectCone(ctx context.Context, index types.MilestoneIndex) (storage.BlockBatch, error) {
	cone, err := w.source.MilestoneCone(ctx, index)
	if err != nil {
		return storage.BlockBatch{}, err
	}
	defer cone.Close()

	var batch storage.BlockBatch
	var whiteFlagIndex uint32
	for {
		bwm, err := cone.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return storage.BlockBatch{}, err
		}
		block := bwm.Block
		block.Metadata = bwm.Metadata
		block.Metadata.ReferencedByMilestone = index
		block.Metadata.WhiteFlagIndex = whiteFlagIndex
		whiteFlagIndex++

		batch.Blocks = append(batch.Blocks, block)
		for _, parent := range block.Parents {
			batch.ParentEdges = append(batch.ParentEdges, storage.ParentEdge{Parent: parent, Child: block.BlockId})
		}
	}
	return batch, nil
}
