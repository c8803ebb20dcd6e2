// Package replay implements source.Source over the store itself: it
// serves already-committed milestones, cones, blocks and protocol
// parameters back out in the same framing a live node would use. Its
// ledger-update stream ends at once, so an ingestion worker run over it
// commits nothing. It is a finite source — streams end in io.EOF once the requested range is exhausted —
// unlike pkg/source/inx, whose confirmed-milestone stream runs forever.
package replay

import (
	"context"
	"io"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// Store is the subset of storage.Store replay needs to read back.
type Store interface {
	GetLatestCommittedSlot(ctx context.Context) (*storage.SlotDoc, error)
	GetMilestone(ctx context.Context, index types.MilestoneIndex) (*types.Milestone, error)
	ProtocolParamsFor(ctx context.Context, index types.MilestoneIndex) (*types.ProtocolParameters, error)
	GetBlock(ctx context.Context, id types.BlockId) (*types.Block, error)
	GetBlockMetadata(ctx context.Context, id types.BlockId) (*types.BlockMetadata, error)
}

// Source replays committed milestones from a store.
type Source struct {
	store Store
}

func New(store Store) *Source { return &Source{store: store} }

func (s *Source) NodeStatus(ctx context.Context) (source.NodeStatus, error) {
	latest, err := s.store.GetLatestCommittedSlot(ctx)
	if err != nil {
		return source.NodeStatus{}, err
	}
	if latest == nil {
		return source.NodeStatus{IsHealthy: true}, nil
	}
	index := types.MilestoneIndex(latest.Index)
	return source.NodeStatus{
		IsHealthy:            true,
		LedgerIndex:          index,
		LatestMilestoneIndex: index,
		PruningIndex:         0,
	}, nil
}

func (s *Source) ProtocolParameters(ctx context.Context, version uint8) (types.ProtocolParameters, error) {
	latest, err := s.store.GetLatestCommittedSlot(ctx)
	if err != nil {
		return types.ProtocolParameters{}, err
	}
	index := types.MilestoneIndex(0)
	if latest != nil {
		index = types.MilestoneIndex(latest.Index)
	}
	params, err := s.store.ProtocolParamsFor(ctx, index)
	if err != nil {
		return types.ProtocolParameters{}, err
	}
	if params == nil {
		return types.ProtocolParameters{}, &chronoerr.MissingError{Subject: "protocol_parameters"}
	}
	return *params, nil
}

func (s *Source) Block(ctx context.Context, id types.BlockId) (types.Block, error) {
	b, err := s.store.GetBlock(ctx, id)
	if err != nil {
		return types.Block{}, err
	}
	if b == nil {
		return types.Block{}, &chronoerr.MissingError{Subject: "block"}
	}
	return *b, nil
}

func (s *Source) BlockMetadata(ctx context.Context, id types.BlockId) (types.BlockMetadata, error) {
	m, err := s.store.GetBlockMetadata(ctx, id)
	if err != nil {
		return types.BlockMetadata{}, err
	}
	if m == nil {
		return types.BlockMetadata{}, &chronoerr.MissingError{Subject: "block_metadata"}
	}
	return *m, nil
}

func (s *Source) Milestone(ctx context.Context, index types.MilestoneIndex) (types.Milestone, error) {
	m, err := s.store.GetMilestone(ctx, index)
	if err != nil {
		return types.Milestone{}, err
	}
	if m == nil {
		return types.Milestone{}, &chronoerr.MissingError{Subject: "milestone"}
	}
	return *m, nil
}

// milestoneStream walks [start, end] eagerly fetching each milestone as
// the worker calls Recv; replay has no push side to buffer.
type milestoneStream struct {
	ctx     context.Context
	store   Store
	next    types.MilestoneIndex
	end     types.MilestoneIndex
}

func (ms *milestoneStream) Recv() (source.MilestoneAndParams, error) {
	if ms.next > ms.end {
		return source.MilestoneAndParams{}, io.EOF
	}
	index := ms.next
	ms.next++
	m, err := ms.store.GetMilestone(ms.ctx, index)
	if err != nil {
		return source.MilestoneAndParams{}, err
	}
	if m == nil {
		return source.MilestoneAndParams{}, &chronoerr.MissingError{Subject: "milestone"}
	}
	params, err := ms.store.ProtocolParamsFor(ms.ctx, index)
	if err != nil {
		return source.MilestoneAndParams{}, err
	}
	return source.MilestoneAndParams{Milestone: *m, Params: params}, nil
}

func (ms *milestoneStream) Close() error { return nil }

func (s *Source) ListenToConfirmedMilestones(ctx context.Context, r types.Range) (source.MilestoneStream, error) {
	return &milestoneStream{ctx: ctx, store: s.store, next: r.Start, end: r.End}, nil
}

// coneStream re-derives a milestone's white-flag order from its stored
// Cone and re-fetches each block with metadata.
type coneStream struct {
	ctx   context.Context
	store Store
	ids   []types.BlockId
	pos   int
}

func (cs *coneStream) Recv() (types.BlockWithMetadata, error) {
	if cs.pos >= len(cs.ids) {
		return types.BlockWithMetadata{}, io.EOF
	}
	id := cs.ids[cs.pos]
	cs.pos++
	b, err := cs.store.GetBlock(cs.ctx, id)
	if err != nil {
		return types.BlockWithMetadata{}, err
	}
	if b == nil {
		return types.BlockWithMetadata{}, &chronoerr.MissingError{Subject: "block"}
	}
	return types.BlockWithMetadata{Block: *b, Metadata: b.Metadata}, nil
}

func (cs *coneStream) Close() error { return nil }

func (s *Source) MilestoneCone(ctx context.Context, index types.MilestoneIndex) (source.ConeStream, error) {
	m, err := s.store.GetMilestone(ctx, index)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &chronoerr.MissingError{Subject: "milestone"}
	}
	return &coneStream{ctx: ctx, store: s.store, ids: m.BlockIds()}, nil
}

// ledgerUpdateStream is unsupported in replay: the store's committed
// ledger already reflects the effect of consuming these updates, so
// re-deriving the original Begin/Consumed/Created framing from it would
// require reconstructing data the store never keeps (which output spent
// which, in the original arrival order). Replay serves milestones and
// cones only; this stream returns io.EOF on the first Recv.
type ledgerUpdateStream struct{}

func (ledgerUpdateStream) Recv() (source.LedgerUpdateEvent, error) {
	return source.LedgerUpdateEvent{}, io.EOF
}
func (ledgerUpdateStream) Close() error { return nil }

func (s *Source) ListenToLedgerUpdates(ctx context.Context, r types.Range) (source.LedgerUpdateStream, error) {
	return ledgerUpdateStream{}, nil
}

var _ source.Source = (*Source)(nil)
