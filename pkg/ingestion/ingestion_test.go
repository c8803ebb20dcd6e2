package ingestion

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type fakeMilestoneStream struct {
	items []source.MilestoneAndParams
	pos   int
}

func (s *fakeMilestoneStream) Recv() (source.MilestoneAndParams, error) {
	if s.pos >= len(s.items) {
		return source.MilestoneAndParams{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}
func (s *fakeMilestoneStream) Close() error { return nil }

type fakeLedgerStream struct {
	items []source.LedgerUpdateEvent
	pos   int
}

func (s *fakeLedgerStream) Recv() (source.LedgerUpdateEvent, error) {
	if s.pos >= len(s.items) {
		return source.LedgerUpdateEvent{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}
func (s *fakeLedgerStream) Close() error { return nil }

type fakeConeStream struct {
	items []types.BlockWithMetadata
	pos   int
}

func (s *fakeConeStream) Recv() (types.BlockWithMetadata, error) {
	if s.pos >= len(s.items) {
		return types.BlockWithMetadata{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}
func (s *fakeConeStream) Close() error { return nil }

type fakeSource struct {
	milestones *fakeMilestoneStream
	updates    *fakeLedgerStream
	cones      map[types.MilestoneIndex]*fakeConeStream
}

func (f *fakeSource) NodeStatus(ctx context.Context) (source.NodeStatus, error) { return source.NodeStatus{}, nil }
func (f *fakeSource) ProtocolParameters(ctx context.Context, version uint8) (types.ProtocolParameters, error) {
	return types.ProtocolParameters{}, nil
}
func (f *fakeSource) ListenToConfirmedMilestones(ctx context.Context, r types.Range) (source.MilestoneStream, error) {
	return f.milestones, nil
}
func (f *fakeSource) ListenToLedgerUpdates(ctx context.Context, r types.Range) (source.LedgerUpdateStream, error) {
	return f.updates, nil
}
func (f *fakeSource) MilestoneCone(ctx context.Context, index types.MilestoneIndex) (source.ConeStream, error) {
	return f.cones[index], nil
}
func (f *fakeSource) Block(ctx context.Context, id types.BlockId) (types.Block, error) { return types.Block{}, nil }
func (f *fakeSource) BlockMetadata(ctx context.Context, id types.BlockId) (types.BlockMetadata, error) {
	return types.BlockMetadata{}, nil
}
func (f *fakeSource) Milestone(ctx context.Context, index types.MilestoneIndex) (types.Milestone, error) {
	return types.Milestone{}, nil
}

var _ source.Source = (*fakeSource)(nil)

// fakeStore records commits without touching MongoDB.
type fakeStore struct {
	storage.Store
	commits []types.Milestone
}

func (f *fakeStore) CommitMilestone(ctx context.Context, milestone types.Milestone, blocks storage.BlockBatch, outputs storage.OutputsBatch, params *types.ProtocolParameters) error {
	f.commits = append(f.commits, milestone)
	return nil
}

func blockId(b byte) types.BlockId {
	var id types.BlockId
	id[0] = b
	return id
}

func TestRunCommitsOneMilestone(t *testing.T) {
	idx := types.MilestoneIndex(5)
	block := types.Block{BlockId: blockId(1)}
	src := &fakeSource{
		milestones: &fakeMilestoneStream{items: []source.MilestoneAndParams{{Milestone: types.Milestone{Index: idx}}}},
		updates: &fakeLedgerStream{items: []source.LedgerUpdateEvent{
			{Kind: source.LedgerUpdateBeginEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx, CreatedCount: 1}},
			{Kind: source.LedgerUpdateCreatedEvent, Created: types.LedgerOutput{}},
			{Kind: source.LedgerUpdateEndEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx, CreatedCount: 1}},
		}},
		cones: map[types.MilestoneIndex]*fakeConeStream{
			idx: {items: []types.BlockWithMetadata{{Block: block}}},
		},
	}
	store := &fakeStore{}
	w := New(src, store, zerolog.Nop())

	err := w.Run(context.Background(), types.Range{Start: idx, End: idx})
	require.NoError(t, err)
	require.Len(t, store.commits, 1)
	require.Equal(t, idx, store.commits[0].Index)
}

func TestRunRejectsConsumedWithoutBegin(t *testing.T) {
	idx := types.MilestoneIndex(5)
	src := &fakeSource{
		milestones: &fakeMilestoneStream{},
		updates: &fakeLedgerStream{items: []source.LedgerUpdateEvent{
			{Kind: source.LedgerUpdateConsumedEvent},
		}},
		cones: map[types.MilestoneIndex]*fakeConeStream{},
	}
	store := &fakeStore{}
	w := New(src, store, zerolog.Nop())

	err := w.Run(context.Background(), types.Range{Start: idx, End: idx})
	require.Error(t, err)
	var pv *chronoerr.ProtocolViolation
	require.ErrorAs(t, err, &pv)
}

func TestRunRejectsCountMismatch(t *testing.T) {
	idx := types.MilestoneIndex(5)
	src := &fakeSource{
		milestones: &fakeMilestoneStream{},
		updates: &fakeLedgerStream{items: []source.LedgerUpdateEvent{
			{Kind: source.LedgerUpdateBeginEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx, CreatedCount: 2}},
			{Kind: source.LedgerUpdateCreatedEvent},
			{Kind: source.LedgerUpdateEndEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx, CreatedCount: 2}},
		}},
		cones: map[types.MilestoneIndex]*fakeConeStream{},
	}
	store := &fakeStore{}
	w := New(src, store, zerolog.Nop())

	err := w.Run(context.Background(), types.Range{Start: idx, End: idx})
	require.Error(t, err)
	var pv *chronoerr.ProtocolViolation
	require.ErrorAs(t, err, &pv)
}

func TestRunRejectsDoubleBegin(t *testing.T) {
	idx := types.MilestoneIndex(5)
	src := &fakeSource{
		milestones: &fakeMilestoneStream{},
		updates: &fakeLedgerStream{items: []source.LedgerUpdateEvent{
			{Kind: source.LedgerUpdateBeginEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx}},
			{Kind: source.LedgerUpdateBeginEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: idx + 1}},
		}},
		cones: map[types.MilestoneIndex]*fakeConeStream{},
	}
	store := &fakeStore{}
	w := New(src, store, zerolog.Nop())

	err := w.Run(context.Background(), types.Range{Start: idx, End: idx + 1})
	require.Error(t, err)
	var pv *chronoerr.ProtocolViolation
	require.ErrorAs(t, err, &pv)
}
