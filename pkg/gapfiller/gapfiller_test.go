package gapfiller

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type fixedMilestoneStream struct {
	item source.MilestoneAndParams
	sent bool
}

func (s *fixedMilestoneStream) Recv() (source.MilestoneAndParams, error) {
	if s.sent {
		return source.MilestoneAndParams{}, io.EOF
	}
	s.sent = true
	return s.item, nil
}
func (s *fixedMilestoneStream) Close() error { return nil }

type emptyConeStream struct{}

func (emptyConeStream) Recv() (types.BlockWithMetadata, error) { return types.BlockWithMetadata{}, io.EOF }
func (emptyConeStream) Close() error                           { return nil }

type fakeSource struct {
	status types.MilestoneIndex
	pruning types.MilestoneIndex
}

func (f *fakeSource) NodeStatus(ctx context.Context) (source.NodeStatus, error) {
	return source.NodeStatus{LatestMilestoneIndex: f.status, PruningIndex: f.pruning}, nil
}
func (f *fakeSource) ProtocolParameters(ctx context.Context, version uint8) (types.ProtocolParameters, error) {
	return types.ProtocolParameters{}, nil
}
func (f *fakeSource) ListenToConfirmedMilestones(ctx context.Context, r types.Range) (source.MilestoneStream, error) {
	return &fixedMilestoneStream{item: source.MilestoneAndParams{Milestone: types.Milestone{Index: r.Start}}}, nil
}
func (f *fakeSource) ListenToLedgerUpdates(ctx context.Context, r types.Range) (source.LedgerUpdateStream, error) {
	return &fixedLedgerStream{index: r.Start}, nil
}
func (f *fakeSource) MilestoneCone(ctx context.Context, index types.MilestoneIndex) (source.ConeStream, error) {
	return emptyConeStream{}, nil
}
func (f *fakeSource) Block(ctx context.Context, id types.BlockId) (types.Block, error) { return types.Block{}, nil }
func (f *fakeSource) BlockMetadata(ctx context.Context, id types.BlockId) (types.BlockMetadata, error) {
	return types.BlockMetadata{}, nil
}
func (f *fakeSource) Milestone(ctx context.Context, index types.MilestoneIndex) (types.Milestone, error) {
	return types.Milestone{}, nil
}

var _ source.Source = (*fakeSource)(nil)

type fixedLedgerStream struct {
	index types.MilestoneIndex
	pos   int
}

func (s *fixedLedgerStream) Recv() (source.LedgerUpdateEvent, error) {
	frames := []source.LedgerUpdateEvent{
		{Kind: source.LedgerUpdateBeginEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: s.index}},
		{Kind: source.LedgerUpdateEndEvent, Marker: source.LedgerUpdateMarker{MilestoneIndex: s.index}},
	}
	if s.pos >= len(frames) {
		return source.LedgerUpdateEvent{}, io.EOF
	}
	frame := frames[s.pos]
	s.pos++
	return frame, nil
}
func (s *fixedLedgerStream) Close() error { return nil }

type fakeStore struct {
	storage.Store
	gaps    []types.Range
	commits []types.MilestoneIndex
	mu      chan struct{}
}

func newFakeStore(gaps []types.Range) *fakeStore {
	return &fakeStore{gaps: gaps, mu: make(chan struct{}, 1)}
}

func (f *fakeStore) GetSyncData(ctx context.Context, r types.Range) ([]types.Range, []types.Range, error) {
	return nil, f.gaps, nil
}

func (f *fakeStore) CommitMilestone(ctx context.Context, milestone types.Milestone, blocks storage.BlockBatch, outputs storage.OutputsBatch, params *types.ProtocolParameters) error {
	f.mu <- struct{}{}
	f.commits = append(f.commits, milestone.Index)
	<-f.mu
	return nil
}

func TestFillOnceFillsEachGapIndex(t *testing.T) {
	store := newFakeStore([]types.Range{{Start: 3, End: 4}})
	src := &fakeSource{status: 10}
	filler := New(Config{MaxParallelRequests: 2}, src, store, zerolog.Nop())

	err := filler.fillOnce(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []types.MilestoneIndex{3, 4}, store.commits)
}

func TestEffectiveRangeMaxBehindClamps(t *testing.T) {
	src := &fakeSource{status: 100, pruning: 10}
	filler := New(Config{Mode: ModeMaxBehind, MaxBehind: 20}, src, nil, zerolog.Nop())

	r, err := filler.effectiveRange(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.MilestoneIndex(80), r.Start)
	require.Equal(t, types.MilestoneIndex(100), r.End)
}

func TestEffectiveRangeFromIndex(t *testing.T) {
	src := &fakeSource{status: 100, pruning: 10}
	filler := New(Config{Mode: ModeFromIndex, FromIndex: 50}, src, nil, zerolog.Nop())

	r, err := filler.effectiveRange(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.MilestoneIndex(50), r.Start)
}

func TestFillOnceNoGapsIsNoop(t *testing.T) {
	store := newFakeStore(nil)
	src := &fakeSource{status: 10}
	filler := New(Config{}, src, store, zerolog.Nop())

	err := filler.fillOnce(context.Background())
	require.NoError(t, err)
	require.Empty(t, store.commits)
}
