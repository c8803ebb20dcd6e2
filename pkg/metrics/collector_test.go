package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/synctracker"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type fakeSource struct {
	source.Source
	status source.NodeStatus
}

func (f fakeSource) NodeStatus(ctx context.Context) (source.NodeStatus, error) {
	return f.status, nil
}

type fakeStore struct {
	storage.Store
	slot       *storage.SlotDoc
	milestones map[types.MilestoneIndex]*types.Milestone
	markers    []types.MilestoneIndex
}

func (f fakeStore) GetLatestCommittedSlot(ctx context.Context) (*storage.SlotDoc, error) {
	return f.slot, nil
}

func (f fakeStore) GetMilestone(ctx context.Context, index types.MilestoneIndex) (*types.Milestone, error) {
	return f.milestones[index], nil
}

func (f fakeStore) GetSyncData(ctx context.Context, r types.Range) (completed, gaps []types.Range, err error) {
	data, err := synctracker.Compute(r, f.markers, 0)
	if err != nil {
		return nil, nil, err
	}
	return data.Completed, data.Gaps, nil
}

func TestCollectIngestionLagSetsGauge(t *testing.T) {
	committedAt := time.Now().Add(-90 * time.Second)
	store := fakeStore{
		slot: &storage.SlotDoc{Index: 10},
		milestones: map[types.MilestoneIndex]*types.Milestone{
			10: {Index: 10, Timestamp: types.UnixTimestamp(committedAt.Unix())},
		},
	}
	c := NewCollector(store, fakeSource{})
	c.collectIngestionLag(context.Background())

	require.InDelta(t, 90, testutil.ToFloat64(IngestionLagSeconds), 5)
}

func TestCollectGapCountSumsGapLengths(t *testing.T) {
	store := fakeStore{markers: []types.MilestoneIndex{1, 2, 5}}
	src := fakeSource{status: source.NodeStatus{PruningIndex: 1, LatestMilestoneIndex: 5}}
	c := NewCollector(store, src)
	c.collectGapCount(context.Background())

	require.Equal(t, float64(2), testutil.ToFloat64(GapCount)) // missing 3,4
}
