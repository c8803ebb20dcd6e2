package synctracker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func idx(vs ...int) []types.MilestoneIndex {
	out := make([]types.MilestoneIndex, len(vs))
	for i, v := range vs {
		out[i] = types.MilestoneIndex(v)
	}
	return out
}

func rng(a, b int) types.Range {
	return types.Range{Start: types.MilestoneIndex(a), End: types.MilestoneIndex(b)}
}

func TestComputeGapScenario(t *testing.T) {
	data, err := Compute(rng(1, 7), idx(1, 2, 4, 7), 0)
	require.NoError(t, err)
	require.Equal(t, []types.Range{rng(1, 2), rng(4, 4), rng(7, 7)}, data.Completed)
	require.Equal(t, []types.Range{rng(3, 3), rng(5, 6)}, data.Gaps)
}

func TestComputeEmptyMarkers(t *testing.T) {
	data, err := Compute(rng(1, 5), nil, 0)
	require.NoError(t, err)
	require.Empty(t, data.Completed)
	require.Equal(t, []types.Range{rng(1, 5)}, data.Gaps)
}

func TestComputeFullyCovered(t *testing.T) {
	data, err := Compute(rng(1, 3), idx(1, 2, 3), 0)
	require.NoError(t, err)
	require.Equal(t, []types.Range{rng(1, 3)}, data.Completed)
	require.Empty(t, data.Gaps)
}

func TestComputeRespectsPrunedFloor(t *testing.T) {
	data, err := Compute(rng(1, 7), idx(4, 7), 4)
	require.NoError(t, err)
	require.Equal(t, []types.Range{rng(4, 4), rng(7, 7)}, data.Completed)
	require.Equal(t, []types.Range{rng(5, 6)}, data.Gaps)
}

func TestComputeInvalidRange(t *testing.T) {
	_, err := Compute(rng(5, 1), nil, 0)
	require.Error(t, err)
}

func TestIsQueryable(t *testing.T) {
	data, err := Compute(rng(1, 7), idx(1, 2, 4, 7), 0)
	require.NoError(t, err)
	require.True(t, IsQueryable(data, 2))
	require.False(t, IsQueryable(data, 3))
	require.True(t, IsQueryable(data, 7))
}
