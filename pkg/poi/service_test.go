package poi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type fakeStore struct {
	storage.Store
	blocks     map[types.BlockId]types.Block
	metadata   map[types.BlockId]types.BlockMetadata
	milestones map[types.MilestoneIndex]types.Milestone
}

func (f fakeStore) GetBlock(ctx context.Context, id types.BlockId) (*types.Block, error) {
	if b, ok := f.blocks[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (f fakeStore) GetBlockMetadata(ctx context.Context, id types.BlockId) (*types.BlockMetadata, error) {
	if m, ok := f.metadata[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f fakeStore) GetMilestone(ctx context.Context, index types.MilestoneIndex) (*types.Milestone, error) {
	if m, ok := f.milestones[index]; ok {
		return &m, nil
	}
	return nil, nil
}

func blockId(b byte) types.BlockId {
	var id types.BlockId
	id[0] = b
	return id
}

func TestServiceCreateAndValidateRoundTrip(t *testing.T) {
	ids := []types.BlockId{blockId(1), blockId(2), blockId(3)}
	root := MerkleHash(ids)

	cone := make([]types.ReferencedBlock, len(ids))
	for i, id := range ids {
		cone[i] = types.ReferencedBlock{BlockId: id, WhiteFlagIndex: uint32(i)}
	}
	milestone := types.Milestone{Index: 7, InclusionMerkleRoot: root, Cone: cone}

	store := fakeStore{
		blocks:     map[types.BlockId]types.Block{ids[1]: {BlockId: ids[1]}},
		metadata:   map[types.BlockId]types.BlockMetadata{ids[1]: {BlockId: ids[1], ReferencedByMilestone: 7}},
		milestones: map[types.MilestoneIndex]types.Milestone{7: milestone},
	}

	svc := NewService(store)
	proof, err := svc.Create(context.Background(), ids[1])
	require.NoError(t, err)
	require.True(t, ValidateProof(proof, ids[1]))
	require.False(t, ValidateProof(proof, ids[0]))
}

func TestServiceCreateMissingBlock(t *testing.T) {
	svc := NewService(fakeStore{})
	_, err := svc.Create(context.Background(), blockId(9))
	require.Error(t, err)
}

func TestServiceCreateUnreferencedBlock(t *testing.T) {
	id := blockId(1)
	store := fakeStore{
		blocks:   map[types.BlockId]types.Block{id: {BlockId: id}},
		metadata: map[types.BlockId]types.BlockMetadata{id: {BlockId: id}}, // ReferencedByMilestone == 0
	}
	svc := NewService(store)
	_, err := svc.Create(context.Background(), id)
	require.Error(t, err)
}
