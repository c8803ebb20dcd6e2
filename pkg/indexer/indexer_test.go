package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func outputId(b byte) types.OutputId {
	var id types.OutputId
	id.TransactionId[0] = b
	return id
}

type fakeStore struct {
	storage.Store
	ids     []types.OutputId
	outputs map[types.OutputId]types.LedgerOutput
	all     []storage.AddressBalance
}

func (f *fakeStore) QueryOutputs(ctx context.Context, kind types.OutputKind, filter types.OutputsFilter) (storage.Page[types.OutputId], types.MilestoneIndex, error) {
	return storage.Page[types.OutputId]{Items: f.ids}, 10, nil
}

func (f *fakeStore) GetOutput(ctx context.Context, id types.OutputId) (*types.LedgerOutput, error) {
	lo, ok := f.outputs[id]
	if !ok {
		return nil, nil
	}
	return &lo, nil
}

func (f *fakeStore) AllBalances(ctx context.Context) ([]storage.AddressBalance, error) {
	return f.all, nil
}

func TestQueryBasicOutputsFiltersByTag(t *testing.T) {
	idA, idB := outputId(1), outputId(2)
	store := &fakeStore{
		ids: []types.OutputId{idA, idB},
		outputs: map[types.OutputId]types.LedgerOutput{
			idA: {OutputId: idA, Output: types.Output{Features: []types.Feature{{Kind: types.FeatureTag, Tag: []byte("x")}}}},
			idB: {OutputId: idB, Output: types.Output{Features: []types.Feature{{Kind: types.FeatureTag, Tag: []byte("y")}}}},
		},
	}
	tag := []byte("x")
	e := New(store)

	res, err := e.QueryBasicOutputs(context.Background(), types.BasicOutputsFilter{Tag: &tag})
	require.NoError(t, err)
	require.Equal(t, []types.OutputId{idA}, res.Items)
	require.Equal(t, types.MilestoneIndex(10), res.LedgerIndex)
}

func TestQueryAccountOutputsFiltersById(t *testing.T) {
	idA, idB := outputId(1), outputId(2)
	wantId := types.AccountId{0xaa}
	store := &fakeStore{
		ids: []types.OutputId{idA, idB},
		outputs: map[types.OutputId]types.LedgerOutput{
			idA: {OutputId: idA, Output: types.Output{AccountId: wantId}},
			idB: {OutputId: idB, Output: types.Output{AccountId: types.AccountId{0xbb}}},
		},
	}
	e := New(store)

	res, err := e.QueryAccountOutputs(context.Background(), types.AccountOutputsFilter{AccountId: &wantId})
	require.NoError(t, err)
	require.Equal(t, []types.OutputId{idA}, res.Items)
}

func TestUnlockableByHonorsExpiration(t *testing.T) {
	owner := types.Address{Kind: types.AddressEd25519, Ed25519: [32]byte{1}}
	returnee := types.Address{Kind: types.AddressEd25519, Ed25519: [32]byte{2}}
	o := types.Output{
		UnlockConditions: []types.UnlockCondition{
			{Kind: types.UnlockAddress, Address: owner},
			{Kind: types.UnlockExpiration, Address: returnee, UnixTime: 100},
		},
	}
	require.True(t, unlockableBy(o, owner, 50))
	require.False(t, unlockableBy(o, returnee, 50))
	require.True(t, unlockableBy(o, returnee, 100))
	require.False(t, unlockableBy(o, owner, 100))
}

func TestUnlockableByHonorsTimelock(t *testing.T) {
	owner := types.Address{Kind: types.AddressEd25519, Ed25519: [32]byte{1}}
	o := types.Output{
		UnlockConditions: []types.UnlockCondition{
			{Kind: types.UnlockAddress, Address: owner},
			{Kind: types.UnlockTimelock, UnixTime: 500},
		},
	}
	require.False(t, unlockableBy(o, owner, 100))
	require.True(t, unlockableBy(o, owner, 500))
}

func TestTokenDistributionBucketsByLog10(t *testing.T) {
	store := &fakeStore{
		all: []storage.AddressBalance{
			{Key: "a", Amount: amountOf(5)},
			{Key: "b", Amount: amountOf(50)},
			{Key: "c", Amount: amountOf(500)},
			{Key: "d", Amount: amountOf(999)},
		},
	}
	e := New(store)

	buckets, err := e.TokenDistribution(context.Background())
	require.NoError(t, err)

	byExp := map[int]uint64{}
	for _, b := range buckets {
		byExp[b.Exponent] = b.Count
	}
	require.Equal(t, uint64(1), byExp[0])
	require.Equal(t, uint64(1), byExp[1])
	require.Equal(t, uint64(2), byExp[2])
}

func amountOf(v uint64) [32]byte {
	var out [32]byte
	out[31] = byte(v)
	out[30] = byte(v >> 8)
	out[29] = byte(v >> 16)
	out[28] = byte(v >> 24)
	return out
}
