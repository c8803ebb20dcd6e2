package poi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func mustBlockId(t *testing.T, hex string) types.BlockId {
	t.Helper()
	id, err := types.ParseBlockId(hex)
	require.NoError(t, err)
	return id
}

func TestMerkleHashEmpty(t *testing.T) {
	root := MerkleHash(nil)
	require.Equal(t, "0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", types.BlockId(root).String())
}

func TestMerkleHashSingleLeaf(t *testing.T) {
	id := mustBlockId(t, "0x52fdfc072182654f163f5f0f9a621d729566c74d10037c4d7bbb0407d1e2c649")
	root := MerkleHash([]types.BlockId{id})
	require.Equal(t, "0x3d1399c64ff0ae6a074afa4cd2ce4eab8d5c499c1da6afdd1d84b7447cc00544", types.BlockId(root).String())
}

func TestMerkleHashSevenLeaves(t *testing.T) {
	hexes := []string{
		"0x52fdfc072182654f163f5f0f9a621d729566c74d10037c4d7bbb0407d1e2c649",
		"0x81855ad8681d0d86d1e91e00167939cb6694d2c422acd208a0072939487f6999",
		"0xeb9d18a44784045d87f3c67cf22746e995af5a25367951baa2ff6cd471c483f1",
		"0x5fb90badb37c5821b6d95526a41a9504680b4e7c8b763a1b1d49d4955c848621",
		"0x6325253fec738dd7a9e28bf921119c160f0702448615bbda08313f6a8eb668d2",
		"0x0bf5059875921e668a5bdf2c7fc4844592d2572bcd0668d2d6c52f5054e2d083",
		"0x6bf84c7174cb7476364cc3dbd968b0f7172ed85794bb358b0c3b525da1786f9f",
	}
	ids := make([]types.BlockId, len(hexes))
	for i, h := range hexes {
		ids[i] = mustBlockId(t, h)
	}
	root := MerkleHash(ids)
	require.Equal(t, "0xbf67ce7ba23e8c0951b5abaec4f5524360d2c26d971ff226d3359fa70cdb0beb", types.BlockId(root).String())
}

func sevenLeaves(t *testing.T) []types.BlockId {
	hexes := []string{
		"0x52fdfc072182654f163f5f0f9a621d729566c74d10037c4d7bbb0407d1e2c649",
		"0x81855ad8681d0d86d1e91e00167939cb6694d2c422acd208a0072939487f6999",
		"0xeb9d18a44784045d87f3c67cf22746e995af5a25367951baa2ff6cd471c483f1",
		"0x5fb90badb37c5821b6d95526a41a9504680b4e7c8b763a1b1d49d4955c848621",
		"0x6325253fec738dd7a9e28bf921119c160f0702448615bbda08313f6a8eb668d2",
		"0x0bf5059875921e668a5bdf2c7fc4844592d2572bcd0668d2d6c52f5054e2d083",
		"0x6bf84c7174cb7476364cc3dbd968b0f7172ed85794bb358b0c3b525da1786f9f",
	}
	ids := make([]types.BlockId, len(hexes))
	for i, h := range hexes {
		ids[i] = mustBlockId(t, h)
	}
	return ids
}

func TestAuditPathSoundnessAndCompleteness(t *testing.T) {
	ids := sevenLeaves(t)
	root := MerkleHash(ids)

	for i, id := range ids {
		path, err := CreateAuditPath(ids, id)
		require.NoError(t, err, "index %d", i)
		require.True(t, Validate(path, id, root), "index %d", i)
	}

	absent := mustBlockId(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	_, err := CreateAuditPath(ids, absent)
	require.ErrorIs(t, err, ErrBlockNotIncluded)
}

func TestCreateAuditPathFromIndexOutOfRange(t *testing.T) {
	ids := sevenLeaves(t)
	_, err := CreateAuditPathFromIndex(ids, len(ids))
	require.Error(t, err)
}

func TestCreateAuditPathEmptyCone(t *testing.T) {
	_, err := CreateAuditPathFromIndex(nil, 0)
	require.ErrorIs(t, err, ErrInsufficientBlockIds)
}

func TestLargestPowerOfTwoPanicsBelowTwo(t *testing.T) {
	require.Panics(t, func() { largestPowerOfTwo(0) })
	require.Panics(t, func() { largestPowerOfTwo(1) })
}

func TestLargestPowerOfTwo(t *testing.T) {
	require.Equal(t, 1, largestPowerOfTwo(2))
	require.Equal(t, 2, largestPowerOfTwo(3))
	require.Equal(t, 2, largestPowerOfTwo(4))
	require.Equal(t, 4, largestPowerOfTwo(5))
}
