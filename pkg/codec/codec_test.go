package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func sampleOutput() types.Output {
	return types.Output{
		Kind:   types.OutputBasic,
		Amount: [32]byte{0: 1, 31: 42},
		NativeTokens: []types.NativeToken{
			{TokenId: types.TokenId{1, 2, 3}, Amount: [32]byte{31: 7}},
		},
		UnlockConditions: []types.UnlockCondition{
			{Kind: types.UnlockAddress, Address: types.Address{Kind: types.AddressEd25519, Ed25519: [32]byte{1, 2, 3}}},
			{Kind: types.UnlockTimelock, UnixTime: 1234},
		},
		Features: []types.Feature{
			{Kind: types.FeatureTag, Tag: []byte("hello")},
		},
	}
}

func TestOutputRoundTrip(t *testing.T) {
	o := sampleOutput()
	raw := EncodeOutput(o)
	decoded, err := DecodeOutput(raw)
	require.NoError(t, err)
	require.Equal(t, o, decoded)
	require.Equal(t, raw, EncodeOutput(decoded))
}

func TestDecodeOutputUnknownKind(t *testing.T) {
	raw := []byte{0xff}
	_, err := DecodeOutput(raw)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecodeUnlockConditionUnknownKind(t *testing.T) {
	w := newWriter()
	w.byte(byte(types.OutputBasic))
	w.bytes32([32]byte{})
	w.uint32(0) // native tokens
	w.uint32(1) // one unlock condition
	w.byte(0xee)
	w.uint32(0) // features

	_, err := DecodeOutput(w.bytes())
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestBlockRoundTrip(t *testing.T) {
	b := types.Block{
		ProtocolVersion: 3,
		Parents:         []types.BlockId{{1}, {2}},
		Payload: types.Payload{
			Kind: types.PayloadTaggedData,
			TaggedData: &types.TaggedDataPayload{
				Tag:  []byte("tag"),
				Data: []byte("data"),
			},
		},
		Nonce: 9999,
	}
	raw := EncodeBlock(b)
	decoded, err := DecodeBlock(raw)
	require.NoError(t, err)
	require.Equal(t, raw, decoded.Raw)
	require.Equal(t, DeriveBlockId(raw), decoded.BlockId)
	require.Equal(t, b.Parents, decoded.Parents)
	require.Equal(t, b.Payload, decoded.Payload)
	require.Equal(t, raw, EncodeBlock(decoded))
}

func TestMilestoneRoundTrip(t *testing.T) {
	m := types.MilestonePayload{
		Index:               42,
		Timestamp:           1700000000,
		PreviousMilestoneId: types.MilestoneId{9},
		Parents:             []types.BlockId{{1}},
		InclusionMerkleRoot: [32]byte{1, 2, 3},
		AppliedMerkleRoot:   [32]byte{4, 5, 6},
		Metadata:            []byte("meta"),
		Signatures:          [][]byte{[]byte("sig1"), []byte("sig2")},
	}
	raw := newWriterFromPayload(m)
	decoded, err := DecodeMilestone(raw)
	require.NoError(t, err)
	require.Equal(t, m, decoded.Payload)
	require.Equal(t, DeriveMilestoneId(raw), decoded.MilestoneId)
	require.Equal(t, raw, EncodeMilestone(decoded))
}

func newWriterFromPayload(m types.MilestonePayload) []byte {
	w := newWriter()
	encodeMilestonePayload(w, m)
	return w.bytes()
}
