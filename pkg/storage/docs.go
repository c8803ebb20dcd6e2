package storage

import (
	"encoding/hex"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/codec"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// Collection names. Kept together so an operator grepping the database
// for "what does Chronicle create" finds them in one place.
const (
	collBlocks      = "blocks"
	collParentEdges = "parent_edges"
	collUnspent     = "unspent_outputs"
	collSpent       = "spent_outputs"
	collMilestones  = "milestones"
	collSync        = "sync"
	collProtocol    = "protocol_updates"
	collBalances    = "balances"
)

// amountToDecimal128 converts a big-endian 32-byte amount into the
// driver's Decimal128, the high-precision decimal type MongoDB uses in
// place of a native u256 (spec §9, "signed vs unsigned amounts").
func amountToDecimal128(amount [32]byte) primitive.Decimal128 {
	hexStr := hex.EncodeToString(amount[:])
	d, err := primitive.ParseDecimal128(hexToDecimalString(hexStr))
	if err != nil {
		// A 32-byte buffer always parses; this only trips on a
		// programming error in hexToDecimalString.
		panic("storage: invalid amount encoding: " + err.Error())
	}
	return d
}

// hexToDecimalString converts a big-endian hex buffer into its base-10
// string form, since Decimal128 takes decimal literals, not hex.
func hexToDecimalString(hexStr string) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		panic("storage: invalid amount hex: " + err.Error())
	}
	// Big-endian bytes -> base 10 via repeated divmod by 10, done in
	// base-256 "digits".
	digits := append([]byte(nil), raw...)
	var out []byte
	allZero := func(b []byte) bool {
		for _, v := range b {
			if v != 0 {
				return false
			}
		}
		return true
	}
	for !allZero(digits) {
		var rem uint16
		for i := range digits {
			cur := uint16(digits[i]) + rem*256
			digits[i] = byte(cur / 10)
			rem = cur % 10
		}
		out = append(out, byte('0')+byte(rem))
	}
	if len(out) == 0 {
		return "0"
	}
	// out was accumulated least-significant digit first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

type blockDoc struct {
	Id              string `bson:"_id"`
	ProtocolVersion uint8  `bson:"protocol_version"`
	Raw             []byte `bson:"raw"`
	Parents         []string `bson:"parents"`
	Solid                 bool   `bson:"solid"`
	ReferencedByMilestone uint32 `bson:"referenced_by_milestone"`
	InclusionState        uint8  `bson:"inclusion_state"`
	ConflictReason         uint8  `bson:"conflict_reason"`
	WhiteFlagIndex         uint32 `bson:"white_flag_index"`
}

func toBlockDoc(b types.Block) (blockDoc, error) {
	parents := make([]string, len(b.Parents))
	for i, p := range b.Parents {
		parents[i] = p.String()
	}
	return blockDoc{
		Id:                    b.BlockId.String(),
		ProtocolVersion:       b.ProtocolVersion,
		Raw:                   b.Raw,
		Parents:               parents,
		Solid:                 b.Metadata.Solid,
		ReferencedByMilestone: uint32(b.Metadata.ReferencedByMilestone),
		InclusionState:        uint8(b.Metadata.InclusionState),
		ConflictReason:        uint8(b.Metadata.ConflictReason),
		WhiteFlagIndex:        b.Metadata.WhiteFlagIndex,
	}, nil
}

func fromBlockDoc(d blockDoc) (types.Block, error) {
	block, err := codec.DecodeBlock(d.Raw)
	if err != nil {
		return types.Block{}, err
	}
	block.Metadata.Solid = d.Solid
	block.Metadata.ReferencedByMilestone = types.MilestoneIndex(d.ReferencedByMilestone)
	block.Metadata.InclusionState = types.InclusionState(d.InclusionState)
	block.Metadata.ConflictReason = types.ConflictReason(d.ConflictReason)
	block.Metadata.WhiteFlagIndex = d.WhiteFlagIndex
	return block, nil
}

type parentEdgeDoc struct {
	Parent string `bson:"parent_id"`
	Child  string `bson:"child_id"`
}

type ledgerOutputDoc struct {
	OutputId     string              `bson:"_id"`
	BlockId      string              `bson:"block_id"`
	Booked       uint32              `bson:"booked"`
	CommitmentId string              `bson:"commitment_id"`
	RawOutput    []byte              `bson:"raw_output"`
	RentBytes    uint64              `bson:"rent_bytes"`
	Kind         uint8               `bson:"kind"`
	IndexedId    string              `bson:"indexed_id,omitempty"`
	Address      string              `bson:"address,omitempty"`
	Amount       primitive.Decimal128 `bson:"amount"`
	CreatedAt    uint32              `bson:"created_at"`
}

func toLedgerOutputDoc(lo types.LedgerOutput) ledgerOutputDoc {
	doc := ledgerOutputDoc{
		OutputId:     lo.OutputId.String(),
		BlockId:      lo.BlockId.String(),
		Booked:       uint32(lo.Booked),
		CommitmentId: lo.CommitmentId.String(),
		RawOutput:    lo.RawOutput,
		RentBytes:    lo.RentBytes,
		Kind:         uint8(lo.Output.Kind),
		Amount:       amountToDecimal128(lo.Output.Amount),
	}
	if id, ok := lo.Output.IndexedId(); ok {
		doc.IndexedId = id
	} else if lo.Output.IsImplicit() {
		doc.IndexedId = types.AccountId(codec.DeriveChainId(lo.OutputId)).String()
	}
	if addr, ok := lo.Output.UnlockAddress(); ok {
		doc.Address = addr.Key()
	}
	return doc
}

func fromLedgerOutputDoc(d ledgerOutputDoc) (types.LedgerOutput, error) {
	outputId, err := types.ParseOutputId(d.OutputId)
	if err != nil {
		return types.LedgerOutput{}, err
	}
	blockId, err := types.ParseBlockId(d.BlockId)
	if err != nil {
		return types.LedgerOutput{}, err
	}
	output, err := codec.DecodeOutput(d.RawOutput)
	if err != nil {
		return types.LedgerOutput{}, err
	}
	return types.LedgerOutput{
		OutputId:  outputId,
		BlockId:   blockId,
		Booked:    types.SlotIndex(d.Booked),
		RawOutput: d.RawOutput,
		RentBytes: d.RentBytes,
		Output:    output,
	}, nil
}

type spentMetadataDoc struct {
	TransactionId string `bson:"transaction_id"`
	Slot          uint32 `bson:"slot"`
}

type sliceOfLedgerOutputSpentDoc struct {
	ledgerOutputDoc `bson:",inline"`
	Spent           spentMetadataDoc `bson:"spent"`
}

type syncDoc struct {
	Index uint32 `bson:"_id"`
}

type protocolUpdateDoc struct {
	Index      uint32 `bson:"_id"`
	Version    uint8  `bson:"version"`
	Network    string `bson:"network_name"`
	Bech32Hrp  string `bson:"bech32_hrp"`
	TokenSupplyHex string `bson:"token_supply"`
	BelowMaxDepth  uint8  `bson:"below_max_depth"`
	VByteCost      uint32 `bson:"v_byte_cost"`
	VByteFactorData uint8 `bson:"v_byte_factor_data"`
	VByteFactorKey  uint8 `bson:"v_byte_factor_key"`
	Raw            []byte `bson:"raw"`
}

func toProtocolUpdateDoc(index types.MilestoneIndex, p types.ProtocolParameters) protocolUpdateDoc {
	return protocolUpdateDoc{
		Index:           uint32(index),
		Version:         p.ProtocolVersion,
		Network:         p.NetworkName,
		Bech32Hrp:       p.Bech32Hrp,
		TokenSupplyHex:  hex.EncodeToString(p.TokenSupply[:]),
		BelowMaxDepth:   p.BelowMaxDepth,
		VByteCost:       p.RentStructure.VByteCost,
		VByteFactorData: p.RentStructure.VByteFactorData,
		VByteFactorKey:  p.RentStructure.VByteFactorKey,
		Raw:             p.Raw,
	}
}

func fromProtocolUpdateDoc(d protocolUpdateDoc) (types.ProtocolParameters, error) {
	raw, err := hex.DecodeString(d.TokenSupplyHex)
	if err != nil {
		return types.ProtocolParameters{}, err
	}
	var supply [32]byte
	copy(supply[:], raw)
	return types.ProtocolParameters{
		ProtocolVersion: d.Version,
		NetworkName:     d.Network,
		Bech32Hrp:       d.Bech32Hrp,
		StartIndex:      types.MilestoneIndex(d.Index),
		TokenSupply:     supply,
		BelowMaxDepth:   d.BelowMaxDepth,
		RentStructure: types.RentStructure{
			VByteCost:       d.VByteCost,
			VByteFactorData: d.VByteFactorData,
			VByteFactorKey:  d.VByteFactorKey,
		},
		Raw: d.Raw,
	}, nil
}

type balanceDoc struct {
	Address string               `bson:"_id"`
	Amount  primitive.Decimal128 `bson:"amount"`
}

type milestoneDoc struct {
	Id                  string   `bson:"_id"`
	Index               uint32   `bson:"index"`
	Timestamp           uint32   `bson:"timestamp"`
	Raw                 []byte   `bson:"raw"`
	InclusionMerkleRoot string   `bson:"inclusion_merkle_root"`
	Cone                []string `bson:"cone"`
}

func toMilestoneDoc(m types.Milestone) milestoneDoc {
	cone := make([]string, len(m.Cone))
	for i, rb := range m.Cone {
		cone[i] = rb.BlockId.String()
	}
	return milestoneDoc{
		Id:                  m.MilestoneId.String(),
		Index:               uint32(m.Index),
		Timestamp:           uint32(m.Timestamp),
		Raw:                 m.Raw,
		InclusionMerkleRoot: hex.EncodeToString(m.InclusionMerkleRoot[:]),
		Cone:                cone,
	}
}

func fromMilestoneDoc(d milestoneDoc) (types.Milestone, error) {
	m, err := codec.DecodeMilestone(d.Raw)
	if err != nil {
		return types.Milestone{}, err
	}
	m.Cone = make([]types.ReferencedBlock, len(d.Cone))
	for i, s := range d.Cone {
		id, err := types.ParseBlockId(s)
		if err != nil {
			return types.Milestone{}, err
		}
		m.Cone[i] = types.ReferencedBlock{BlockId: id, WhiteFlagIndex: uint32(i)}
	}
	return m, nil
}
