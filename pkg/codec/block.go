package codec

import (
	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func encodeBlockId(w *writer, id types.BlockId) { w.bytes32([32]byte(id)) }

func decodeBlockId(r *reader) (types.BlockId, error) {
	b, err := r.bytes32()
	return types.BlockId(b), err
}

func encodeTransactionPayload(w *writer, t types.TransactionPayload) {
	w.uint64(t.NetworkId)
	encodeSlice(w, t.Inputs, func(w *writer, id types.OutputId) {
		b := id.Bytes()
		w.buf.Write(b[:])
	})
	encodeSlice(w, t.Outputs, func(w *writer, o types.Output) {
		w.sized(EncodeOutput(o))
	})
	w.sized(t.RawEssence)
	w.sized(t.RawUnlocks)
}

func decodeTransactionPayload(r *reader) (*types.TransactionPayload, error) {
	t := &types.TransactionPayload{}
	var err error
	if t.NetworkId, err = r.uint64(); err != nil {
		return nil, err
	}
	t.Inputs, err = decodeSlice(r, func(r *reader) (types.OutputId, error) {
		var b [34]byte
		if _, err := readFull(r.buf, b[:]); err != nil {
			return types.OutputId{}, err
		}
		var id types.OutputId
		copy(id.TransactionId[:], b[:32])
		id.Index = uint16(b[32])<<8 | uint16(b[33])
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	t.Outputs, err = decodeSlice(r, func(r *reader) (types.Output, error) {
		raw, err := r.sized()
		if err != nil {
			return types.Output{}, err
		}
		return DecodeOutput(raw)
	})
	if err != nil {
		return nil, err
	}
	if t.RawEssence, err = r.sized(); err != nil {
		return nil, err
	}
	t.RawUnlocks, err = r.sized()
	return t, err
}

func encodeMilestonePayload(w *writer, m types.MilestonePayload) {
	w.uint32(uint32(m.Index))
	w.uint32(uint32(m.Timestamp))
	w.bytes32([32]byte(m.PreviousMilestoneId))
	encodeSlice(w, m.Parents, encodeBlockId)
	w.bytes32(m.InclusionMerkleRoot)
	w.bytes32(m.AppliedMerkleRoot)
	w.sized(m.Metadata)
	encodeSlice(w, m.Signatures, func(w *writer, sig []byte) { w.sized(sig) })
}

func decodeMilestonePayload(r *reader) (*types.MilestonePayload, error) {
	m := &types.MilestonePayload{}
	var err error
	var idx, ts uint32
	if idx, err = r.uint32(); err != nil {
		return nil, err
	}
	m.Index = types.MilestoneIndex(idx)
	if ts, err = r.uint32(); err != nil {
		return nil, err
	}
	m.Timestamp = types.UnixTimestamp(ts)
	var prev [32]byte
	if prev, err = r.bytes32(); err != nil {
		return nil, err
	}
	m.PreviousMilestoneId = types.MilestoneId(prev)
	if m.Parents, err = decodeSlice(r, decodeBlockId); err != nil {
		return nil, err
	}
	if m.InclusionMerkleRoot, err = r.bytes32(); err != nil {
		return nil, err
	}
	if m.AppliedMerkleRoot, err = r.bytes32(); err != nil {
		return nil, err
	}
	if m.Metadata, err = r.sized(); err != nil {
		return nil, err
	}
	m.Signatures, err = decodeSlice(r, func(r *reader) ([]byte, error) { return r.sized() })
	return m, err
}

func encodeTreasuryTransactionPayload(w *writer, t types.TreasuryTransactionPayload) {
	w.bytes32([32]byte(t.InputMilestoneId))
	w.bytes32(t.Amount)
}

func decodeTreasuryTransactionPayload(r *reader) (*types.TreasuryTransactionPayload, error) {
	t := &types.TreasuryTransactionPayload{}
	var err error
	var id [32]byte
	if id, err = r.bytes32(); err != nil {
		return nil, err
	}
	t.InputMilestoneId = types.MilestoneId(id)
	t.Amount, err = r.bytes32()
	return t, err
}

func encodeTaggedDataPayload(w *writer, t types.TaggedDataPayload) {
	w.sized(t.Tag)
	w.sized(t.Data)
}

func decodeTaggedDataPayload(r *reader) (*types.TaggedDataPayload, error) {
	t := &types.TaggedDataPayload{}
	var err error
	if t.Tag, err = r.sized(); err != nil {
		return nil, err
	}
	t.Data, err = r.sized()
	return t, err
}

func encodePayload(w *writer, p types.Payload) {
	w.byte(byte(p.Kind))
	switch p.Kind {
	case types.PayloadTransaction:
		encodeTransactionPayload(w, *p.Transaction)
	case types.PayloadMilestone:
		encodeMilestonePayload(w, *p.Milestone)
	case types.PayloadTreasuryTransaction:
		encodeTreasuryTransactionPayload(w, *p.TreasuryTransaction)
	case types.PayloadTaggedData:
		encodeTaggedDataPayload(w, *p.TaggedData)
	}
}

func decodePayload(r *reader) (types.Payload, error) {
	kind, err := r.byte()
	if err != nil {
		return types.Payload{}, err
	}
	p := types.Payload{Kind: types.PayloadKind(kind)}
	switch p.Kind {
	case types.PayloadNone:
	case types.PayloadTransaction:
		p.Transaction, err = decodeTransactionPayload(r)
	case types.PayloadMilestone:
		p.Milestone, err = decodeMilestonePayload(r)
	case types.PayloadTreasuryTransaction:
		p.TreasuryTransaction, err = decodeTreasuryTransactionPayload(r)
	case types.PayloadTaggedData:
		p.TaggedData, err = decodeTaggedDataPayload(r)
	default:
		return types.Payload{}, unknownKind("payload", kind)
	}
	return p, err
}

// EncodeBlock packs a Block's header + payload into Chronicle's wire form.
// It does not include BlockMetadata, which is ingestion-derived and never
// part of hash identity.
func EncodeBlock(b types.Block) []byte {
	w := newWriter()
	w.byte(b.ProtocolVersion)
	encodeSlice(w, b.Parents, encodeBlockId)
	encodePayload(w, b.Payload)
	w.uint64(b.Nonce)
	return w.bytes()
}

// DecodeBlock unpacks raw bytes into a Block, deriving BlockId via
// BLAKE2b-256 over the raw input (spec §4.1) and retaining Raw for
// byte-identical re-serialization (P4).
func DecodeBlock(raw []byte) (types.Block, error) {
	r := newReader(raw)
	b := types.Block{Raw: raw}
	var err error
	if b.ProtocolVersion, err = r.byte(); err != nil {
		return b, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	if b.Parents, err = decodeSlice(r, decodeBlockId); err != nil {
		return b, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	if b.Payload, err = decodePayload(r); err != nil {
		return b, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	if b.Nonce, err = r.uint64(); err != nil {
		return b, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	b.BlockId = DeriveBlockId(raw)
	b.Metadata.BlockId = b.BlockId
	b.Metadata.Parents = b.Parents
	return b, nil
}
