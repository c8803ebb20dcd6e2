package codec

import (
	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// DecodeMilestone unpacks a raw milestone payload (as returned by
// read_milestone) into a types.Milestone, deriving its MilestoneId. The
// cone (white-flag-ordered referenced blocks) is filled in separately by
// the ingestion worker once read_milestone_cone finishes streaming (spec
// §4.4), not by this decode step.
func DecodeMilestone(raw []byte) (types.Milestone, error) {
	r := newReader(raw)
	payload, err := decodeMilestonePayload(r)
	if err != nil {
		return types.Milestone{}, &chronoerr.DecodeError{Record: "milestone", Cause: err}
	}
	return types.Milestone{
		MilestoneId:         DeriveMilestoneId(raw),
		Index:               payload.Index,
		Timestamp:           payload.Timestamp,
		Raw:                 raw,
		Payload:             *payload,
		InclusionMerkleRoot: payload.InclusionMerkleRoot,
	}, nil
}

// EncodeMilestone re-packs a milestone payload, used to verify round-trip
// stability (P4).
func EncodeMilestone(m types.Milestone) []byte {
	w := newWriter()
	encodeMilestonePayload(w, m.Payload)
	return w.bytes()
}
