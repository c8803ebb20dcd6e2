package types

import "encoding/binary"

// SlotCommitmentId is the IOTA 2.0-era commitment identifier: unlike the
// fixed-width Stardust ids, it embeds the SlotIndex it commits (a 32-byte
// digest over the commitment's packed bytes, followed by the big-endian
// slot index), so that the index is recoverable without a store lookup.
type SlotCommitmentId struct {
	Hash [32]byte
	Slot SlotIndex
}

// Bytes returns the 36-byte packed form: digest || big-endian slot index.
func (id SlotCommitmentId) Bytes() [36]byte {
	var b [36]byte
	copy(b[:32], id.Hash[:])
	binary.BigEndian.PutUint32(b[32:], uint32(id.Slot))
	return b
}

func (id SlotCommitmentId) String() string {
	b := id.Bytes()
	return hexString(b[:])
}

func (id SlotCommitmentId) IsZero() bool {
	return id.Hash == [32]byte{} && id.Slot == 0
}

// ReferencedBlock is one entry of a milestone's white-flag-ordered cone,
// as persisted alongside the milestone record.
type ReferencedBlock struct {
	BlockId        BlockId
	WhiteFlagIndex uint32
}

// Milestone is the Stardust-era checkpoint record; SlotCommitment is its
// IOTA 2.0 successor. Both share the same role in the data model (§3): a
// strictly increasing sequence of checkpoints, each owning a white-flag
// ordered cone and an inclusion Merkle root over that cone's block ids.
type Milestone struct {
	MilestoneId         MilestoneId
	Index               MilestoneIndex
	Timestamp           UnixTimestamp
	Raw                 []byte
	Payload             MilestonePayload
	InclusionMerkleRoot [32]byte
	Cone                []ReferencedBlock
}

// SlotCommitment is the IOTA 2.0 analogue of Milestone.
type SlotCommitment struct {
	CommitmentId        SlotCommitmentId
	Slot                SlotIndex
	Timestamp           UnixTimestamp
	Raw                 []byte
	InclusionMerkleRoot [32]byte
	Cone                []ReferencedBlock
}

// BlockIds returns the white-flag-ordered block id sequence of this
// milestone's cone, suitable input to pkg/poi's MerkleHasher.
func (m Milestone) BlockIds() []BlockId {
	ids := make([]BlockId, len(m.Cone))
	for i, rb := range m.Cone {
		ids[i] = rb.BlockId
	}
	return ids
}
