package types

// PayloadKind tags the union in Payload.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadTransaction
	PayloadMilestone
	PayloadTreasuryTransaction
	PayloadTaggedData
)

// Payload is a tagged union over the payload kinds a block may carry.
// Only the field matching Kind is populated.
type Payload struct {
	Kind                PayloadKind
	Transaction         *TransactionPayload
	Milestone           *MilestonePayload
	TreasuryTransaction *TreasuryTransactionPayload
	TaggedData          *TaggedDataPayload
}

// TransactionPayload carries the inputs/outputs/unlocks of a value
// transfer. Inputs and unlock blocks are kept as raw packed bytes; the
// decoded form lives on the referenced LedgerOutput/LedgerSpent rows
// rather than being duplicated here.
type TransactionPayload struct {
	NetworkId   uint64
	Inputs      []OutputId
	Outputs     []Output
	RawUnlocks  []byte
	RawEssence  []byte
}

// MilestonePayload is the decoded body of a milestone block. See Milestone
// in milestone.go for the persisted, store-facing view.
type MilestonePayload struct {
	Index               MilestoneIndex
	Timestamp           UnixTimestamp
	PreviousMilestoneId MilestoneId
	Parents             []BlockId
	InclusionMerkleRoot [32]byte
	AppliedMerkleRoot   [32]byte
	Metadata            []byte
	Signatures          [][]byte
}

type TreasuryTransactionPayload struct {
	InputMilestoneId MilestoneId
	Amount           [32]byte
}

type TaggedDataPayload struct {
	Tag  []byte
	Data []byte
}

// InclusionState reports how a block's payload fared once referenced by a
// milestone.
type InclusionState uint8

const (
	InclusionIncluded InclusionState = iota
	InclusionConflicting
	InclusionNoTransaction
)

// ConflictReason enumerates why a transaction payload was rejected by
// white-flag conflict resolution. Zero value means "no conflict".
type ConflictReason uint8

const (
	ConflictNone ConflictReason = iota
	ConflictInputUTXOAlreadySpent
	ConflictInputUTXONotFound
	ConflictInputOutputSumMismatch
	ConflictInvalidSignature
	ConflictTimelockNotExpired
	ConflictInvalidNativeTokens
	ConflictReturnAmountNotFulfilled
	ConflictInvalidInputUnlock
	ConflictInvalidChainStateTransition
	ConflictSemanticValidationFailed
)

// BlockMetadata is the ingestion-derived view of a block: its place in the
// parents DAG and its fate once a milestone referenced it. A block is
// created once by ingestion and never mutated afterward, but its metadata
// is filled in across two steps (parents known at decode time; the
// remaining fields known only once a milestone's cone stream reaches it).
type BlockMetadata struct {
	BlockId               BlockId
	Parents               []BlockId
	Solid                 bool
	ReferencedByMilestone MilestoneIndex
	InclusionState        InclusionState
	ConflictReason        ConflictReason
	WhiteFlagIndex        uint32
}

// Block is a parents-DAG node: the raw packed bytes (needed for hash
// identity and byte-identical re-serialization), a decoded payload view,
// and its metadata.
type Block struct {
	BlockId         BlockId
	ProtocolVersion uint8
	Parents         []BlockId
	Payload         Payload
	Nonce           uint64
	Raw             []byte
	Metadata        BlockMetadata
}

// BlockWithMetadata is what a milestone's cone stream emits: a decoded
// block plus the metadata the ingestion worker completes before persisting
// it (white-flag index, inclusion state).
type BlockWithMetadata struct {
	Block    Block
	Metadata BlockMetadata
}
