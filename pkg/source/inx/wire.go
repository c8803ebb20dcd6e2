package inx

// Wire frames for the node-extension RPCs (spec §6.1). Every payload the
// node would otherwise hand back as packed Stardust bytes travels as a
// plain []byte field here (json.Marshal base64-encodes []byte for us) and
// is decoded with pkg/codec on receipt; everything else is a plain
// integer/string field.

type nodeStatusResponse struct {
	IsHealthy            bool   `json:"isHealthy"`
	LedgerIndex          uint32 `json:"ledgerIndex"`
	LatestMilestoneIndex uint32 `json:"latestMilestoneIndex"`
	LatestMilestoneId    []byte `json:"latestMilestoneId"`
	PruningIndex         uint32 `json:"pruningIndex"`
}

type protocolParametersRequest struct {
	Version uint8 `json:"version"`
}

type protocolParametersResponse struct {
	Raw []byte `json:"raw"`
}

type milestoneRangeRequest struct {
	StartIndex uint32 `json:"startIndex"`
	EndIndex   uint32 `json:"endIndex"`
}

type milestoneAndParamsFrame struct {
	MilestoneRaw     []byte `json:"milestoneRaw"`
	ProtocolParamsRaw []byte `json:"protocolParamsRaw,omitempty"`
}

type ledgerUpdateFrame struct {
	Kind          uint8  `json:"kind"`
	MilestoneIndex uint32 `json:"milestoneIndex"`
	ConsumedCount uint32 `json:"consumedCount,omitempty"`
	CreatedCount  uint32 `json:"createdCount,omitempty"`

	OutputId     []byte `json:"outputId,omitempty"`
	BlockId      []byte `json:"blockId,omitempty"`
	Booked       uint32 `json:"booked,omitempty"`
	CommitmentId []byte `json:"commitmentId,omitempty"`
	RawOutput    []byte `json:"rawOutput,omitempty"`
	RentBytes    uint64 `json:"rentBytes,omitempty"`

	SpentTransactionId []byte `json:"spentTransactionId,omitempty"`
	SpentSlot          uint32 `json:"spentSlot,omitempty"`
}

type milestoneIndexRequest struct {
	Index uint32 `json:"index"`
}

type blockWithMetadataFrame struct {
	Raw                   []byte `json:"raw"`
	Solid                 bool   `json:"solid"`
	ReferencedByMilestone uint32 `json:"referencedByMilestone"`
	InclusionState        uint8  `json:"inclusionState"`
	ConflictReason        uint8  `json:"conflictReason"`
}

type blockRequest struct {
	Id []byte `json:"id"`
}

type blockResponse struct {
	Raw []byte `json:"raw"`
}

type blockMetadataResponse struct {
	Solid                 bool   `json:"solid"`
	ReferencedByMilestone uint32 `json:"referencedByMilestone"`
	InclusionState        uint8  `json:"inclusionState"`
	ConflictReason        uint8  `json:"conflictReason"`
}

type milestoneResponse struct {
	Raw []byte `json:"raw"`
}
