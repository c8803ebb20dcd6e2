package types

// ProtocolParameters is one entry in the protocol-parameter history: a
// linear, append-only log keyed by the milestone index (Stardust) or
// epoch (IOTA 2.0) at which it took effect. The tail entry with
// StartIndex <= index applies to that index, per spec §3.
type ProtocolParameters struct {
	ProtocolVersion    uint8
	NetworkName        string
	Bech32Hrp          string
	StartIndex         MilestoneIndex
	TokenSupply        [32]byte
	BelowMaxDepth      uint8
	RentStructure      RentStructure
	Raw                []byte
}

// RentStructure is the byte-cost schedule used to compute the rent a
// LedgerOutput must cover.
type RentStructure struct {
	VByteCost         uint32
	VByteFactorData   uint8
	VByteFactorKey    uint8
}

// Equal reports whether two parameter sets are identical apart from their
// StartIndex, used by storage.MongoStore.UpsertProtocolParameters to skip
// a no-op upsert when the new parameters match the latest ones (§6.3).
func (p ProtocolParameters) Equal(other ProtocolParameters) bool {
	return p.ProtocolVersion == other.ProtocolVersion &&
		p.NetworkName == other.NetworkName &&
		p.Bech32Hrp == other.Bech32Hrp &&
		p.TokenSupply == other.TokenSupply &&
		p.BelowMaxDepth == other.BelowMaxDepth &&
		p.RentStructure == other.RentStructure
}
