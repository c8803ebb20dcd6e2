package types

// SpentMetadata records when and by what transaction a LedgerOutput was
// consumed.
type SpentMetadata struct {
	TransactionId TransactionId
	Slot          SlotIndex
}

// LedgerOutput is the unspent view of an output: enough to serve reads and
// to compute rent without re-decoding the raw bytes.
type LedgerOutput struct {
	OutputId     OutputId
	BlockId      BlockId
	Booked       SlotIndex
	CommitmentId SlotCommitmentId
	Output       Output
	RawOutput    []byte
	RentBytes    uint64
}

// LedgerSpent is the spent view: a LedgerOutput plus spend metadata. The
// underlying LedgerOutput is never mutated in place; committing a spend
// inserts spend metadata alongside it (see storage.MongoStore.UpdateSpentOutputs).
type LedgerSpent struct {
	Output LedgerOutput
	Spent  SpentMetadata
}

// Amount returns the amount delta a given address must apply for this
// output: positive outputs increase the UTXO set's balance at the ledger
// index where the output is booked-and-unspent.
func (lo LedgerOutput) Amount() [32]byte {
	return lo.Output.Amount
}
