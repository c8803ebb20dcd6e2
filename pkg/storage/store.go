// Package storage implements the ledger store (spec §4.2): the single
// shared mutable resource that owns every persisted entity in Chronicle's
// data model. Store defines the operations at design level, the way the
// teacher's pkg/storage.Store interface separates "what the rest of the
// codebase may do to state" from "how it's actually kept" — MongoStore is
// the only implementation, grounded in original_source's own choice of
// MongoDB (src/db/mongodb.rs).
package storage

import (
	"context"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// BlockBatch is everything one milestone's cone contributes in a single
// commit: blocks with their raw bytes and metadata, plus the parent edges
// they introduce.
type BlockBatch struct {
	Blocks      []types.Block
	ParentEdges []ParentEdge
}

// ParentEdge is a (parent, child) row; unique on the pair, never deleted.
type ParentEdge struct {
	Parent types.BlockId
	Child  types.BlockId
}

// OutputsBatch is the created/consumed side of one milestone's ledger
// update, applied atomically alongside BlockBatch and the sync marker.
type OutputsBatch struct {
	Created []types.LedgerOutput
	Spent   []types.LedgerSpent
}

// SlotDoc is the minimal view get_latest_committed_slot returns.
type SlotDoc struct {
	CommitmentId types.SlotCommitmentId
	Index        types.SlotIndex
	Raw          []byte
}

// OutputWithMetadata pairs a ledger output with its spend status, as
// returned by get_output_with_metadata.
type OutputWithMetadata struct {
	Output  types.LedgerOutput
	Spent   *types.SpentMetadata
}

// LedgerUpdate is one row of an address/slot ledger-update stream: either
// a created or a consumed output touching the key.
type LedgerUpdate struct {
	Output  types.LedgerOutput
	IsSpent bool
	Spent   *types.SpentMetadata
}

// Page is a generic paginated result: items plus the cursor for the next
// page, or a nil cursor when exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// Store is the ledger store's full operation set (spec §4.2). All writes
// that belong to a single milestone commit (CommitMilestone) run inside
// one transaction; readers never observe a half-applied milestone.
type Store interface {
	// Slots / milestones
	UpsertCommittedSlot(ctx context.Context, m types.Milestone) error
	GetLatestCommittedSlot(ctx context.Context) (*SlotDoc, error)
	GetMilestone(ctx context.Context, index types.MilestoneIndex) (*types.Milestone, error)

	// Milestone commit: blocks, parent edges, created/spent outputs, sync
	// marker and (if changed) protocol parameters, all in one transaction.
	CommitMilestone(ctx context.Context, milestone types.Milestone, blocks BlockBatch, outputs OutputsBatch, params *types.ProtocolParameters) error

	// Blocks
	InsertBlocksWithMetadata(ctx context.Context, batch BlockBatch) error
	GetBlock(ctx context.Context, id types.BlockId) (*types.Block, error)
	GetBlockMetadata(ctx context.Context, id types.BlockId) (*types.BlockMetadata, error)
	GetBlockChildren(ctx context.Context, id types.BlockId) ([]types.BlockId, error)

	// Outputs
	InsertUnspentOutputs(ctx context.Context, outputs []types.LedgerOutput) error
	UpdateSpentOutputs(ctx context.Context, spent []types.LedgerSpent) error
	GetOutput(ctx context.Context, id types.OutputId) (*types.LedgerOutput, error)
	GetOutputMetadata(ctx context.Context, id types.OutputId) (*OutputWithMetadata, error)
	GetOutputWithMetadata(ctx context.Context, id types.OutputId) (*OutputWithMetadata, error)

	// Ledger-update streams
	StreamLedgerUpdatesByAddress(ctx context.Context, addr types.Address, pageSize uint32, cursor *types.LedgerUpdateCursor, order types.SortOrder) (Page[LedgerUpdate], error)
	StreamLedgerUpdatesBySlot(ctx context.Context, slot types.SlotIndex, pageSize uint32, cursor *types.LedgerUpdateCursor) (Page[LedgerUpdate], error)

	// Indexer queries
	QueryOutputs(ctx context.Context, kind types.OutputKind, filter types.OutputsFilter) (Page[types.OutputId], types.MilestoneIndex, error)

	// Balance
	AddBalance(ctx context.Context, addr types.Address, amount [32]byte) error
	RemoveBalance(ctx context.Context, addr types.Address, amount [32]byte) error
	GetBalance(ctx context.Context, addr types.Address) ([32]byte, error)
	RichestAddresses(ctx context.Context, limit uint32) ([]AddressBalance, error)
	AllBalances(ctx context.Context) ([]AddressBalance, error)

	// Sync tracker
	InsertSyncMarker(ctx context.Context, index types.MilestoneIndex) error
	SortedMarkers(ctx context.Context, r types.Range) ([]types.MilestoneIndex, error)
	GetSyncData(ctx context.Context, r types.Range) (completed, gaps []types.Range, err error)

	// Protocol parameters
	UpsertProtocolParameters(ctx context.Context, index types.MilestoneIndex, params types.ProtocolParameters) error
	ProtocolParamsFor(ctx context.Context, index types.MilestoneIndex) (*types.ProtocolParameters, error)

	Close(ctx context.Context) error
}
