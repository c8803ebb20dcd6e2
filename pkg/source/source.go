// Package source defines the upstream node feed Chronicle ingests from
// (spec §6.1): a confirmed-milestone stream, a ledger-update stream, and
// on-demand lookups for cones, blocks and protocol parameters. pkg/source/inx
// implements it against a live node over gRPC; pkg/source/replay implements
// it against the store itself, serving committed milestones and cones back
// out.
package source

import (
	"context"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// NodeStatus is the response to read_node_status.
type NodeStatus struct {
	IsHealthy            bool
	LedgerIndex          types.MilestoneIndex
	LatestMilestoneIndex types.MilestoneIndex
	LatestMilestoneId    types.MilestoneId
	PruningIndex         types.MilestoneIndex
}

// LedgerUpdateEventKind tags the frames of the listen_to_ledger_updates
// stream (spec §6.1): a Begin marker, alternating Consumed/Created
// entries, then a matching End marker.
type LedgerUpdateEventKind uint8

const (
	LedgerUpdateBeginEvent LedgerUpdateEventKind = iota
	LedgerUpdateConsumedEvent
	LedgerUpdateCreatedEvent
	LedgerUpdateEndEvent
)

// LedgerUpdateMarker is the Begin/End frame: it carries the counts the
// ingestion worker must reconcile against what it actually receives.
type LedgerUpdateMarker struct {
	MilestoneIndex types.MilestoneIndex
	ConsumedCount  uint32
	CreatedCount   uint32
}

// LedgerUpdateEvent is one frame of the stream; exactly one of Marker,
// Consumed or Created is populated, selected by Kind.
type LedgerUpdateEvent struct {
	Kind     LedgerUpdateEventKind
	Marker   LedgerUpdateMarker
	Consumed types.LedgerSpent
	Created  types.LedgerOutput
}

// MilestoneAndParams is one frame of listen_to_confirmed_milestones: the
// milestone payload, plus protocol parameters when they changed at this
// index (nil otherwise).
type MilestoneAndParams struct {
	Milestone types.Milestone
	Params    *types.ProtocolParameters
}

// MilestoneStream reads MilestoneAndParams frames until io.EOF.
type MilestoneStream interface {
	Recv() (MilestoneAndParams, error)
	Close() error
}

// LedgerUpdateStream reads LedgerUpdateEvent frames until io.EOF.
type LedgerUpdateStream interface {
	Recv() (LedgerUpdateEvent, error)
	Close() error
}

// ConeStream reads a milestone's cone in white-flag order until io.EOF
// (spec §4.4: the ingestion worker enumerates 0..n to assign white-flag
// indices, it does not receive them from the node).
type ConeStream interface {
	Recv() (types.BlockWithMetadata, error)
	Close() error
}

// Source is the upstream node feed (spec §6.1).
type Source interface {
	NodeStatus(ctx context.Context) (NodeStatus, error)
	ProtocolParameters(ctx context.Context, version uint8) (types.ProtocolParameters, error)

	ListenToConfirmedMilestones(ctx context.Context, r types.Range) (MilestoneStream, error)
	ListenToLedgerUpdates(ctx context.Context, r types.Range) (LedgerUpdateStream, error)
	MilestoneCone(ctx context.Context, index types.MilestoneIndex) (ConeStream, error)

	Block(ctx context.Context, id types.BlockId) (types.Block, error)
	BlockMetadata(ctx context.Context, id types.BlockId) (types.BlockMetadata, error)
	Milestone(ctx context.Context, index types.MilestoneIndex) (types.Milestone, error)
}
