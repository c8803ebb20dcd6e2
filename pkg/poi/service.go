package poi

import (
	"context"
	"fmt"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// Proof is the response to /api/poi/v1/create/{blockId} (spec §6.2): the
// referencing milestone, the block itself, and the audit path proving
// its inclusion in that milestone's white-flag cone.
type Proof struct {
	Milestone types.Milestone
	Block     types.Block
	AuditPath *AuditPath
}

// Service answers proof-of-inclusion create/validate requests against
// the store (spec §4.6).
type Service struct {
	Store storage.Store
}

// NewService builds a Service.
func NewService(store storage.Store) *Service {
	return &Service{Store: store}
}

// Create builds a Proof for blockId: the milestone that referenced it,
// and an audit path from the milestone's full cone.
func (s *Service) Create(ctx context.Context, blockId types.BlockId) (*Proof, error) {
	block, err := s.Store.GetBlock(ctx, blockId)
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	if block == nil {
		return nil, &chronoerr.MissingError{Subject: fmt.Sprintf("block %x", blockId)}
	}

	meta, err := s.Store.GetBlockMetadata(ctx, blockId)
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	if meta == nil || meta.ReferencedByMilestone == 0 {
		return nil, &chronoerr.MissingError{Subject: fmt.Sprintf("block %x not yet referenced by a milestone", blockId)}
	}

	milestone, err := s.Store.GetMilestone(ctx, meta.ReferencedByMilestone)
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	if milestone == nil {
		return nil, &chronoerr.CorruptState{Reason: fmt.Sprintf("block %x references missing milestone %d", blockId, meta.ReferencedByMilestone)}
	}

	path, err := CreateAuditPath(milestone.BlockIds(), blockId)
	if err != nil {
		return nil, &chronoerr.CorruptState{Reason: fmt.Sprintf("block %x not found in its own referencing milestone's cone: %v", blockId, err)}
	}

	return &Proof{Milestone: *milestone, Block: *block, AuditPath: path}, nil
}

// ValidateProof reports whether proof attests blockId's inclusion under
// the proof's own milestone's inclusion-merkle-root (spec §6.2's
// /api/poi/v1/validate). It is a pure function of the supplied Proof: no
// store lookup, so it validates a proof reconstructed from a POSTed body
// exactly as it would validate one Create just returned.
func ValidateProof(proof *Proof, blockId types.BlockId) bool {
	return Validate(proof.AuditPath, blockId, proof.Milestone.InclusionMerkleRoot)
}
