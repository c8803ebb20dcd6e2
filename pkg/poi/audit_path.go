package poi

import (
	"errors"
	"fmt"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// ErrBlockNotIncluded is returned when the requested block id is not part
// of the milestone's cone (spec §4.6, property P7).
var ErrBlockNotIncluded = errors.New("poi: block not included in milestone cone")

// ErrInsufficientBlockIds is returned when asked to build an audit path
// over an empty cone.
var ErrInsufficientBlockIds = errors.New("poi: insufficient block ids")

// HashableKind tags the union in Hashable.
type HashableKind uint8

const (
	HashableValue HashableKind = iota
	HashableNodeHash
	HashablePath
)

// Hashable is the sum type an AuditPath node resolves to: the chosen
// leaf's own block id (Value), an opaque sibling subtree digest (Node),
// or a further split requiring recursive descent (Path).
type Hashable struct {
	Kind    HashableKind
	Value   types.BlockId
	Node    [32]byte
	Path    *AuditPath
}

func valueHashable(id types.BlockId) Hashable   { return Hashable{Kind: HashableValue, Value: id} }
func nodeHashable(h [32]byte) Hashable          { return Hashable{Kind: HashableNodeHash, Node: h} }
func pathHashable(p *AuditPath) Hashable        { return Hashable{Kind: HashablePath, Path: p} }

// Hash returns this Hashable's contribution to its parent's hash_node.
func (h Hashable) Hash() [32]byte {
	switch h.Kind {
	case HashableValue:
		return hashLeaf(h.Value)
	case HashableNodeHash:
		return h.Node
	case HashablePath:
		return h.Path.Hash()
	default:
		panic("poi: invalid Hashable kind")
	}
}

// ContainsBlockId reports whether the chosen leaf anywhere in this subtree
// is blockId — true only along the branch that was actually selected when
// the path was built; Node siblings are opaque and never match.
func (h Hashable) ContainsBlockId(blockId types.BlockId) bool {
	switch h.Kind {
	case HashableValue:
		return h.Value == blockId
	case HashablePath:
		return h.Path.ContainsBlockId(blockId)
	default:
		return false
	}
}

// AuditPath is a binary Merkle audit path: at every level, one side is the
// branch actually descended (Value or a further Path) and the other is an
// opaque sibling digest (Node), mirroring
// original_source's MerkleAuditPath exactly.
type AuditPath struct {
	Left  Hashable
	Right Hashable
}

// Hash recomputes this path's contribution to the root, recursing through
// any nested Path nodes.
func (p *AuditPath) Hash() [32]byte {
	return hashNode(p.Left.Hash(), p.Right.Hash())
}

// ContainsBlockId reports whether blockId is the leaf this path was built
// for.
func (p *AuditPath) ContainsBlockId(blockId types.BlockId) bool {
	return p.Left.ContainsBlockId(blockId) || p.Right.ContainsBlockId(blockId)
}

// CreateAuditPath builds the audit path proving blockId's membership in
// the white-flag-ordered cone blockIds. Fails with ErrBlockNotIncluded if
// blockId is absent (property P7).
func CreateAuditPath(blockIds []types.BlockId, blockId types.BlockId) (*AuditPath, error) {
	for i, id := range blockIds {
		if id == blockId {
			return CreateAuditPathFromIndex(blockIds, i)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBlockNotIncluded, blockId)
}

// CreateAuditPathFromIndex builds the audit path for the leaf at index in
// blockIds.
func CreateAuditPathFromIndex(blockIds []types.BlockId, index int) (*AuditPath, error) {
	if len(blockIds) == 0 {
		return nil, ErrInsufficientBlockIds
	}
	if index < 0 || index >= len(blockIds) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrBlockNotIncluded, index, len(blockIds))
	}
	return computeAuditPath(blockIds, index), nil
}

// computeAuditPath mirrors original_source's recursive compute_audit_path:
// the base case (n==2) places the chosen leaf as Value and the other as a
// Node(hash_leaf); the general case splits at largestPowerOfTwo(n) and
// recurses into whichever half contains index, collapsing a
// single-element selected half straight to Value instead of wrapping it
// in a one-leaf Path; the other half is always a Node digest.
func computeAuditPath(blockIds []types.BlockId, index int) *AuditPath {
	n := len(blockIds)
	if n == 2 {
		if index == 0 {
			return &AuditPath{
				Left:  valueHashable(blockIds[0]),
				Right: nodeHashable(hashLeaf(blockIds[1])),
			}
		}
		return &AuditPath{
			Left:  nodeHashable(hashLeaf(blockIds[0])),
			Right: valueHashable(blockIds[1]),
		}
	}

	mid := largestPowerOfTwo(n)
	if index < mid {
		left := blockIds[:mid]
		right := blockIds[mid:]
		return &AuditPath{
			Left:  descend(left, index),
			Right: nodeHashable(MerkleHash(right)),
		}
	}
	left := blockIds[:mid]
	right := blockIds[mid:]
	return &AuditPath{
		Left:  nodeHashable(MerkleHash(left)),
		Right: descend(right, index-mid),
	}
}

// descend returns the Hashable for a branch actually selected: a bare
// Value when that branch has collapsed to a single leaf, otherwise a
// nested Path.
func descend(blockIds []types.BlockId, index int) Hashable {
	if len(blockIds) == 1 {
		return valueHashable(blockIds[0])
	}
	return pathHashable(computeAuditPath(blockIds, index))
}

// Validate recomputes path's root and checks it against expectedRoot AND
// that the path actually proves blockId's membership — both must hold
// (spec §4.6, property P6).
func Validate(path *AuditPath, blockId types.BlockId, expectedRoot [32]byte) bool {
	return path.Hash() == expectedRoot && path.ContainsBlockId(blockId)
}
