// Package poi implements the proof-of-inclusion subsystem (spec §4.6): a
// binary BLAKE2b-256 Merkle tree over a milestone's white-flag-ordered
// block-id cone, with RFC-6962-style domain separation, and the recursive
// audit-path construction/validation built on top of it. The hashing rules
// are ported directly from the upstream inx-chronicle's own
// `api/stardust/poi/hasher.rs`, including its exact empty/leaf/node
// prefixes and largest-power-of-two split point, so the hash vectors in
// spec §8 scenarios 1-3 reproduce bit-for-bit.
package poi

import (
	"fmt"
	"math/bits"

	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

func hash(data ...[]byte) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // New256 with a nil key never errors
	}
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashEmpty() [32]byte { return hash() }

func hashLeaf(blockId types.BlockId) [32]byte {
	return hash([]byte{leafPrefix}, blockId[:])
}

func hashNode(left, right [32]byte) [32]byte {
	return hash([]byte{nodePrefix}, left[:], right[:])
}

// largestPowerOfTwo returns the largest power of two strictly less than n.
// Requires n > 1; it is the split point MerkleHash and the audit-path
// builder both use to divide a sequence of n leaves into two balanced
// halves.
func largestPowerOfTwo(n int) int {
	if n <= 1 {
		panic(fmt.Sprintf("poi: largestPowerOfTwo requires n > 1, got %d", n))
	}
	return 1 << (bits.Len(uint(n-1)) - 1)
}

// MerkleHash computes the inclusion root over an ordered list of block
// ids, per spec §4.6:
//   - 0 leaves:  H(empty input)
//   - 1 leaf:    H(0x00 || blockId)
//   - n leaves:  H(0x01 || MerkleHash(left) || MerkleHash(right)), split at
//     largestPowerOfTwo(n)
func MerkleHash(blockIds []types.BlockId) [32]byte {
	switch len(blockIds) {
	case 0:
		return hashEmpty()
	case 1:
		return hashLeaf(blockIds[0])
	default:
		k := largestPowerOfTwo(len(blockIds))
		left := MerkleHash(blockIds[:k])
		right := MerkleHash(blockIds[k:])
		return hashNode(left, right)
	}
}
