// Package merkle implements the chain-agnostic merkle tree engine: layered
// construction from an ordered leaf list, per-leaf proof extraction, and
// standalone proof verification.
//
// Root-computation contract (shared with on-chain verifiers, do not change):
//   - adjacent nodes pair left-to-right at every level;
//   - an odd trailing node is PROMOTED unchanged to the next level, never
//     duplicated;
//   - a pair (a, b) hashes to codec.Hash(min(a,b) || max(a,b)) under
//     byte-lexicographic ordering, making the pair hash commutative so that
//     verification needs only the sibling value, not its side.
package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sablier-labs/merkle-api-go/pkg/chain"
)

var (
	// ErrEmptyTree is returned when building a tree from zero leaves.
	ErrEmptyTree = errors.New("cannot build merkle tree from empty leaf list")

	// ErrIndexOutOfRange is returned when a proof is requested for an index
	// beyond the leaf count.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Build creates a merkle tree from an ordered list of leaf hashes. The leaf
// order is the campaign's recipient order and is part of the commitment; Build
// never reorders its input. All levels are materialized so proofs can be
// extracted without rehashing.
func Build(leaves [][32]byte, codec chain.Codec) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	levels := make([][][32]byte, 0)
	levels = append(levels, leaves)

	current := leaves
	for len(current) > 1 {
		next := make([][32]byte, 0, (len(current)+1)/2)

		for i := 0; i+1 < len(current); i += 2 {
			next = append(next, hashPair(codec, current[i], current[i+1]))
		}
		if len(current)%2 == 1 {
			// Odd level: the unpaired last node is promoted as-is.
			next = append(next, current[len(current)-1])
		}

		levels = append(levels, next)
		current = next
	}

	if len(current) != 1 {
		return nil, fmt.Errorf("merkle tree construction failed: final level has %d nodes instead of 1", len(current))
	}

	return &Tree{
		Leaves: leaves,
		Root:   current[0],
		levels: levels,
	}, nil
}

// Proof extracts the merkle proof for the leaf at the given index. It walks
// the same levels used at build time, recording the sibling at each level; a
// level where the node was promoted unpaired contributes no sibling.
func (t *Tree) Proof(leafIndex int) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= len(t.Leaves) {
		return nil, fmt.Errorf("%w: index %d, tree has %d leaves", ErrIndexOutOfRange, leafIndex, len(t.Leaves))
	}

	siblings := make([][32]byte, 0)
	index := leafIndex

	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]

		siblingIndex := index ^ 1
		if siblingIndex < len(nodes) {
			siblings = append(siblings, nodes[siblingIndex])
		}
		// else: promoted unpaired node, no sibling at this level.

		index /= 2
	}

	return &Proof{
		LeafIndex: leafIndex,
		Leaf:      t.Leaves[leafIndex],
		Siblings:  siblings,
	}, nil
}

// Verify recomputes the root from a leaf hash and a sibling sequence and
// compares it to the expected root. It takes no dependency on a stored tree,
// which makes it the basis of the standalone validity check.
func Verify(leaf [32]byte, siblings [][32]byte, expectedRoot [32]byte, codec chain.Codec) bool {
	current := leaf
	for _, sibling := range siblings {
		current = hashPair(codec, current, sibling)
	}
	return current == expectedRoot
}

// hashPair computes codec.Hash(min(a,b) || max(a,b)). Sorting before
// concatenation makes the pair hash commutative.
func hashPair(codec chain.Codec, a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return codec.Hash(a[:], b[:])
}
