package merkle

// Tree is a binary merkle tree over an ordered list of leaf hashes. It is
// immutable once built; concurrent reads need no locking.
type Tree struct {
	// Leaves contains the leaf hashes in campaign order (index = position).
	Leaves [][32]byte

	// Root is the merkle root hash, the public commitment to the leaf set.
	Root [32]byte

	// levels stores all tree levels for proof extraction.
	// levels[0] = leaves, levels[len-1] = [root]
	levels [][][32]byte
}

// Proof shows that a leaf is included in a tree with a given root. It is the
// ordered sequence of sibling hashes from the leaf up to the root; a level
// where the node was promoted unpaired records no sibling.
type Proof struct {
	// LeafIndex is the position of the proven leaf in the leaf list.
	LeafIndex int

	// Leaf is the hash of the leaf being proven.
	Leaf [32]byte

	// Siblings contains the sibling hashes from leaf to root.
	// Siblings[0] is adjacent to the leaf, the last entry is near the root.
	Siblings [][32]byte
}
