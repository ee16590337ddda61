package campaign

import (
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/merkle"
)

// LeafData is the caller-supplied claim data for a standalone validity check:
// everything needed to re-derive one leaf hash.
type LeafData struct {
	Index   uint64
	Address string
	Amount  uint64
	Vesting *VestingSchedule
}

// CheckValidity verifies an externally supplied (leaf data, proof, root)
// triple without any stored campaign. The leaf hash is re-derived from the
// claim data under the selected chain codec, then the proof is folded up to
// the root. This lets a caller validate a proof they received out-of-band
// against an on-chain root.
func CheckValidity(root [32]byte, leaf LeafData, proof [][32]byte, tag chain.Tag) (bool, error) {
	codec, err := chain.FromTag(tag)
	if err != nil {
		return false, err
	}

	addr, err := codec.NormalizeAddress(leaf.Address)
	if err != nil {
		return false, err
	}

	leafHash := chain.EncodeLeaf(codec, leaf.Index, addr, leaf.Amount, leaf.Vesting.Bytes())
	return merkle.Verify(leafHash, proof, root, codec), nil
}
