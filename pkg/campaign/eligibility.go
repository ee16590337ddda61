package campaign

import "github.com/sablier-labs/merkle-api-go/pkg/merkle"

// EligibilityResult answers "is this address a recipient, and what is its
// proof". A miss is a successful, meaningful outcome, not an error: Eligible
// is false and all other fields are zero.
type EligibilityResult struct {
	Eligible bool
	Index    int
	Address  string // chain display form
	Amount   uint64
	Vesting  *VestingSchedule
	Proof    [][32]byte
}

// Lookup normalizes the query address with the campaign's codec, finds the
// recipient by canonical bytes, and returns its claim data plus a freshly
// extracted proof. The proof is re-verified against the stored root before it
// is returned; a mismatch aborts with ErrRootMismatch instead of handing out
// a proof that cannot reproduce the published commitment.
func (c *Campaign) Lookup(address string) (*EligibilityResult, error) {
	addr, err := c.codec.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	index, ok := c.byAddress[string(addr)]
	if !ok {
		return &EligibilityResult{Eligible: false}, nil
	}

	proof, err := c.tree.Proof(index)
	if err != nil {
		return nil, err
	}
	if !merkle.Verify(proof.Leaf, proof.Siblings, c.tree.Root, c.codec) {
		return nil, ErrRootMismatch
	}

	r := c.Recipients[index]
	return &EligibilityResult{
		Eligible: true,
		Index:    index,
		Address:  c.codec.FormatAddress(addr),
		Amount:   r.Amount,
		Vesting:  r.Vesting,
		Proof:    proof.Siblings,
	}, nil
}
