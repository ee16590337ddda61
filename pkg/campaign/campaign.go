// Package campaign owns the airdrop aggregate: an immutable recipient list,
// the merkle tree built over it, and the eligibility and validity queries
// served from it. A campaign is either fully built and queryable or not
// visible at all; once Create returns, nothing in it ever mutates, so
// concurrent reads need no locking.
package campaign

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/merkle"
)

// DefaultMaxRecipients bounds tree construction when the caller does not
// supply a ceiling. Construction is CPU-bound and linear in input size; the
// ceiling makes oversized lists fail fast instead of degrading the process.
const DefaultMaxRecipients = 250_000

// VestingSchedule carries optional vesting parameters for one claim, as unix
// timestamps.
type VestingSchedule struct {
	Start int64 `json:"start"`
	Cliff int64 `json:"cliff"`
	End   int64 `json:"end"`
}

// Bytes returns the deterministic 24-byte big-endian encoding of the
// schedule, or nil when no schedule is set.
func (v *VestingSchedule) Bytes() []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, 24)
	binary.BigEndian.PutUint64(out[0:8], uint64(v.Start))
	binary.BigEndian.PutUint64(out[8:16], uint64(v.Cliff))
	binary.BigEndian.PutUint64(out[16:24], uint64(v.End))
	return out
}

// Recipient is one row of the ingested list. Its index is its position in the
// list, zero-based and stable. Amount is in the token's smallest denomination.
type Recipient struct {
	Address string           `json:"address"`
	Amount  uint64           `json:"amount"`
	Vesting *VestingSchedule `json:"vesting,omitempty"`
}

// Campaign combines a chain selection, the ordered recipient records, and the
// merkle tree built over them. It exclusively owns its tree; the tree has no
// back-reference and is a pure function of the recipient list.
type Campaign struct {
	ID         string
	Chain      chain.Tag
	Recipients []Recipient
	CreatedAt  time.Time

	codec      chain.Codec
	tree       *merkle.Tree
	normalized [][]byte       // canonical address bytes, by recipient index
	byAddress  map[string]int // canonical bytes -> recipient index
}

// CreateOptions tunes campaign creation.
type CreateOptions struct {
	// MaxRecipients caps the input size; 0 means DefaultMaxRecipients.
	MaxRecipients int
}

// Create validates the recipient list, encodes the leaves, and builds the
// tree. It is deterministic and idempotent: the same recipient list and chain
// always produce the same root, so callers can detect whether a campaign's
// true root matches one they previously published.
//
// Address normalization happens first (failing on the first invalid address
// with its index), then duplicate detection over normalized addresses (before
// any hashing), then leaf encoding and tree construction.
func Create(recipients []Recipient, tag chain.Tag, opts CreateOptions) (*Campaign, error) {
	codec, err := chain.FromTag(tag)
	if err != nil {
		return nil, err
	}

	if len(recipients) == 0 {
		return nil, merkle.ErrEmptyTree
	}

	limit := opts.MaxRecipients
	if limit <= 0 {
		limit = DefaultMaxRecipients
	}
	if len(recipients) > limit {
		return nil, fmt.Errorf("%w: %d recipients, limit %d", ErrTooManyRecipients, len(recipients), limit)
	}

	normalized := make([][]byte, len(recipients))
	byAddress := make(map[string]int, len(recipients))
	var total uint64
	for i, r := range recipients {
		addr, err := codec.NormalizeAddress(r.Address)
		if err != nil {
			return nil, fmt.Errorf("recipient %d: %w", i, err)
		}
		if first, dup := byAddress[string(addr)]; dup {
			return nil, &DuplicateAddressError{
				Address: codec.FormatAddress(addr),
				First:   first,
				Second:  i,
			}
		}
		byAddress[string(addr)] = i
		normalized[i] = addr

		if r.Amount > math.MaxUint64-total {
			return nil, fmt.Errorf("recipient %d: %w", i, ErrTotalAmountOverflow)
		}
		total += r.Amount
	}

	leaves := make([][32]byte, len(recipients))
	for i, r := range recipients {
		leaves[i] = chain.EncodeLeaf(codec, uint64(i), normalized[i], r.Amount, r.Vesting.Bytes())
	}

	tree, err := merkle.Build(leaves, codec)
	if err != nil {
		return nil, err
	}

	recs := make([]Recipient, len(recipients))
	copy(recs, recipients)

	return &Campaign{
		ID:         uuid.NewString(),
		Chain:      tag,
		Recipients: recs,
		CreatedAt:  time.Now().UTC(),
		codec:      codec,
		tree:       tree,
		normalized: normalized,
		byAddress:  byAddress,
	}, nil
}

// Restore rebuilds a campaign from persisted fields and verifies that the
// recomputed root equals the stored one. A mismatch means the persisted
// recipient data diverged from the published commitment; serving proofs from
// it would be a security defect, so the load is aborted.
func Restore(id string, tag chain.Tag, recipients []Recipient, createdAt time.Time, wantRoot [32]byte) (*Campaign, error) {
	c, err := Create(recipients, tag, CreateOptions{MaxRecipients: len(recipients)})
	if err != nil {
		return nil, fmt.Errorf("restore campaign %s: %w", id, err)
	}
	if c.tree.Root != wantRoot {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrRootMismatch)
	}
	c.ID = id
	c.CreatedAt = createdAt
	return c, nil
}

// Root returns the tree's root hash.
func (c *Campaign) Root() [32]byte {
	return c.tree.Root
}

// RootHex returns the root as lowercase hex without a 0x prefix, the form
// published on-chain and in API responses.
func (c *Campaign) RootHex() string {
	root := c.tree.Root
	return hex.EncodeToString(root[:])
}

// LeafCount returns the number of leaves, equal to the recipient count.
func (c *Campaign) LeafCount() int {
	return len(c.tree.Leaves)
}

// Leaves returns the ordered leaf hash list. Callers must not mutate it.
func (c *Campaign) Leaves() [][32]byte {
	return c.tree.Leaves
}

// Codec returns the campaign's chain codec.
func (c *Campaign) Codec() chain.Codec {
	return c.codec
}

// TotalAmount sums all recipient amounts. Create rejects lists whose sum
// would wrap, so the result is exact.
func (c *Campaign) TotalAmount() uint64 {
	var total uint64
	for _, r := range c.Recipients {
		total += r.Amount
	}
	return total
}
