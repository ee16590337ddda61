// Package chain provides the chain-specific address and hashing codecs used by
// the merkle engine. All chain-specific behavior (address parsing, display
// formatting, the hash primitive) lives behind the Codec interface so that tree
// construction and proof logic stay chain-agnostic.
package chain

import (
	"errors"
	"fmt"
)

// Tag identifies a supported chain ecosystem. It is persisted with each
// campaign and selects the codec for every later query against it.
type Tag string

const (
	TagEvm    Tag = "evm"
	TagSolana Tag = "solana"
)

func (t Tag) String() string {
	return string(t)
}

var (
	// ErrInvalidAddress is returned when an address string is not well-formed
	// for the chain (unparseable, wrong length, bad alphabet).
	ErrInvalidAddress = errors.New("invalid address")

	// ErrChecksumMismatch is returned when a mixed-case EVM address fails
	// EIP-55 checksum validation.
	ErrChecksumMismatch = errors.New("address checksum mismatch")

	// ErrUnsupportedChain is returned when a tag does not name a known codec.
	ErrUnsupportedChain = errors.New("unsupported chain")
)

// Codec normalizes chain-native address strings into canonical bytes and
// defines the chain's hash primitive. Implementations are stateless and all
// methods are pure functions.
//
// The same hash function is used for leaf hashing and internal pair hashing so
// the whole tree uses one hash family per campaign.
type Codec interface {
	// Tag returns the chain tag this codec serves.
	Tag() Tag

	// NormalizeAddress parses a chain-native address string into its canonical
	// byte form. Comparison and leaf encoding always operate on these bytes,
	// never on the raw string, which makes lookups case- and
	// format-insensitive.
	NormalizeAddress(raw string) ([]byte, error)

	// FormatAddress renders canonical address bytes in the chain's customary
	// display form (EIP-55 hex for EVM, base58 for Solana).
	FormatAddress(addr []byte) string

	// Hash computes the chain's designated 256-bit digest over the
	// concatenation of the given byte slices.
	Hash(data ...[]byte) [32]byte
}

// FromTag returns the codec for a chain tag.
func FromTag(tag Tag) (Codec, error) {
	switch tag {
	case TagEvm:
		return Evm, nil
	case TagSolana:
		return Solana, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, tag)
	}
}
