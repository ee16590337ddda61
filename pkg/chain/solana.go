package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// solanaAddressLen is the byte width of an ed25519 public key.
const solanaAddressLen = 32

// Solana is the codec for Solana-style chains: base58-encoded 32-byte public
// keys. Hashing stays keccak256 so trees share one format across chains; the
// differing address width is disambiguated by the leaf encoding's length
// prefix.
var Solana Codec = solanaCodec{}

type solanaCodec struct{}

func (solanaCodec) Tag() Tag {
	return TagSolana
}

// NormalizeAddress base58-decodes the address and validates that the decoded
// public key is exactly 32 bytes.
func (solanaCodec) NormalizeAddress(raw string) ([]byte, error) {
	decoded, err := base58.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not valid base58: %v", ErrInvalidAddress, raw, err)
	}
	if len(decoded) != solanaAddressLen {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidAddress, raw, len(decoded), solanaAddressLen)
	}
	return decoded, nil
}

func (solanaCodec) FormatAddress(addr []byte) string {
	return base58.Encode(addr)
}

func (solanaCodec) Hash(data ...[]byte) [32]byte {
	return [32]byte(crypto.Keccak256(data...))
}
