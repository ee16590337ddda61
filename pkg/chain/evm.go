package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Evm is the codec for EVM-style chains: 20-byte addresses, usually presented
// hex-encoded with an optional EIP-55 mixed-case checksum, keccak256 hashing.
var Evm Codec = evmCodec{}

type evmCodec struct{}

func (evmCodec) Tag() Tag {
	return TagEvm
}

// NormalizeAddress validates hex-ness and length and, when the address carries
// a mixed-case checksum, validates it against EIP-55. All-lowercase and
// all-uppercase forms are accepted without a checksum check. The canonical
// form is the 20 raw address bytes.
func (evmCodec) NormalizeAddress(raw string) ([]byte, error) {
	if !common.IsHexAddress(raw) {
		return nil, fmt.Errorf("%w: %q is not a 20-byte hex address", ErrInvalidAddress, raw)
	}

	addr := common.HexToAddress(raw)

	hexPart := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if hexPart != strings.ToLower(hexPart) && hexPart != strings.ToUpper(hexPart) {
		// Mixed case means the writer intended an EIP-55 checksum.
		if "0x"+hexPart != addr.Hex() {
			return nil, fmt.Errorf("%w: %q", ErrChecksumMismatch, raw)
		}
	}

	return addr.Bytes(), nil
}

func (evmCodec) FormatAddress(addr []byte) string {
	return common.BytesToAddress(addr).Hex()
}

func (evmCodec) Hash(data ...[]byte) [32]byte {
	return [32]byte(crypto.Keccak256(data...))
}
