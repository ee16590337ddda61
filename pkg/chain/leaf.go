package chain

import "encoding/binary"

// EncodeLeaf computes the leaf digest committing to one recipient's claim data
// and position. The packed encoding is:
//
//	index   : 8 bytes big-endian
//	address : 1-byte length prefix || canonical address bytes
//	amount  : 8 bytes big-endian
//	vesting : 2-byte big-endian length prefix || vesting bytes
//
// The address length prefix keeps encodings unambiguous between chains with
// different address widths (20 bytes for EVM, 32 for Solana), and the vesting
// length prefix prevents boundary ambiguity when vesting data is absent.
// Including the index makes two recipients with identical (address, amount)
// but different positions hash to distinct leaves.
func EncodeLeaf(c Codec, index uint64, addr []byte, amount uint64, vesting []byte) [32]byte {
	packed := make([]byte, 0, 8+1+len(addr)+8+2+len(vesting))

	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	packed = append(packed, idx[:]...)

	packed = append(packed, byte(len(addr)))
	packed = append(packed, addr...)

	var amt [8]byte
	binary.BigEndian.PutUint64(amt[:], amount)
	packed = append(packed, amt[:]...)

	var vlen [2]byte
	binary.BigEndian.PutUint16(vlen[:], uint16(len(vesting)))
	packed = append(packed, vlen[:]...)
	packed = append(packed, vesting...)

	return c.Hash(packed)
}
