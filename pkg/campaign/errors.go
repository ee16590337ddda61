package campaign

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyRecipients is returned when the recipient list exceeds the
	// configured input-size ceiling.
	ErrTooManyRecipients = errors.New("too many recipients")

	// ErrTotalAmountOverflow is returned when the summed recipient amounts
	// exceed the uint64 range. The create response reports the total, so a
	// wrapped sum must never be served.
	ErrTotalAmountOverflow = errors.New("total amount overflows uint64")

	// ErrRootMismatch reports an integrity violation: a rebuilt tree's root
	// disagrees with the stored root. Operations abort rather than serve a
	// silently wrong proof.
	ErrRootMismatch = errors.New("recomputed merkle root does not match stored root")
)

// DuplicateAddressError reports two recipients sharing one normalized
// address. First and Second are the colliding zero-based indices.
type DuplicateAddressError struct {
	Address string
	First   int
	Second  int
}

func (e *DuplicateAddressError) Error() string {
	return fmt.Sprintf("duplicate address %s at indices %d and %d", e.Address, e.First, e.Second)
}
