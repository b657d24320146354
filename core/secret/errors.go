package secret

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParsePreimage indicates a preimage that does not match its declared
	// type.
	ErrParsePreimage = errors.New("secret: cannot parse preimage")

	// ErrCommitmentCalculation indicates a commitment window outside the call
	// input.
	ErrCommitmentCalculation = errors.New("secret: commitment window out of range")

	// ErrInvalidCommitment indicates at least one commitment that does not
	// match its preimage.
	ErrInvalidCommitment = errors.New("secret: invalid commitment")
)

// InvalidCommitmentError lists every mismatching entry of a batch.
type InvalidCommitmentError struct {
	Indices []int // positions in the secret data list
	errs    error
}

func (e *InvalidCommitmentError) Error() string {
	idx := make([]string, len(e.Indices))
	for i, n := range e.Indices {
		idx[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("%v: entries [%s]", ErrInvalidCommitment, strings.Join(idx, ", "))
}

func (e *InvalidCommitmentError) Is(target error) bool { return target == ErrInvalidCommitment }

func (e *InvalidCommitmentError) Unwrap() error { return e.errs }
