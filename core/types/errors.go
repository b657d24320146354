package types

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

var (
	// ErrInputTooShort is returned when a header declares more bytes than the
	// input holds.
	ErrInputTooShort = errors.New("rlp: input too short")

	// ErrUnexpectedString is returned when a list was required but a string
	// header was found.
	ErrUnexpectedString = errors.New("rlp: unexpected string")

	// ErrUnexpectedList is returned when a string was required but a list
	// header was found.
	ErrUnexpectedList = errors.New("rlp: unexpected list")

	// ErrUnexpectedLength is returned when the bytes consumed by an enveloped
	// transaction differ from the length declared by its outer header.
	ErrUnexpectedLength = errors.New("rlp: unexpected length")

	// ErrTxTypeNotSupported is returned if a transaction is not supported in the
	// current network configuration.
	ErrTxTypeNotSupported = errors.New("transaction type not supported")

	ErrInvalidSig      = errors.New("invalid transaction v, r, s values")
	ErrInvalidChainId  = errors.New("invalid chain id for signer")
	ErrInvalidGasPrice = errors.New("invalid gas price")

	// ErrUnframedSecret is returned when a secret element is decoded from a
	// buffer that holds more than a single RLP item.
	ErrUnframedSecret = errors.New("secret element is not framed as a single item")

	// ErrPrivateComparison is returned when a private storage value is compared
	// against a raw word.
	ErrPrivateComparison = errors.New("cannot compare private storage value to raw word")

	// ErrInvalidFlaggedStorage is returned for malformed flagged storage
	// encodings.
	ErrInvalidFlaggedStorage = errors.New("invalid flagged storage encoding")
)

// ListLengthMismatchError reports that the fields of a signed transaction did
// not consume exactly the payload declared by its list header.
type ListLengthMismatchError struct {
	Expected uint64
	Got      uint64
}

func (e *ListLengthMismatchError) Error() string {
	return fmt.Sprintf("rlp: list length mismatch: expected %d, got %d", e.Expected, e.Got)
}

// wrapRLPError maps the errors of the rlp package onto the codec's error
// kinds where they overlap.
func wrapRLPError(field string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rlp.ErrValueTooLarge), errors.Is(err, io.ErrUnexpectedEOF):
		err = ErrInputTooShort
	case errors.Is(err, rlp.ErrExpectedString):
		err = ErrUnexpectedList
	case errors.Is(err, rlp.ErrExpectedList):
		err = ErrUnexpectedString
	}
	if field == "" {
		return err
	}
	return fmt.Errorf("%s: %w", field, err)
}
