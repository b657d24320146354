package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gshield/params"
)

// encodeTyped returns type || list(fields || v, r, s).
func (tx *Transaction) encodeTyped() ([]byte, error) {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	l := w.List()
	if err := tx.inner.encodeFields(w, tx.inner.ChainID); err != nil {
		return nil, err
	}
	tx.sig.encodeRLP(w)
	w.ListEnd(l)
	return w.AppendToBytes([]byte{params.ShieldedTxType}), nil
}

// EncodeEnvelope returns the typed encoding of tx. With withHeader set the
// result is wrapped in an RLP string header, the form used when a
// transaction is embedded in an enclosing list.
func EncodeEnvelope(tx *Transaction, withHeader bool) ([]byte, error) {
	enc, err := tx.encodeTyped()
	if err != nil {
		return nil, err
	}
	if !withHeader {
		return enc, nil
	}
	return rlp.EncodeToBytes(enc)
}

// EnvelopeLen returns the size of EncodeEnvelope's output.
func EnvelopeLen(tx *Transaction, withHeader bool) (int, error) {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	if err := tx.inner.encodeFields(w, tx.inner.ChainID); err != nil {
		return 0, err
	}
	tx.sig.encodeRLP(w)
	payload := uint64(len(w.ToBytes()))
	size := 1 + rlp.ListSize(payload)
	if withHeader {
		size = rlp.ListSize(size)
	}
	return int(size), nil
}

// DecodeEnvelope parses a signed shielded transaction. Three framings are
// accepted:
//
//   - the bare typed form: type byte followed by the fields list,
//   - the enveloped form: an RLP string holding the bare typed form,
//   - an untyped fields list.
//
// For the enveloped form and the untyped list the bytes consumed must match
// the outer header exactly. The bare typed form starts with a single-byte
// string, so that check is skipped and trailing data is not inspected.
// The hash is always recomputed from the parsed fields.
func DecodeEnvelope(b []byte) (*Transaction, error) {
	if len(b) == 0 {
		return nil, ErrInputTooShort
	}
	switch {
	case b[0] == params.ShieldedTxType:
		tx, _, err := decodeSignedFields(b[1:])
		return tx, err

	case b[0] < 0x80:
		return nil, fmt.Errorf("%w: type %#x", ErrTxTypeNotSupported, b[0])

	case b[0] < 0xC0:
		_, content, _, err := rlp.Split(b)
		if err != nil {
			return nil, wrapRLPError("envelope", err)
		}
		if len(content) == 0 {
			return nil, ErrInputTooShort
		}
		if content[0] != params.ShieldedTxType {
			return nil, fmt.Errorf("%w: type %#x", ErrTxTypeNotSupported, content[0])
		}
		tx, consumed, err := decodeSignedFields(content[1:])
		if err != nil {
			return nil, err
		}
		if 1+consumed != len(content) {
			return nil, fmt.Errorf("%w: header declares %d bytes, consumed %d", ErrUnexpectedLength, len(content), 1+consumed)
		}
		return tx, nil

	default:
		tx, consumed, err := decodeSignedFields(b)
		if err != nil {
			return nil, err
		}
		if consumed != len(b) {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnexpectedLength, len(b)-consumed)
		}
		return tx, nil
	}
}

// decodeSignedFields reads list(fields || v, r, s) from the head of b and
// returns the number of bytes consumed. The fields are read from the whole
// remainder of b, not from the declared list payload, so a header that lies
// about its size is reported as a length mismatch.
func decodeSignedFields(b []byte) (*Transaction, int, error) {
	kind, content, rest, err := rlp.Split(b)
	if err != nil {
		return nil, 0, wrapRLPError("", err)
	}
	if kind != rlp.List {
		return nil, 0, ErrUnexpectedString
	}
	headerLen := len(b) - len(content) - len(rest)
	body := b[headerLen:]

	inner, rest, err := decodeShieldedFields(body)
	if err != nil {
		return nil, 0, err
	}
	sig, rest, err := decodeSignature(rest)
	if err != nil {
		return nil, 0, err
	}
	if got := len(body) - len(rest); got != len(content) {
		return nil, 0, &ListLengthMismatchError{Expected: uint64(len(content)), Got: uint64(got)}
	}
	tx, err := newSignedTx(inner, sig)
	if err != nil {
		return nil, 0, err
	}
	return tx, headerLen + len(content), nil
}
