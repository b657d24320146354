package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gshield/crypto/shield"
)

// PlainValue is the decrypted form of a secret element. ShouldEncrypt is false
// only for values the sender declared as not needing encryption.
type PlainValue[T any] struct {
	ShouldEncrypt bool
	Value         T
}

// SecretElement wraps one confidential transaction field. The ciphertext is
// the canonical wire form and never changes once set. The plaintext is a
// cache filled by Decrypt.
//
// T must RLP-encode to a single string item: byte slices, integers,
// addresses and booleans all qualify.
//
// A SecretElement is not safe for concurrent Decrypt calls.
type SecretElement[T any] struct {
	plaintext  *PlainValue[T]
	ciphertext []byte
}

// NewSecretElement builds an element from a known value. With shouldEncrypt
// set the value is sealed under nonce; otherwise the cipher is not consulted
// and the element carries the value in the clear.
//
// The element keeps no reference to value: later changes to a caller's
// buffer affect neither the wire form nor the cached plaintext.
func NewSecretElement[T any](c shield.PayloadCipher, value T, shouldEncrypt bool, nonce uint64) (*SecretElement[T], error) {
	var (
		ciphertext []byte
		err        error
	)
	if shouldEncrypt {
		ciphertext, err = EncryptValue(c, value, nonce)
	} else {
		ciphertext, err = scalarContent(value)
	}
	if err != nil {
		return nil, err
	}
	cached, err := cloneValue(value)
	if err != nil {
		return nil, err
	}
	return &SecretElement[T]{
		plaintext:  &PlainValue[T]{ShouldEncrypt: shouldEncrypt, Value: cached},
		ciphertext: ciphertext,
	}, nil
}

// DecodeSecretElement captures a single RLP string item as ciphertext. It never
// decrypts.
func DecodeSecretElement[T any](item []byte) (*SecretElement[T], error) {
	kind, content, rest, err := rlp.Split(item)
	if err != nil {
		return nil, wrapRLPError("secret element", err)
	}
	if kind == rlp.List {
		return nil, fmt.Errorf("secret element: %w", ErrUnexpectedList)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnframedSecret, len(rest))
	}
	return &SecretElement[T]{ciphertext: common.CopyBytes(content)}, nil
}

// Decrypt fills the plaintext cache. It is a no-op when the plaintext is
// already known. On failure the element is left untouched.
func (e *SecretElement[T]) Decrypt(c shield.PayloadCipher, nonce uint64) error {
	if e.plaintext != nil {
		return nil
	}
	v, err := DecryptValue[T](c, e.ciphertext, nonce)
	if err != nil {
		return err
	}
	e.plaintext = &PlainValue[T]{ShouldEncrypt: true, Value: v}
	return nil
}

// Plaintext returns a copy of the cached value, if any.
func (e *SecretElement[T]) Plaintext() (PlainValue[T], bool) {
	if e.plaintext == nil {
		return PlainValue[T]{}, false
	}
	pv := *e.plaintext
	if v, err := cloneValue(pv.Value); err == nil {
		pv.Value = v
	}
	return pv, true
}

// setPlaintext fills the cache with a value known to match the ciphertext.
func (e *SecretElement[T]) setPlaintext(value T) {
	if e.plaintext == nil {
		e.plaintext = &PlainValue[T]{ShouldEncrypt: true, Value: value}
	}
}

// Ciphertext returns a copy of the stored wire bytes.
func (e *SecretElement[T]) Ciphertext() []byte {
	return common.CopyBytes(e.ciphertext)
}

// Encode returns the RLP item for the element: the stored wire bytes as a
// single string. For a value carried in the clear those bytes are the
// value's own string content, so the item equals the value's encoding.
func (e *SecretElement[T]) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(e.ciphertext)
}

// EncodedLen returns the size of Encode's output.
func (e *SecretElement[T]) EncodedLen() int {
	return int(rlp.BytesSize(e.ciphertext))
}

// Equal reports whether both elements have the same wire form.
func (e *SecretElement[T]) Equal(other *SecretElement[T]) bool {
	if e == nil || other == nil {
		return e == other
	}
	a, errA := e.Encode()
	b, errB := other.Encode()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func (e *SecretElement[T]) copy() *SecretElement[T] {
	if e == nil {
		return nil
	}
	cpy := &SecretElement[T]{ciphertext: common.CopyBytes(e.ciphertext)}
	if pv, ok := e.Plaintext(); ok {
		cpy.plaintext = &pv
	}
	return cpy
}

// EncryptValue seals the RLP encoding of value under nonce.
func EncryptValue[T any](c shield.PayloadCipher, value T, nonce uint64) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(value)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(enc, nonce)
}

// DecryptValue opens ciphertext and decodes the RLP encoded value.
func DecryptValue[T any](c shield.PayloadCipher, ciphertext []byte, nonce uint64) (T, error) {
	var v T
	plain, err := c.Decrypt(ciphertext, nonce)
	if err != nil {
		return v, err
	}
	if err := rlp.DecodeBytes(plain, &v); err != nil {
		return v, fmt.Errorf("decode secret value: %w", err)
	}
	return v, nil
}

// cloneValue returns a deep copy of value by round-tripping it through RLP.
func cloneValue[T any](value T) (T, error) {
	var out T
	enc, err := rlp.EncodeToBytes(value)
	if err != nil {
		return out, err
	}
	if err := rlp.DecodeBytes(enc, &out); err != nil {
		return out, err
	}
	return out, nil
}

// scalarContent returns the payload of value's RLP string encoding.
func scalarContent[T any](value T) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(value)
	if err != nil {
		return nil, err
	}
	kind, content, _, err := rlp.Split(enc)
	if err != nil {
		return nil, err
	}
	if kind == rlp.List {
		return nil, fmt.Errorf("secret element value: %w", ErrUnexpectedList)
	}
	return common.CopyBytes(content), nil
}
