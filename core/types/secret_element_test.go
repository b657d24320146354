package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gshield/crypto/shield"
)

// countingCipher records calls and delegates to a real cipher.
type countingCipher struct {
	inner              shield.PayloadCipher
	encrypts, decrypts int
}

func newCountingCipher(t *testing.T) *countingCipher {
	t.Helper()
	c, err := shield.NewCipher(shield.AlgorithmAESGCM, shield.Key{})
	require.NoError(t, err)
	return &countingCipher{inner: c}
}

func (c *countingCipher) Encrypt(p []byte, n uint64) ([]byte, error) {
	c.encrypts++
	return c.inner.Encrypt(p, n)
}

func (c *countingCipher) Decrypt(ct []byte, n uint64) ([]byte, error) {
	c.decrypts++
	return c.inner.Decrypt(ct, n)
}

var setNumberInput = common.FromHex("0x3fb5c1cb000000000000000000000000000000000000000000000000000000000000000a")

func TestSecretElementZeroKeyVector(t *testing.T) {
	c := newCountingCipher(t)
	ct, err := EncryptValue(c, setNumberInput, 1)
	require.NoError(t, err)

	got, err := DecryptValue[[]byte](c, ct, 1)
	require.NoError(t, err)
	assert.Equal(t, setNumberInput, got)

	// The sealed payload is the RLP string form of the input.
	raw, err := c.inner.Decrypt(ct, 1)
	require.NoError(t, err)
	want, _ := rlp.EncodeToBytes(setNumberInput)
	assert.Equal(t, want, raw)
}

func TestSecretElementDecryptCachesOnce(t *testing.T) {
	c := newCountingCipher(t)
	src, err := NewSecretElement(c, setNumberInput, true, 9)
	require.NoError(t, err)
	enc, err := src.Encode()
	require.NoError(t, err)

	el, err := DecodeSecretElement[[]byte](enc)
	require.NoError(t, err)
	if _, ok := el.Plaintext(); ok {
		t.Fatal("decoded element must not carry plaintext")
	}

	require.NoError(t, el.Decrypt(c, 9))
	first, ok := el.Plaintext()
	require.True(t, ok)
	assert.True(t, first.ShouldEncrypt)
	assert.Equal(t, setNumberInput, first.Value)

	require.NoError(t, el.Decrypt(c, 9))
	second, _ := el.Plaintext()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.decrypts, "second decrypt must hit the cache")

	// Encoding is unaffected by the cache.
	after, err := el.Encode()
	require.NoError(t, err)
	assert.Equal(t, enc, after)
}

func TestSecretElementDecryptFailureKeepsState(t *testing.T) {
	c := newCountingCipher(t)
	src, err := NewSecretElement(c, []byte("hidden"), true, 3)
	require.NoError(t, err)
	enc, _ := src.Encode()
	el, err := DecodeSecretElement[[]byte](enc)
	require.NoError(t, err)

	err = el.Decrypt(c, 4)
	if !errors.Is(err, shield.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
	_, ok := el.Plaintext()
	assert.False(t, ok)
	assert.Equal(t, src.Ciphertext(), el.Ciphertext())

	require.NoError(t, el.Decrypt(c, 3))
	pv, _ := el.Plaintext()
	assert.Equal(t, []byte("hidden"), pv.Value)
}

func TestSecretElementPlainPath(t *testing.T) {
	c := newCountingCipher(t)
	el, err := NewSecretElement(c, []byte{1, 2, 3}, false, 0)
	require.NoError(t, err)
	assert.Zero(t, c.encrypts, "plain elements must not touch the cipher")

	enc, err := el.Encode()
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x83010203"), enc)
	assert.Equal(t, len(enc), el.EncodedLen())

	dec, err := DecodeSecretElement[[]byte](enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, dec.Ciphertext())
	assert.True(t, el.Equal(dec))

	n, err := NewSecretElement(c, uint64(1024), false, 0)
	require.NoError(t, err)
	enc, err = n.Encode()
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x820400"), enc)

	_, err = NewSecretElement(c, []uint64{1, 2}, false, 0)
	assert.ErrorIs(t, err, ErrUnexpectedList)
}

func TestSecretElementCopiesValue(t *testing.T) {
	c := newCountingCipher(t)
	for _, encrypt := range []bool{false, true} {
		buf := []byte{7, 8, 9}
		el, err := NewSecretElement(c, buf, encrypt, 5)
		require.NoError(t, err)
		enc, err := el.Encode()
		require.NoError(t, err)

		buf[0] = 0
		after, err := el.Encode()
		require.NoError(t, err)
		assert.Equal(t, enc, after, "encrypt=%v", encrypt)
		assert.Equal(t, len(enc), el.EncodedLen())

		pv, _ := el.Plaintext()
		assert.Equal(t, []byte{7, 8, 9}, pv.Value)
		pv.Value[0] = 0
		cpy := el.copy()
		again, _ := cpy.Plaintext()
		assert.Equal(t, []byte{7, 8, 9}, again.Value)
		assert.Equal(t, encrypt, again.ShouldEncrypt)
		assert.True(t, el.Equal(cpy))
	}
}

func TestSecretElementUint(t *testing.T) {
	c := newCountingCipher(t)
	el, err := NewSecretElement(c, uint64(10), true, 77)
	require.NoError(t, err)
	enc, _ := el.Encode()

	dec, err := DecodeSecretElement[uint64](enc)
	require.NoError(t, err)
	require.NoError(t, dec.Decrypt(c, 77))
	pv, ok := dec.Plaintext()
	require.True(t, ok)
	assert.Equal(t, uint64(10), pv.Value)
}

func TestDecodeSecretElementFraming(t *testing.T) {
	_, err := DecodeSecretElement[[]byte](common.FromHex("0x8301020304"))
	assert.ErrorIs(t, err, ErrUnframedSecret)

	_, err = DecodeSecretElement[[]byte](common.FromHex("0xc20102"))
	assert.ErrorIs(t, err, ErrUnexpectedList)

	_, err = DecodeSecretElement[[]byte](common.FromHex("0x850102"))
	assert.ErrorIs(t, err, ErrInputTooShort)

	_, err = DecodeSecretElement[[]byte](nil)
	assert.ErrorIs(t, err, ErrInputTooShort)

	el, err := DecodeSecretElement[[]byte]([]byte{0x05})
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte{0x05}, el.Ciphertext()))
	enc, _ := el.Encode()
	assert.Equal(t, []byte{0x05}, enc)
}
