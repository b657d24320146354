package types

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gshield/params"
)

func encodedTestTx(t testing.TB) []byte {
	t.Helper()
	tx := signTestTx(t, newTestTx(t, testCipher(t), 2, setNumberInput, true), testKey)
	enc, err := tx.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	return enc
}

// listHeader returns the offset of the length byte of the long-form list
// header that follows the type byte.
func listHeader(t *testing.T, enc []byte) int {
	t.Helper()
	require.Equal(t, params.ShieldedTxType, enc[0])
	require.Equal(t, byte(0xf8), enc[1], "test transaction should use a one-byte long list header")
	return 2
}

func TestDecodeBareTypedSkipsLengthCheck(t *testing.T) {
	enc := encodedTestTx(t)
	want, err := DecodeEnvelope(enc)
	require.NoError(t, err)

	// Trailing data after the bare typed form is not inspected.
	got, err := DecodeEnvelope(append(append([]byte{}, enc...), 0xde, 0xad))
	require.NoError(t, err)
	assert.Equal(t, want.Hash(), got.Hash())
}

func TestDecodeEnvelopedStrictLength(t *testing.T) {
	enc := encodedTestTx(t)

	// Outer string holding the typed form plus one stray byte.
	padded, err := rlp.EncodeToBytes(append(append([]byte{}, enc...), 0x00))
	require.NoError(t, err)
	_, err = DecodeEnvelope(padded)
	if !errors.Is(err, ErrUnexpectedLength) {
		t.Fatalf("expected ErrUnexpectedLength, got %v", err)
	}

	exact, err := rlp.EncodeToBytes(enc)
	require.NoError(t, err)
	_, err = DecodeEnvelope(exact)
	require.NoError(t, err)

	// Outer header claiming more bytes than available.
	_, err = DecodeEnvelope(exact[:len(exact)-1])
	assert.ErrorIs(t, err, ErrInputTooShort)
}

func TestDecodeUntypedList(t *testing.T) {
	enc := encodedTestTx(t)
	want, err := DecodeEnvelope(enc)
	require.NoError(t, err)

	got, err := DecodeEnvelope(enc[1:])
	require.NoError(t, err)
	assert.Equal(t, want.Hash(), got.Hash())

	_, err = DecodeEnvelope(append(append([]byte{}, enc[1:]...), 0x01))
	assert.ErrorIs(t, err, ErrUnexpectedLength)
}

func TestDecodeListLengthMismatch(t *testing.T) {
	enc := encodedTestTx(t)
	off := listHeader(t, enc)
	declared := uint64(enc[off])

	short := append([]byte{}, enc...)
	short[off]--
	_, err := DecodeEnvelope(short)
	var mismatch *ListLengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ListLengthMismatchError, got %v", err)
	}
	assert.Equal(t, declared-1, mismatch.Expected)
	assert.Equal(t, declared, mismatch.Got)

	long := append(append([]byte{}, enc...), 0x80)
	long[off]++
	_, err = DecodeEnvelope(long)
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	assert.Equal(t, declared+1, mismatch.Expected)
	assert.Equal(t, declared, mismatch.Got)

	beyond := append([]byte{}, enc...)
	beyond[off]++
	_, err = DecodeEnvelope(beyond)
	assert.ErrorIs(t, err, ErrInputTooShort)
}

func TestDecodeFramingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"empty", nil, ErrInputTooShort},
		{"string after type", []byte{params.ShieldedTxType, 0x83, 1, 2, 3}, ErrUnexpectedString},
		{"unknown type", []byte{0x02, 0xc0}, ErrTxTypeNotSupported},
		{"unknown enveloped type", []byte{0x82, 0x02, 0xc0}, ErrTxTypeNotSupported},
		{"empty envelope", []byte{0x80}, ErrInputTooShort},
		{"truncated list", []byte{params.ShieldedTxType, 0xc5, 0x01}, ErrInputTooShort},
		{"empty list", []byte{params.ShieldedTxType, 0xc0}, ErrInputTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestDecodeRejectsNonParityV(t *testing.T) {
	enc := encodedTestTx(t)
	tx, err := DecodeEnvelope(enc)
	require.NoError(t, err)

	// Rebuild the list with v=27.
	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	require.NoError(t, tx.inner.encodeFields(w, tx.inner.ChainID))
	w.WriteUint64(27)
	w.WriteUint256(&tx.sig.R)
	w.WriteUint256(&tx.sig.S)
	w.ListEnd(l)
	bad := w.AppendToBytes([]byte{params.ShieldedTxType})
	w.Flush()

	_, err = DecodeEnvelope(bad)
	assert.ErrorIs(t, err, ErrInvalidSig)
}

func FuzzDecodeEnvelope(f *testing.F) {
	f.Add(encodedTestTx(f))
	f.Add([]byte{params.ShieldedTxType, 0xc0})
	f.Add([]byte{0x82, params.ShieldedTxType, 0xc0})
	f.Fuzz(func(t *testing.T, data []byte) {
		tx, err := DecodeEnvelope(data)
		if err != nil {
			return
		}
		enc, err := tx.MarshalBinary()
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		again, err := DecodeEnvelope(enc)
		if err != nil {
			t.Fatalf("decode of re-encoding failed: %v", err)
		}
		if again.Hash() != tx.Hash() {
			t.Fatalf("hash changed across re-encoding")
		}
	})
}
