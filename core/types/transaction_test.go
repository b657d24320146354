package types

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gshield/crypto/shield"
	"github.com/tos-network/gshield/params"
)

var (
	testKey, _ = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	testAddr   = crypto.PubkeyToAddress(testKey.PublicKey)
	testTo     = common.HexToAddress("0xd3e8763675e4c425df46cc3b5c0f6cbdac396046")
)

func testCipher(t testing.TB) *shield.Cipher {
	t.Helper()
	c, err := shield.NewCipher(shield.AlgorithmAESGCM, shield.Key{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestTx(t testing.TB, c shield.PayloadCipher, nonce uint64, input []byte, encrypt bool) *ShieldedTx {
	t.Helper()
	el, err := NewSecretElement(c, input, encrypt, nonce)
	if err != nil {
		t.Fatal(err)
	}
	to := testTo
	return &ShieldedTx{
		ChainID:  4,
		Nonce:    nonce,
		GasPrice: big.NewInt(params.GWei),
		Gas:      100000,
		To:       &to,
		Value:    uint256.NewInt(1000000000000000),
		Input:    el,
	}
}

func signTestTx(t testing.TB, inner *ShieldedTx, key *ecdsa.PrivateKey) *Transaction {
	t.Helper()
	tx, err := SignNewTx(key, NewShieldedSigner(inner.ChainID), inner)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tx
}

func TestShieldedFieldsEncodingVector(t *testing.T) {
	inner := newTestTx(t, testCipher(t), 2, []byte{1, 2, 3}, false)
	payload, err := inner.signingPayload(inner.ChainID)
	require.NoError(t, err)
	require.Equal(t, params.ShieldedTxType, payload[0])

	fields, rest, err := rlp.SplitList(payload[1:])
	require.NoError(t, err)
	require.Empty(t, rest)
	want := common.FromHex("0x0402843b9aca00830186a094d3e8763675e4c425df46cc3b5c0f6cbdac39604687038d7ea4c6800083010203")
	if !bytes.Equal(fields, want) {
		t.Fatalf("fields mismatch:\nhave %x\nwant %x", fields, want)
	}

	n, err := NewShieldedSigner(4).PayloadLen(NewTx(inner))
	require.NoError(t, err)
	assert.Equal(t, 1+1+len(want), n)
}

func TestSignAndRecover(t *testing.T) {
	c := testCipher(t)
	tx := signTestTx(t, newTestTx(t, c, 2, setNumberInput, true), testKey)

	signer := NewShieldedSigner(4)
	from, err := Sender(signer, tx)
	require.NoError(t, err)
	assert.Equal(t, testAddr, from)

	// Cached result.
	from, err = Sender(signer, tx)
	require.NoError(t, err)
	assert.Equal(t, testAddr, from)

	_, err = Sender(NewShieldedSigner(5), tx)
	if !errors.Is(err, ErrInvalidChainId) {
		t.Fatalf("expected ErrInvalidChainId, got %v", err)
	}

	v, r, s := tx.RawSignatureValues()
	assert.True(t, v.Uint64() <= 1)
	assert.True(t, r.Sign() > 0 && s.Sign() > 0)
}

func TestSignFillsChainID(t *testing.T) {
	inner := newTestTx(t, testCipher(t), 0, nil, false)
	inner.ChainID = 0
	tx, err := SignNewTx(testKey, LatestSigner(params.TestChainConfig), inner)
	require.NoError(t, err)
	assert.Equal(t, params.TestChainConfig.ChainID, tx.ChainId())

	inner.ChainID = 99
	_, err = SignNewTx(testKey, LatestSigner(params.TestChainConfig), inner)
	assert.ErrorIs(t, err, ErrInvalidChainId)

	inner.ChainID = 0
	inner.GasPrice = big.NewInt(-1)
	_, err = SignNewTx(testKey, LatestSigner(params.TestChainConfig), inner)
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
}

func TestPlainInputOwnsItsBytes(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	inner := newTestTx(t, testCipher(t), 3, buf, false)
	tx := signTestTx(t, inner, testKey)
	signed := tx.Hash()

	// Reuse the caller's buffer after signing.
	buf[0] = 0xff
	pv, ok := tx.Input().Plaintext()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, pv.Value)

	// Mutating a returned plaintext must not reach the transaction either.
	pv.Value[1] = 0xff

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	dec, err := DecodeEnvelope(enc)
	require.NoError(t, err)
	assert.Equal(t, signed, dec.Hash())
	assert.Equal(t, []byte{1, 2, 3, 4}, dec.Input().Ciphertext())

	from, err := Sender(NewShieldedSigner(4), dec)
	require.NoError(t, err)
	assert.Equal(t, testAddr, from)
}

func TestSignRejectsUnencodableBody(t *testing.T) {
	inner := newTestTx(t, testCipher(t), 0, nil, false)
	inner.GasPrice = new(big.Int).Lsh(big.NewInt(1), 130)
	tx := NewTx(inner)

	_, err := SignTx(tx, NewShieldedSigner(4), testKey)
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
	_, err = NewShieldedSigner(4).PayloadLen(tx)
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
	assert.Equal(t, common.Hash{}, tx.Hash())
	_, err = tx.MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	c := testCipher(t)
	tx := signTestTx(t, newTestTx(t, c, 2, setNumberInput, true), testKey)

	for _, withHeader := range []bool{false, true} {
		enc, err := EncodeEnvelope(tx, withHeader)
		require.NoError(t, err)
		n, err := EnvelopeLen(tx, withHeader)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)

		dec, err := DecodeEnvelope(enc)
		if err != nil {
			t.Fatalf("withHeader=%v: decode: %v", withHeader, err)
		}
		assert.Equal(t, tx.Hash(), dec.Hash())
		assert.Equal(t, tx.Nonce(), dec.Nonce())
		assert.Equal(t, tx.To(), dec.To())
		assert.Equal(t, tx.Value(), dec.Value())
		assert.Zero(t, tx.GasPrice().Cmp(dec.GasPrice()))
		assert.True(t, tx.Input().Equal(dec.Input()))

		input, err := dec.DecryptInput(c)
		require.NoError(t, err)
		assert.Equal(t, setNumberInput, input)

		from, err := Sender(NewShieldedSigner(4), dec)
		require.NoError(t, err)
		assert.Equal(t, testAddr, from)
	}
	enc, _ := tx.MarshalBinary()
	assert.Equal(t, crypto.Keccak256Hash(enc), tx.Hash())
	assert.Equal(t, uint64(len(enc)), tx.Size())
}

func TestEnvelopeRoundTripRandom(t *testing.T) {
	c := testCipher(t)
	f := fuzz.New().NilChance(0)
	for i := 0; i < 64; i++ {
		var (
			nonce, gas, price uint64
			input             []byte
			value             [32]byte
			create, encrypt   bool
		)
		f.Fuzz(&nonce)
		f.Fuzz(&gas)
		f.Fuzz(&price)
		f.Fuzz(&input)
		f.Fuzz(&value)
		f.Fuzz(&create)
		f.Fuzz(&encrypt)

		el, err := NewSecretElement(c, input, encrypt, nonce)
		require.NoError(t, err)
		inner := &ShieldedTx{
			ChainID:  params.TestChainConfig.ChainID,
			Nonce:    nonce,
			GasPrice: new(big.Int).SetUint64(price),
			Gas:      gas,
			Value:    new(uint256.Int).SetBytes32(value[:]),
			Input:    el,
		}
		if !create {
			inner.To = &testTo
		}
		tx := signTestTx(t, inner, testKey)
		enc, err := tx.MarshalBinary()
		require.NoError(t, err)

		var dec Transaction
		if err := dec.UnmarshalBinary(enc); err != nil {
			t.Fatalf("iteration %d: %v\n%s", i, err, spew.Sdump(inner))
		}
		if dec.Hash() != tx.Hash() {
			t.Fatalf("iteration %d: hash mismatch\n%s", i, spew.Sdump(inner))
		}
		reenc, err := dec.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, enc, reenc)
		if create {
			assert.Nil(t, dec.To())
		}
		if encrypt {
			got, err := dec.DecryptInput(c)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(input, got))
		}
	}
}

func TestTransactionRLPEmbedding(t *testing.T) {
	c := testCipher(t)
	txs := Transactions{
		signTestTx(t, newTestTx(t, c, 1, []byte("first"), true), testKey),
		signTestTx(t, newTestTx(t, c, 2, []byte("second"), false), testKey),
	}
	enc, err := rlp.EncodeToBytes(txs)
	require.NoError(t, err)

	var dec Transactions
	require.NoError(t, rlp.DecodeBytes(enc, &dec))
	require.Equal(t, txs.Len(), dec.Len())
	for i := range txs {
		assert.Equal(t, txs[i].Hash(), dec[i].Hash())
		var buf bytes.Buffer
		require.NoError(t, dec.EncodeIndex(i, &buf))
		want, _ := txs[i].MarshalBinary()
		assert.Equal(t, want, buf.Bytes())
	}
}

func TestSignatureNormalization(t *testing.T) {
	tests := []struct {
		v    uint64
		want byte
		err  bool
	}{
		{0, 0, false}, {1, 1, false}, {27, 0, false}, {28, 1, false},
		{37, 0, false}, {38, 1, false}, {2*5124 + 35, 0, false}, {2*5124 + 36, 1, false},
		{2, 0, true}, {29, 0, true}, {34, 0, true},
	}
	for _, tt := range tests {
		got, err := NormalizeV(tt.v)
		if tt.err {
			assert.ErrorIs(t, err, ErrInvalidSig, "v=%d", tt.v)
			continue
		}
		require.NoError(t, err, "v=%d", tt.v)
		assert.Equal(t, tt.want, got, "v=%d", tt.v)
	}

	sig := make([]byte, 65)
	sig[31], sig[63], sig[64] = 1, 2, 28
	parsed, err := SignatureFromBytes(sig)
	require.NoError(t, err)
	assert.Equal(t, byte(1), parsed.V)
	sig[64] = 1
	assert.Equal(t, sig, parsed.Bytes())

	_, err = SignatureFromBytes(sig[:64])
	assert.ErrorIs(t, err, ErrInvalidSig)
}
