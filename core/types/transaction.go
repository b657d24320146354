package types

import (
	"errors"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/crypto/shield"
	"github.com/tos-network/gshield/params"
)

var errEmptyTypedTx = errors.New("empty typed transaction bytes")

// Transaction is a shielded transaction, signed or not. Its fields are
// immutable apart from the input's plaintext cache.
type Transaction struct {
	inner  *ShieldedTx
	sig    Signature
	signed bool

	// caches
	hash atomic.Value
	size atomic.Value
	from atomic.Value
}

// NewTx creates a new unsigned transaction from a copy of inner.
func NewTx(inner *ShieldedTx) *Transaction {
	return &Transaction{inner: inner.copy()}
}

// newSignedTx attaches sig to inner and computes the transaction hash from
// the resulting encoding.
func newSignedTx(inner *ShieldedTx, sig Signature) (*Transaction, error) {
	tx := &Transaction{inner: inner, sig: sig, signed: true}
	enc, err := tx.encodeTyped()
	if err != nil {
		return nil, err
	}
	tx.hash.Store(keccakHash(enc))
	tx.size.Store(uint64(len(enc)))
	return tx, nil
}

// Type returns the transaction type.
func (tx *Transaction) Type() uint8 { return params.ShieldedTxType }

// ChainId returns the chain ID of the transaction.
func (tx *Transaction) ChainId() uint64 { return tx.inner.ChainID }

// Nonce returns the sender account nonce of the transaction.
func (tx *Transaction) Nonce() uint64 { return tx.inner.Nonce }

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() uint64 { return tx.inner.Gas }

// GasPrice returns the gas price of the transaction.
func (tx *Transaction) GasPrice() *big.Int { return new(big.Int).Set(tx.inner.GasPrice) }

// Value returns the ether amount of the transaction.
func (tx *Transaction) Value() *uint256.Int { return new(uint256.Int).Set(tx.inner.Value) }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *Transaction) To() *common.Address { return copyAddressPtr(tx.inner.To) }

// Input returns the confidential call input. Decrypting it fills the
// element's cache in place.
func (tx *Transaction) Input() *SecretElement[[]byte] { return tx.inner.Input }

// Inner returns a copy of the unsigned transaction body.
func (tx *Transaction) Inner() *ShieldedTx { return tx.inner.copy() }

// DecryptInput decrypts the call input under the transaction nonce and
// returns the plaintext.
func (tx *Transaction) DecryptInput(c shield.PayloadCipher) ([]byte, error) {
	if err := tx.inner.Input.Decrypt(c, tx.inner.Nonce); err != nil {
		return nil, err
	}
	pv, _ := tx.inner.Input.Plaintext()
	return common.CopyBytes(pv.Value), nil
}

// CacheInput fills the input's plaintext cache with a value obtained from an
// earlier DecryptInput on a transaction with the same hash. It does nothing
// when the input is already known.
func (tx *Transaction) CacheInput(input []byte) {
	tx.inner.Input.setPlaintext(common.CopyBytes(input))
}

// Signed reports whether the transaction carries a signature.
func (tx *Transaction) Signed() bool { return tx.signed }

// RawSignatureValues returns the V, R, S signature values of the transaction.
// The return values should not be modified by the caller.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.sig.Values()
}

// Signature returns the parity form signature.
func (tx *Transaction) Signature() Signature { return tx.sig }

// Hash returns the transaction hash: keccak256 over the type byte and the
// signed fields list. A body that cannot be encoded has no hash; the zero
// hash is returned and nothing is cached.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	enc, err := tx.encodeTyped()
	if err != nil {
		log.Error("Failed to encode shielded transaction", "err", err)
		return common.Hash{}
	}
	h := keccakHash(enc)
	tx.hash.Store(h)
	return h
}

// Size returns the encoded size of the transaction without outer header.
func (tx *Transaction) Size() uint64 {
	if size := tx.size.Load(); size != nil {
		return size.(uint64)
	}
	n, err := EnvelopeLen(tx, false)
	if err != nil {
		return 0
	}
	tx.size.Store(uint64(n))
	return uint64(n)
}

// WithSignature returns a new transaction with the given signature.
// This signature needs to be in the [R || S || V] format where V is 0 or 1.
func (tx *Transaction) WithSignature(signer Signer, sig []byte) (*Transaction, error) {
	if err := tx.inner.validate(); err != nil {
		return nil, err
	}
	parsed, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy := tx.inner.copy()
	cpy.ChainID = signer.ChainID()
	return newSignedTx(cpy, parsed)
}

// MarshalBinary returns the canonical encoding of the transaction without
// outer string header.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return EncodeEnvelope(tx, false)
}

// UnmarshalBinary decodes the canonical encoding of a transaction.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return errEmptyTypedTx
	}
	dec, err := DecodeEnvelope(b)
	if err != nil {
		return err
	}
	tx.setDecoded(dec)
	return nil
}

// EncodeRLP implements rlp.Encoder. The transaction is wrapped in a string
// header so it can be embedded in an enclosing list.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	enc, err := EncodeEnvelope(tx, true)
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	raw, err := s.Raw()
	if err != nil {
		return err
	}
	dec, err := DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	tx.setDecoded(dec)
	return nil
}

func (tx *Transaction) setDecoded(dec *Transaction) {
	tx.inner, tx.sig, tx.signed = dec.inner, dec.sig, dec.signed
	tx.hash.Store(dec.Hash())
	tx.size.Store(dec.Size())
}

// Transactions is a list of transactions.
type Transactions []*Transaction

// Len returns the length of s.
func (s Transactions) Len() int { return len(s) }

// EncodeIndex encodes the i'th transaction to w.
func (s Transactions) EncodeIndex(i int, w io.Writer) error {
	enc, err := s[i].MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}
