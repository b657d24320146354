package types

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gshield/params"
)

// sigCache is used to cache the derived sender and contains
// the signer used to derive it.
type sigCache struct {
	signer Signer
	from   common.Address
}

// LatestSigner returns the signer for the given chain configuration.
func LatestSigner(config *params.ChainConfig) Signer {
	return NewShieldedSigner(config.ChainID)
}

// SignTx signs the transaction using the given signer and private key. A body
// that cannot be encoded is rejected before anything is signed.
func SignTx(tx *Transaction, s Signer, prv *ecdsa.PrivateKey) (*Transaction, error) {
	if _, err := s.PayloadLen(tx); err != nil {
		return nil, err
	}
	h := s.Hash(tx)
	sig, err := crypto.Sign(h[:], prv)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(s, sig)
}

// SignNewTx creates a transaction and signs it.
func SignNewTx(prv *ecdsa.PrivateKey, s Signer, inner *ShieldedTx) (*Transaction, error) {
	return SignTx(NewTx(inner), s, prv)
}

// MustSignNewTx creates a transaction and signs it.
// This panics if the transaction cannot be signed.
func MustSignNewTx(prv *ecdsa.PrivateKey, s Signer, inner *ShieldedTx) *Transaction {
	tx, err := SignNewTx(prv, s, inner)
	if err != nil {
		panic(err)
	}
	return tx
}

// Sender returns the address derived from the signature (V, R, S) using secp256k1
// elliptic curve and an error if it failed deriving or upon an incorrect
// signature.
//
// Sender may cache the address, allowing it to be used regardless of
// signing method. The cache is invalidated if the cached signer does
// not match the signer used in the current call.
func Sender(signer Signer, tx *Transaction) (common.Address, error) {
	if sc := tx.from.Load(); sc != nil {
		sigCache := sc.(sigCache)
		if sigCache.signer.Equal(signer) {
			return sigCache.from, nil
		}
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.from.Store(sigCache{signer: signer, from: addr})
	return addr, nil
}

// Signer encapsulates transaction signature handling. Signers don't actually
// sign, they validate and process signatures.
type Signer interface {
	// Sender returns the sender address of the transaction.
	Sender(tx *Transaction) (common.Address, error)

	// SignatureValues parses a 65-byte signature into parity form.
	SignatureValues(tx *Transaction, sig []byte) (Signature, error)
	ChainID() uint64

	// Hash returns 'signature hash', i.e. the transaction hash that is signed by the
	// private key. This hash does not uniquely identify the transaction.
	Hash(tx *Transaction) common.Hash

	// PayloadLen returns the size of the preimage hashed by Hash.
	PayloadLen(tx *Transaction) (int, error)

	// Equal returns true if the given signer is the same as the receiver.
	Equal(Signer) bool
}

type shieldedSigner struct{ chainID uint64 }

// NewShieldedSigner returns a signer for shielded transactions on the given
// chain.
func NewShieldedSigner(chainID uint64) Signer {
	return shieldedSigner{chainID: chainID}
}

func (s shieldedSigner) ChainID() uint64 { return s.chainID }

func (s shieldedSigner) Equal(s2 Signer) bool {
	x, ok := s2.(shieldedSigner)
	return ok && x.chainID == s.chainID
}

func (s shieldedSigner) Sender(tx *Transaction) (common.Address, error) {
	if !tx.Signed() {
		return common.Address{}, ErrInvalidSig
	}
	if tx.ChainId() != s.chainID {
		return common.Address{}, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, tx.ChainId(), s.chainID)
	}
	return recoverPlain(s.Hash(tx), tx.sig)
}

func (s shieldedSigner) SignatureValues(tx *Transaction, sig []byte) (Signature, error) {
	if tx.ChainId() != 0 && tx.ChainId() != s.chainID {
		return Signature{}, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, tx.ChainId(), s.chainID)
	}
	return SignatureFromBytes(sig)
}

// Hash returns the hash to be signed by the sender.
// It does not uniquely identify the transaction. The zero hash is returned
// for a body that cannot be encoded; PayloadLen reports the error.
func (s shieldedSigner) Hash(tx *Transaction) common.Hash {
	enc, err := tx.inner.signingPayload(s.chainID)
	if err != nil {
		log.Error("Failed to encode shielded signing payload", "err", err)
		return common.Hash{}
	}
	return keccakHash(enc)
}

func (s shieldedSigner) PayloadLen(tx *Transaction) (int, error) {
	return tx.inner.payloadLenForSignature(s.chainID)
}

func recoverPlain(sighash common.Hash, sig Signature) (common.Address, error) {
	_, r, sv := sig.Values()
	if !crypto.ValidateSignatureValues(sig.V, r, sv, true) {
		return common.Address{}, ErrInvalidSig
	}
	pub, err := crypto.SigToPub(sighash[:], sig.Bytes())
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
