package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Signature is a secp256k1 signature in parity form: V is 0 or 1.
type Signature struct {
	V byte
	R uint256.Int
	S uint256.Int
}

// NormalizeV folds legacy (27/28) and EIP-155 (chainID*2+35/36) recovery
// ids onto the parity bit.
func NormalizeV(v uint64) (byte, error) {
	switch {
	case v <= 1:
		return byte(v), nil
	case v == 27 || v == 28:
		return byte(v - 27), nil
	case v >= 35:
		return byte((v - 35) % 2), nil
	default:
		return 0, fmt.Errorf("%w: v=%d", ErrInvalidSig, v)
	}
}

// SignatureFromBytes parses a 65-byte [R || S || V] signature.
func SignatureFromBytes(sig []byte) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: length %d", ErrInvalidSig, len(sig))
	}
	v, err := NormalizeV(uint64(sig[64]))
	if err != nil {
		return Signature{}, err
	}
	var out Signature
	out.R.SetBytes(sig[:32])
	out.S.SetBytes(sig[32:64])
	out.V = v
	return out, nil
}

// Bytes returns the 65-byte [R || S || V] form.
func (s Signature) Bytes() []byte {
	out := make([]byte, crypto.SignatureLength)
	r, sv := s.R.Bytes32(), s.S.Bytes32()
	copy(out[:32], r[:])
	copy(out[32:64], sv[:])
	out[64] = s.V
	return out
}

// Values returns V, R and S as big integers.
func (s Signature) Values() (v, r, sv *big.Int) {
	return new(big.Int).SetUint64(uint64(s.V)), s.R.ToBig(), s.S.ToBig()
}

// encodeRLP appends the signature as three RLP integers.
func (s Signature) encodeRLP(w rlp.EncoderBuffer) {
	w.WriteUint64(uint64(s.V))
	w.WriteUint256(&s.R)
	w.WriteUint256(&s.S)
}

// decodeSignature reads v, r and s from the head of b.
func decodeSignature(b []byte) (Signature, []byte, error) {
	var sig Signature
	v, rest, err := rlp.SplitUint64(b)
	if err != nil {
		return sig, nil, wrapRLPError("signature v", err)
	}
	if v > 1 {
		return sig, nil, fmt.Errorf("%w: v=%d", ErrInvalidSig, v)
	}
	sig.V = byte(v)
	if rest, err = splitUint256(rest, &sig.R); err != nil {
		return sig, nil, wrapRLPError("signature r", err)
	}
	if rest, err = splitUint256(rest, &sig.S); err != nil {
		return sig, nil, wrapRLPError("signature s", err)
	}
	return sig, rest, nil
}
