package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/params"
)

// ShieldedTx is the unsigned body of a shielded transaction. Input is a
// secret element whose nonce is the transaction nonce.
type ShieldedTx struct {
	ChainID  uint64
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address // nil means contract creation
	Value    *uint256.Int
	Input    *SecretElement[[]byte]
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *ShieldedTx) copy() *ShieldedTx {
	cpy := &ShieldedTx{
		ChainID:  tx.ChainID,
		Nonce:    tx.Nonce,
		GasPrice: new(big.Int),
		Gas:      tx.Gas,
		To:       copyAddressPtr(tx.To),
		Value:    new(uint256.Int),
		Input:    tx.Input.copy(),
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if cpy.Input == nil {
		cpy.Input = &SecretElement[[]byte]{}
	}
	return cpy
}

func (tx *ShieldedTx) validate() error {
	if tx.GasPrice != nil && (tx.GasPrice.Sign() < 0 || tx.GasPrice.BitLen() > 128) {
		return fmt.Errorf("%w: %v", ErrInvalidGasPrice, tx.GasPrice)
	}
	return nil
}

// encodeFields writes the fields in canonical order:
// chain id, nonce, gas price, gas limit, to, value, input.
func (tx *ShieldedTx) encodeFields(w rlp.EncoderBuffer, chainID uint64) error {
	if err := tx.validate(); err != nil {
		return err
	}
	input, err := tx.Input.Encode()
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	w.WriteUint64(chainID)
	w.WriteUint64(tx.Nonce)
	if tx.GasPrice == nil {
		w.WriteUint64(0)
	} else {
		w.WriteBigInt(tx.GasPrice)
	}
	w.WriteUint64(tx.Gas)
	if tx.To == nil {
		w.WriteBytes(nil)
	} else {
		w.WriteBytes(tx.To[:])
	}
	if tx.Value == nil {
		w.WriteUint64(0)
	} else {
		w.WriteUint256(tx.Value)
	}
	w.Write(input)
	return nil
}

// decodeShieldedFields reads the fields from the head of b and returns the
// remaining bytes.
func decodeShieldedFields(b []byte) (*ShieldedTx, []byte, error) {
	var (
		tx  = new(ShieldedTx)
		err error
	)
	if tx.ChainID, b, err = rlp.SplitUint64(b); err != nil {
		return nil, nil, wrapRLPError("chainId", err)
	}
	if tx.Nonce, b, err = rlp.SplitUint64(b); err != nil {
		return nil, nil, wrapRLPError("nonce", err)
	}
	tx.GasPrice = new(big.Int)
	if b, err = splitBigInt(b, tx.GasPrice); err != nil {
		return nil, nil, wrapRLPError("gasPrice", err)
	}
	if tx.GasPrice.BitLen() > 128 {
		return nil, nil, fmt.Errorf("gasPrice: %w", ErrInvalidGasPrice)
	}
	if tx.Gas, b, err = rlp.SplitUint64(b); err != nil {
		return nil, nil, wrapRLPError("gas", err)
	}
	var to []byte
	if to, b, err = rlp.SplitString(b); err != nil {
		return nil, nil, wrapRLPError("to", err)
	}
	switch len(to) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(to)
		tx.To = &addr
	default:
		return nil, nil, fmt.Errorf("to: invalid address length %d", len(to))
	}
	tx.Value = new(uint256.Int)
	if b, err = splitUint256(b, tx.Value); err != nil {
		return nil, nil, wrapRLPError("value", err)
	}
	_, _, rest, err := rlp.Split(b)
	if err != nil {
		return nil, nil, wrapRLPError("input", err)
	}
	if tx.Input, err = DecodeSecretElement[[]byte](b[:len(b)-len(rest)]); err != nil {
		return nil, nil, fmt.Errorf("input: %w", err)
	}
	return tx, rest, nil
}

// payloadLenForSignature returns the size of the signing preimage: the type
// byte, the list header and the fields.
func (tx *ShieldedTx) payloadLenForSignature(chainID uint64) (int, error) {
	enc, err := tx.signingPayload(chainID)
	if err != nil {
		return 0, err
	}
	return len(enc), nil
}

// signingPayload returns type || list(fields).
func (tx *ShieldedTx) signingPayload(chainID uint64) ([]byte, error) {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	l := w.List()
	if err := tx.encodeFields(w, chainID); err != nil {
		return nil, err
	}
	w.ListEnd(l)
	return w.AppendToBytes([]byte{params.ShieldedTxType}), nil
}

func splitUint256(b []byte, dst *uint256.Int) ([]byte, error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return nil, err
	}
	switch {
	case len(content) > 32:
		return nil, rlp.ErrCanonInt
	case len(content) > 0 && content[0] == 0:
		return nil, rlp.ErrCanonInt
	}
	dst.SetBytes(content)
	return rest, nil
}

func splitBigInt(b []byte, dst *big.Int) ([]byte, error) {
	var v uint256.Int
	rest, err := splitUint256(b, &v)
	if err != nil {
		return nil, err
	}
	dst.Set(v.ToBig())
	return rest, nil
}

// copyAddressPtr copies an address.
func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}
