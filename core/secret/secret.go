// Package secret verifies commitments over out-of-band preimages against the
// call input of a shielded transaction.
package secret

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"
	"github.com/tos-network/gshield/params"
)

// SecretData binds a typed preimage to the commitment found at Index in the
// call input. It travels alongside a call and is never part of the signed
// payload.
type SecretData struct {
	Index        uint64        `json:"index"`
	Preimage     PreImageValue `json:"preimage"`
	PreimageType string        `json:"preimageType"`
	Salt         hexutil.Bytes `json:"salt"`
}

// CallFields holds the extra fields submitted with a shielded call.
type CallFields struct {
	SecretData []SecretData `json:"secretData,omitempty"`
}

// Commit computes the commitment of a typed preimage: keccak256(word || salt).
func Commit(typ string, value PreImageValue, salt []byte) (common.Hash, error) {
	word, err := Word(typ, value)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(word[:], salt), nil
}

// Commitment returns the commitment for d.
func (d SecretData) Commitment() (common.Hash, error) {
	return Commit(d.PreimageType, d.Preimage, d.Salt)
}

// window returns the claimed commitment at d.Index.
func (d SecretData) window(input []byte) (common.Hash, error) {
	if uint64(len(input)) < params.CommitmentLength || d.Index > uint64(len(input))-params.CommitmentLength {
		return common.Hash{}, fmt.Errorf("%w: index %d, input length %d", ErrCommitmentCalculation, d.Index, len(input))
	}
	return common.BytesToHash(input[d.Index : d.Index+params.CommitmentLength]), nil
}

// Verify checks every commitment in secrets against the call input. The batch
// passes or fails as a whole: one mismatch rejects the call and the returned
// *InvalidCommitmentError names all mismatching entries.
func Verify(secrets []SecretData, input []byte) error {
	computed := make([]common.Hash, len(secrets))
	claimed := make([]common.Hash, len(secrets))
	for i, d := range secrets {
		c, err := d.Commitment()
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		w, err := d.window(input)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		computed[i], claimed[i] = c, w
	}
	var (
		result  *multierror.Error
		indices []int
	)
	for i := range computed {
		if computed[i] != claimed[i] {
			indices = append(indices, i)
			result = multierror.Append(result, fmt.Errorf("entry %d: have %x, want %x", i, claimed[i], computed[i]))
		}
	}
	if len(indices) > 0 {
		log.Debug("Rejected secret commitments", "entries", len(secrets), "mismatches", len(indices))
		return &InvalidCommitmentError{Indices: indices, errs: result.ErrorOrNil()}
	}
	return nil
}

// Embed writes the commitments of secrets into input at their indices. It
// is the producer side of Verify.
func Embed(secrets []SecretData, input []byte) error {
	for i, d := range secrets {
		c, err := d.Commitment()
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, err := d.window(input); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		copy(input[d.Index:], c[:])
	}
	return nil
}
