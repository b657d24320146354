package types

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/params"
)

// StorageSlot is a word of data held in a storage slot.
type StorageSlot interface {
	Word() uint256.Int
	IsZero() bool
}

// PrivateSlot is a storage slot that also carries a visibility flag.
type PrivateSlot interface {
	StorageSlot
	IsPrivate() bool
}

// FlaggedStorage is a storage word tagged as private or public. Values are
// immutable: the visibility helpers return modified copies.
type FlaggedStorage struct {
	Value   uint256.Int
	Private bool
}

// ZeroFlaggedStorage is the value of a slot that was never written. It is
// public.
var ZeroFlaggedStorage = FlaggedStorage{}

// NewFlaggedStorage creates a storage value with the given visibility.
func NewFlaggedStorage(v *uint256.Int, private bool) FlaggedStorage {
	fs := FlaggedStorage{Private: private}
	if v != nil {
		fs.Value.Set(v)
	}
	return fs
}

// NewPublicStorage creates a public storage value.
func NewPublicStorage(v *uint256.Int) FlaggedStorage {
	return NewFlaggedStorage(v, false)
}

func (f FlaggedStorage) IsPrivate() bool { return f.Private }
func (f FlaggedStorage) IsPublic() bool  { return !f.Private }

// Word returns the raw value, ignoring visibility.
func (f FlaggedStorage) Word() uint256.Int { return f.Value }

// SetVisibility returns a copy of f with the given visibility.
func (f FlaggedStorage) SetVisibility(private bool) FlaggedStorage {
	f.Private = private
	return f
}

func (f FlaggedStorage) MarkPrivate() FlaggedStorage { return f.SetVisibility(true) }
func (f FlaggedStorage) MarkPublic() FlaggedStorage  { return f.SetVisibility(false) }

// IsZero reports whether f is the default public zero. A private zero is not.
func (f FlaggedStorage) IsZero() bool {
	return !f.Private && f.Value.IsZero()
}

// Cmp orders values by (Value, Private) with public before private.
func (f FlaggedStorage) Cmp(other FlaggedStorage) int {
	if c := f.Value.Cmp(&other.Value); c != 0 {
		return c
	}
	switch {
	case f.Private == other.Private:
		return 0
	case other.Private:
		return -1
	default:
		return 1
	}
}

// EqualsWord compares the value against a raw word. Private values refuse the
// comparison.
func (f FlaggedStorage) EqualsWord(w *uint256.Int) (bool, error) {
	if f.Private {
		return false, ErrPrivateComparison
	}
	return f.Value.Eq(w), nil
}

// Hash returns the value as a 32-byte big-endian hash.
func (f FlaggedStorage) Hash() common.Hash {
	return common.Hash(f.Value.Bytes32())
}

// MarshalBinary encodes f as the value followed by the visibility byte.
func (f FlaggedStorage) MarshalBinary() ([]byte, error) {
	out := make([]byte, params.FlaggedStorageLength)
	word := f.Value.Bytes32()
	copy(out, word[:])
	if f.Private {
		out[params.WordLength] = 1
	}
	return out, nil
}

// UnmarshalBinary decodes the fixed-size binary layout.
func (f *FlaggedStorage) UnmarshalBinary(b []byte) error {
	if len(b) != params.FlaggedStorageLength {
		return fmt.Errorf("%w: length %d", ErrInvalidFlaggedStorage, len(b))
	}
	var private bool
	switch b[params.WordLength] {
	case 0:
	case 1:
		private = true
	default:
		return fmt.Errorf("%w: flag byte %#x", ErrInvalidFlaggedStorage, b[params.WordLength])
	}
	f.Value.SetBytes32(b[:params.WordLength])
	f.Private = private
	return nil
}

type flaggedStorageJSON struct {
	Value     *hexutil.U256 `json:"value"`
	IsPrivate bool          `json:"isPrivate"`
}

func (f FlaggedStorage) MarshalJSON() ([]byte, error) {
	v := hexutil.U256(f.Value)
	return json.Marshal(flaggedStorageJSON{Value: &v, IsPrivate: f.Private})
}

func (f *FlaggedStorage) UnmarshalJSON(input []byte) error {
	var dec flaggedStorageJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Value == nil {
		return fmt.Errorf("%w: missing value", ErrInvalidFlaggedStorage)
	}
	f.Value = uint256.Int(*dec.Value)
	f.Private = dec.IsPrivate
	return nil
}

func (f FlaggedStorage) String() string {
	vis := "public"
	if f.Private {
		vis = "private"
	}
	return fmt.Sprintf("%s(%s)", vis, f.Value.Hex())
}

// CollectValues strips visibility from a set of slots.
func CollectValues(slots map[common.Hash]FlaggedStorage) map[common.Hash]uint256.Int {
	out := make(map[common.Hash]uint256.Int, len(slots))
	for k, v := range slots {
		out[k] = v.Value
	}
	return out
}
