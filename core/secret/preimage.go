package secret

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/params"
)

// PreImageValue is the textual form of a preimage. It decodes from a JSON
// string, number or boolean.
type PreImageValue string

func (v PreImageValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

func (v *PreImageValue) UnmarshalJSON(input []byte) error {
	input = bytes.TrimSpace(input)
	if len(input) > 0 && input[0] == '"' {
		var s string
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
		*v = PreImageValue(s)
		return nil
	}
	switch string(input) {
	case "true", "false":
		*v = PreImageValue(input)
		return nil
	case "null":
		return fmt.Errorf("%w: null preimage", ErrParsePreimage)
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("%w: %v", ErrParsePreimage, err)
	}
	*v = PreImageValue(n.String())
	return nil
}

type kind int

const (
	kindUint kind = iota
	kindInt
	kindAddress
	kindBool
)

// preimageType is a parsed type name such as suint64 or saddress.
type preimageType struct {
	kind kind
	bits int
}

// parseType accepts the shielded names (suintN, sintN, saddress, sbool) and
// their plain counterparts. N is a multiple of 8 up to 256; a bare name
// means 256.
func parseType(name string) (preimageType, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "s")
	switch name {
	case "address":
		return preimageType{kind: kindAddress, bits: 160}, nil
	case "bool":
		return preimageType{kind: kindBool, bits: 8}, nil
	}
	var (
		t    preimageType
		size string
	)
	switch {
	case strings.HasPrefix(name, "uint"):
		t.kind, size = kindUint, name[len("uint"):]
	case strings.HasPrefix(name, "int"):
		t.kind, size = kindInt, name[len("int"):]
	default:
		return t, fmt.Errorf("%w: unknown type %q", ErrParsePreimage, name)
	}
	t.bits = 256
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 || n > 256 || n%8 != 0 {
			return t, fmt.Errorf("%w: invalid bit size %q", ErrParsePreimage, size)
		}
		t.bits = n
	}
	return t, nil
}

// Word returns the 32-byte canonical encoding of value under the given type:
// unsigned integers and addresses are left padded, signed integers are
// sign-extended two's complement, booleans are 0 or 1.
func Word(typ string, value PreImageValue) ([params.WordLength]byte, error) {
	var word [params.WordLength]byte
	t, err := parseType(typ)
	if err != nil {
		return word, err
	}
	s := strings.TrimSpace(string(value))
	switch t.kind {
	case kindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return word, fmt.Errorf("%w: %v", ErrParsePreimage, err)
		}
		if b {
			word[params.WordLength-1] = 1
		}
	case kindAddress:
		if !common.IsHexAddress(s) {
			return word, fmt.Errorf("%w: invalid address %q", ErrParsePreimage, s)
		}
		addr := common.HexToAddress(s)
		copy(word[params.WordLength-common.AddressLength:], addr[:])
	case kindUint:
		x, err := parseInteger(s)
		if err != nil {
			return word, err
		}
		if x.Sign() < 0 || x.BitLen() > t.bits {
			return word, fmt.Errorf("%w: %s out of range for uint%d", ErrParsePreimage, s, t.bits)
		}
		word = uint256.MustFromBig(x).Bytes32()
	case kindInt:
		x, err := parseInteger(s)
		if err != nil {
			return word, err
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.bits-1))
		if x.Cmp(limit) >= 0 || x.Cmp(new(big.Int).Neg(limit)) < 0 {
			return word, fmt.Errorf("%w: %s out of range for int%d", ErrParsePreimage, s, t.bits)
		}
		u := uint256.MustFromBig(new(big.Int).Abs(x))
		if x.Sign() < 0 {
			u.Neg(u)
		}
		word = u.Bytes32()
	}
	return word, nil
}

// parseInteger reads a decimal or 0x prefixed hex integer, optionally
// negative.
func parseInteger(s string) (*big.Int, error) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits, base = digits[2:], 16
	}
	x, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" {
		return nil, fmt.Errorf("%w: invalid integer %q", ErrParsePreimage, s)
	}
	if neg {
		x.Neg(x)
	}
	return x, nil
}
