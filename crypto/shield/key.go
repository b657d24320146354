package shield

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseKey decodes a hex encoded 32-byte key, with or without 0x prefix.
func ParseKey(s string) (Key, error) {
	var key Key
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(b) != KeyLength {
		return key, fmt.Errorf("%w: want %d bytes, have %d", ErrInvalidKey, KeyLength, len(b))
	}
	copy(key[:], b)
	return key, nil
}

// KeyFromFile reads a hex encoded key from the given file.
func KeyFromFile(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Key{}, fmt.Errorf("read key file: %w", err)
	}
	return ParseKey(string(data))
}

// Hex returns the 0x prefixed hex encoding of the key.
func (k Key) Hex() string { return hexutil.Encode(k[:]) }
