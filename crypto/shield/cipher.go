// Package shield implements the symmetric payload cipher protecting
// confidential transaction fields.
package shield

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/tos-network/gshield/params"
	"golang.org/x/crypto/chacha20poly1305"
)

// Supported cipher names.
const (
	AlgorithmAESGCM           = params.DefaultCipherAlgorithm
	AlgorithmChaCha20Poly1305 = "chacha20-poly1305"
)

// KeyLength is the size of a payload key in bytes.
const KeyLength = params.PayloadKeyLength

// Key is a 256-bit symmetric payload key.
type Key [KeyLength]byte

// PayloadCipher encrypts and decrypts opaque payloads under a fixed key and a
// caller supplied per-message nonce. The (key, nonce) pair must never be used
// for two different plaintexts.
type PayloadCipher interface {
	Encrypt(plaintext []byte, nonce uint64) ([]byte, error)
	Decrypt(ciphertext []byte, nonce uint64) ([]byte, error)
}

// Cipher is an AEAD backed PayloadCipher. It is immutable after construction
// and safe for concurrent use.
type Cipher struct {
	name string
	aead cipher.AEAD
}

// NewCipher creates a payload cipher for the named algorithm. An empty name
// selects AES-256-GCM.
func NewCipher(algorithm string, key Key) (*Cipher, error) {
	name := strings.ToLower(strings.TrimSpace(algorithm))
	if name == "" {
		name = AlgorithmAESGCM
	}
	var (
		aead cipher.AEAD
		err  error
	)
	switch name {
	case AlgorithmAESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key[:]); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case AlgorithmChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key[:])
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Cipher{name: name, aead: aead}, nil
}

// Algorithm returns the canonical name of the cipher.
func (c *Cipher) Algorithm() string { return c.name }

// NonceSize returns the width of the AEAD nonce in bytes.
func (c *Cipher) NonceSize() int { return c.aead.NonceSize() }

// Encrypt seals plaintext under the nonce derived from n. The result carries
// the authentication tag.
func (c *Cipher) Encrypt(plaintext []byte, n uint64) (out []byte, err error) {
	nonce, err := DeriveNonce(n, c.aead.NonceSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, r)
		}
	}()
	return c.aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext under the nonce derived from n.
func (c *Cipher) Decrypt(ciphertext []byte, n uint64) ([]byte, error) {
	nonce, err := DeriveNonce(n, c.aead.NonceSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(ciphertext) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrDecryptionFailed)
	}
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// DeriveNonce encodes n big-endian and right-pads it with zeros to size bytes.
func DeriveNonce(n uint64, size int) ([]byte, error) {
	if size < 8 {
		return nil, fmt.Errorf("nonce size %d too small", size)
	}
	nonce := make([]byte, size)
	binary.BigEndian.PutUint64(nonce, n)
	return nonce, nil
}
