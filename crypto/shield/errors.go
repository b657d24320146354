package shield

import "errors"

var (
	// ErrEncryptionFailed is returned when the AEAD refuses to seal a payload.
	ErrEncryptionFailed = errors.New("shield: encryption failed")

	// ErrDecryptionFailed indicates an authentication tag mismatch: wrong key,
	// wrong nonce or corrupted ciphertext.
	ErrDecryptionFailed = errors.New("shield: decryption failed")

	// ErrInvalidKey indicates key material of the wrong size or encoding.
	ErrInvalidKey = errors.New("shield: invalid key")

	// ErrUnknownAlgorithm indicates an unsupported cipher name.
	ErrUnknownAlgorithm = errors.New("shield: unknown cipher algorithm")
)
