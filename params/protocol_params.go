package params

const (
	// ShieldedTxType is the EIP-2718 type byte of a shielded transaction.
	ShieldedTxType byte = 0x4A

	WordLength           = 32             // Size of an EVM word in bytes.
	FlaggedStorageLength = WordLength + 1 // Encoded size of a flagged storage value: word + visibility byte.
	CommitmentLength     = 32             // Size of a preimage commitment embedded in call input.

	PayloadKeyLength = 32 // Size of the symmetric payload key (256 bit).

	DefaultCipherAlgorithm = "aes-256-gcm"
)
