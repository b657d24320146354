package types

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// hasherPool holds LegacyKeccak256 hashers.
var hasherPool = sync.Pool{
	New: func() interface{} { return sha3.NewLegacyKeccak256() },
}

// keccakHash hashes the concatenation of parts.
func keccakHash(parts ...[]byte) (h common.Hash) {
	sha := hasherPool.Get().(hash.Hash)
	defer hasherPool.Put(sha)
	sha.Reset()
	for _, p := range parts {
		sha.Write(p)
	}
	sha.Sum(h[:0])
	return h
}
