package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"
)

// The fields below define the low level database schema prefixing.
var (
	flaggedStoragePrefix = []byte("F") // flaggedStoragePrefix + account hash + slot hash -> flagged storage value
	shieldedTxPrefix     = []byte("x") // shieldedTxPrefix + tx hash -> encoded shielded transaction

	flaggedStorageWriteCounter = metrics.NewRegisteredCounter("db/flagged/write", nil)
	flaggedStoragePrivateMeter = metrics.NewRegisteredMeter("db/flagged/private", nil)
)

// flaggedStorageKeyLength is the length of a flagged storage key.
var flaggedStorageKeyLength = len(flaggedStoragePrefix) + 2*common.HashLength

// flaggedStorageKey = flaggedStoragePrefix + accountHash + slotHash
func flaggedStorageKey(accountHash, slotHash common.Hash) []byte {
	buf := make([]byte, flaggedStorageKeyLength)
	n := copy(buf, flaggedStoragePrefix)
	n += copy(buf[n:], accountHash.Bytes())
	copy(buf[n:], slotHash.Bytes())
	return buf
}

// flaggedStoragePrefixKey = flaggedStoragePrefix + accountHash
func flaggedStoragePrefixKey(accountHash common.Hash) []byte {
	return append(append([]byte{}, flaggedStoragePrefix...), accountHash.Bytes()...)
}

// shieldedTxKey = shieldedTxPrefix + hash
func shieldedTxKey(hash common.Hash) []byte {
	return append(append([]byte{}, shieldedTxPrefix...), hash.Bytes()...)
}
