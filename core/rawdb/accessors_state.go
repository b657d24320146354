package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gshield/core/types"
)

// ReadFlaggedStorage retrieves the flagged value of a storage slot. Slots that
// were never written read as the public zero.
func ReadFlaggedStorage(db ethdb.KeyValueReader, accountHash, slotHash common.Hash) types.FlaggedStorage {
	data, _ := db.Get(flaggedStorageKey(accountHash, slotHash))
	if len(data) == 0 {
		return types.ZeroFlaggedStorage
	}
	var fs types.FlaggedStorage
	if err := fs.UnmarshalBinary(data); err != nil {
		log.Error("Invalid flagged storage entry", "account", accountHash, "slot", slotHash, "err", err)
		return types.ZeroFlaggedStorage
	}
	return fs
}

// HasFlaggedStorage checks if a storage slot has been written.
func HasFlaggedStorage(db ethdb.KeyValueReader, accountHash, slotHash common.Hash) bool {
	ok, _ := db.Has(flaggedStorageKey(accountHash, slotHash))
	return ok
}

// WriteFlaggedStorage stores the flagged value of a storage slot. Writing the
// public zero removes the entry.
func WriteFlaggedStorage(db ethdb.KeyValueWriter, accountHash, slotHash common.Hash, value types.FlaggedStorage) {
	if value.IsZero() {
		DeleteFlaggedStorage(db, accountHash, slotHash)
		return
	}
	enc, _ := value.MarshalBinary()
	if err := db.Put(flaggedStorageKey(accountHash, slotHash), enc); err != nil {
		log.Crit("Failed to store flagged storage", "err", err)
	}
	flaggedStorageWriteCounter.Inc(1)
	if value.IsPrivate() {
		flaggedStoragePrivateMeter.Mark(1)
	}
}

// DeleteFlaggedStorage removes the flagged value of a storage slot.
func DeleteFlaggedStorage(db ethdb.KeyValueWriter, accountHash, slotHash common.Hash) {
	if err := db.Delete(flaggedStorageKey(accountHash, slotHash)); err != nil {
		log.Crit("Failed to delete flagged storage", "err", err)
	}
}

// IterateFlaggedStorage calls fn for every written slot of an account, in key
// order. Iteration stops when fn returns false.
func IterateFlaggedStorage(db ethdb.Iteratee, accountHash common.Hash, fn func(slotHash common.Hash, value types.FlaggedStorage) bool) error {
	it := NewKeyLengthIterator(db.NewIterator(flaggedStoragePrefixKey(accountHash), nil), flaggedStorageKeyLength)
	defer it.Release()

	for it.Next() {
		var fs types.FlaggedStorage
		if err := fs.UnmarshalBinary(it.Value()); err != nil {
			return err
		}
		slot := common.BytesToHash(it.Key()[len(flaggedStoragePrefix)+common.HashLength:])
		if !fn(slot, fs) {
			break
		}
	}
	return it.Error()
}
