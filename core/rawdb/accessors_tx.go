package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gshield/core/types"
)

// ReadShieldedTx retrieves a shielded transaction by hash. The input stays
// encrypted.
func ReadShieldedTx(db ethdb.KeyValueReader, hash common.Hash) *types.Transaction {
	data, _ := db.Get(shieldedTxKey(hash))
	if len(data) == 0 {
		return nil
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		log.Error("Invalid shielded transaction entry", "hash", hash, "err", err)
		return nil
	}
	return tx
}

// HasShieldedTx checks if a shielded transaction is stored.
func HasShieldedTx(db ethdb.KeyValueReader, hash common.Hash) bool {
	ok, _ := db.Has(shieldedTxKey(hash))
	return ok
}

// WriteShieldedTx stores a shielded transaction keyed by its hash.
func WriteShieldedTx(db ethdb.KeyValueWriter, tx *types.Transaction) {
	enc, err := tx.MarshalBinary()
	if err != nil {
		log.Crit("Failed to encode shielded transaction", "hash", tx.Hash(), "err", err)
	}
	if err := db.Put(shieldedTxKey(tx.Hash()), enc); err != nil {
		log.Crit("Failed to store shielded transaction", "err", err)
	}
}

// DeleteShieldedTx removes a shielded transaction.
func DeleteShieldedTx(db ethdb.KeyValueWriter, hash common.Hash) {
	if err := db.Delete(shieldedTxKey(hash)); err != nil {
		log.Crit("Failed to delete shielded transaction", "err", err)
	}
}
