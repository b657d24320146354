package rawdb

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/core/types"
)

func testFlaggedStorage(t *testing.T, db ethdb.KeyValueStore) {
	var (
		account = common.HexToHash("0xaa")
		other   = common.HexToHash("0xbb")
		slotA   = common.HexToHash("0x01")
		slotB   = common.HexToHash("0x02")
		priv    = types.NewFlaggedStorage(uint256.NewInt(7), true)
		pub     = types.NewPublicStorage(uint256.NewInt(9))
	)
	if got := ReadFlaggedStorage(db, account, slotA); !got.IsZero() {
		t.Fatalf("unwritten slot: have %v, want zero", got)
	}
	WriteFlaggedStorage(db, account, slotA, priv)
	WriteFlaggedStorage(db, account, slotB, pub)
	WriteFlaggedStorage(db, other, slotA, pub)

	if got := ReadFlaggedStorage(db, account, slotA); got != priv {
		t.Fatalf("slot A: have %v, want %v", got, priv)
	}
	if !HasFlaggedStorage(db, account, slotB) {
		t.Fatal("slot B missing")
	}

	seen := make(map[common.Hash]types.FlaggedStorage)
	err := IterateFlaggedStorage(db, account, func(slot common.Hash, v types.FlaggedStorage) bool {
		seen[slot] = v
		return true
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(seen) != 2 || seen[slotA] != priv || seen[slotB] != pub {
		t.Fatalf("unexpected iteration result: %v", seen)
	}

	// A private zero is kept, the public zero deletes.
	WriteFlaggedStorage(db, account, slotA, types.NewFlaggedStorage(nil, true))
	if !HasFlaggedStorage(db, account, slotA) {
		t.Fatal("private zero must be stored")
	}
	WriteFlaggedStorage(db, account, slotA, types.ZeroFlaggedStorage)
	if HasFlaggedStorage(db, account, slotA) {
		t.Fatal("public zero must delete the slot")
	}
	DeleteFlaggedStorage(db, account, slotB)
	if HasFlaggedStorage(db, account, slotB) {
		t.Fatal("slot B not deleted")
	}
	if got := ReadFlaggedStorage(db, other, slotA); got != pub {
		t.Fatalf("other account: have %v, want %v", got, pub)
	}
}

func TestFlaggedStorageMemory(t *testing.T) {
	testFlaggedStorage(t, memorydb.New())
}

func TestFlaggedStorageLevelDB(t *testing.T) {
	db, err := leveldb.New(t.TempDir(), 16, 16, "", false)
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	defer db.Close()
	testFlaggedStorage(t, db)
}

func TestCorruptFlaggedStorage(t *testing.T) {
	db := memorydb.New()
	account, slot := common.HexToHash("0x01"), common.HexToHash("0x02")
	if err := db.Put(flaggedStorageKey(account, slot), []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if got := ReadFlaggedStorage(db, account, slot); !got.IsZero() {
		t.Fatalf("corrupt entry should read as zero, have %v", got)
	}
	err := IterateFlaggedStorage(db, account, func(common.Hash, types.FlaggedStorage) bool { return true })
	if err == nil {
		t.Fatal("expected iteration error on corrupt entry")
	}
}
