package main

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/gshield/core/rawdb"
	"github.com/tos-network/gshield/core/types"
	"github.com/urfave/cli/v2"
)

const (
	databaseCache   = 16
	databaseHandles = 16
)

var (
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "directory of the shield database",
	}
	accountFlag = &cli.StringFlag{
		Name:  "account",
		Usage: "address owning the storage slot",
	}
	slotFlag = &cli.StringFlag{
		Name:  "slot",
		Usage: "hex encoded storage slot key",
	}
	privateSlotFlag = &cli.BoolFlag{
		Name:  "private",
		Usage: "mark the stored value as private",
	}
)

var errNoDataDir = errors.New("--datadir is required")

var commandStorage = &cli.Command{
	Name:  "storage",
	Usage: "read and write flagged storage slots",
	Description: `
Manage the flagged storage kept in the shield database. Every slot holds a
32-byte word and a visibility flag. Writing a public zero clears the slot.`,
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "store a slot value",
			ArgsUsage: "<value>",
			Flags:     []cli.Flag{dataDirFlag, accountFlag, slotFlag, privateSlotFlag},
			Action:    storageSet,
		},
		{
			Name:   "get",
			Usage:  "print a slot value",
			Flags:  []cli.Flag{dataDirFlag, accountFlag, slotFlag, jsonFlag},
			Action: storageGet,
		},
		{
			Name:   "dump",
			Usage:  "print every stored slot of an account",
			Flags:  []cli.Flag{dataDirFlag, accountFlag},
			Action: storageDump,
		},
	},
}

func openDatabase(ctx *cli.Context) (ethdb.KeyValueStore, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, errNoDataDir
	}
	return leveldb.New(dir, databaseCache, databaseHandles, "shieldkey", false)
}

// storageLocation resolves the hashed account and slot keys.
func storageLocation(ctx *cli.Context, withSlot bool) (accountHash, slotHash common.Hash, err error) {
	addr := ctx.String(accountFlag.Name)
	if !common.IsHexAddress(addr) {
		return common.Hash{}, common.Hash{}, fmt.Errorf("invalid account address %q", addr)
	}
	accountHash = crypto.Keccak256Hash(common.HexToAddress(addr).Bytes())
	if !withSlot {
		return accountHash, common.Hash{}, nil
	}
	slot, err := parseHex("slot", ctx.String(slotFlag.Name))
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	if len(slot) > common.HashLength {
		return common.Hash{}, common.Hash{}, fmt.Errorf("slot key longer than %d bytes", common.HashLength)
	}
	return accountHash, crypto.Keccak256Hash(common.BytesToHash(slot).Bytes()), nil
}

func storageSet(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("need exactly one value argument")
	}
	value, err := parseUint256("slot value", ctx.Args().First())
	if err != nil {
		return err
	}
	accountHash, slotHash, err := storageLocation(ctx, true)
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	fs := types.NewFlaggedStorage(value, ctx.Bool(privateSlotFlag.Name))
	rawdb.WriteFlaggedStorage(db, accountHash, slotHash, fs)
	fmt.Fprintln(ctx.App.Writer, slotHash.Hex(), fs)
	return nil
}

func storageGet(ctx *cli.Context) error {
	accountHash, slotHash, err := storageLocation(ctx, true)
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	fs := rawdb.ReadFlaggedStorage(db, accountHash, slotHash)
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx.App.Writer, fs)
	}
	fmt.Fprintln(ctx.App.Writer, fs)
	return nil
}

func storageDump(ctx *cli.Context) error {
	accountHash, _, err := storageLocation(ctx, false)
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Slot", "Value", "Visibility"})
	table.SetAutoWrapText(false)
	err = rawdb.IterateFlaggedStorage(db, accountHash, func(slotHash common.Hash, fs types.FlaggedStorage) bool {
		vis := "public"
		if fs.IsPrivate() {
			vis = "private"
		}
		word := fs.Word()
		table.Append([]string{slotHash.Hex(), word.Hex(), vis})
		return true
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

// storePrepared persists decoded transactions when --datadir is given.
func storePrepared(ctx *cli.Context, txs []*types.Transaction) error {
	if !ctx.IsSet(dataDirFlag.Name) {
		return nil
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	batch := db.NewBatch()
	for _, tx := range txs {
		rawdb.WriteShieldedTx(batch, tx)
	}
	return batch.Write()
}
