package main

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/tos-network/gshield/core"
	"github.com/tos-network/gshield/core/secret"
	"github.com/tos-network/gshield/core/types"
	"github.com/urfave/cli/v2"
)

var (
	preimageTypeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "preimage type (suint256, sint64, saddress, sbool, ...)",
		Value: "suint256",
	}
	saltFlag = &cli.StringFlag{
		Name:  "salt",
		Usage: "hex encoded salt appended to the preimage word",
	}
	secretsFlag = &cli.StringFlag{
		Name:  "secrets",
		Usage: "JSON or YAML file with the secretData entries of the call",
	}
)

var commandCommit = &cli.Command{
	Name:      "commit",
	Usage:     "compute the commitment of a typed preimage",
	ArgsUsage: "<preimage>",
	Description: `
Compute keccak256(word || salt) where word is the 32-byte ABI word of the
preimage interpreted as --type.`,
	Flags: []cli.Flag{
		preimageTypeFlag,
		saltFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("need exactly one preimage argument")
		}
		var (
			salt []byte
			err  error
		)
		if ctx.IsSet(saltFlag.Name) {
			if salt, err = parseHex("salt", ctx.String(saltFlag.Name)); err != nil {
				return err
			}
		}
		c, err := secret.Commit(ctx.String(preimageTypeFlag.Name), secret.PreImageValue(ctx.Args().First()), salt)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, c.Hex())
		return nil
	},
}

var commandVerify = &cli.Command{
	Name:      "verify",
	Usage:     "check the secret data of a call against its decrypted input",
	ArgsUsage: "<hex transaction>",
	Description: `
Decode and decrypt a shielded transaction, then authenticate every entry of
the --secrets file against the commitment at its index in the call input.`,
	Flags: []cli.Flag{
		secretsFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("need exactly one transaction argument")
		}
		if !ctx.IsSet(secretsFlag.Name) {
			return fmt.Errorf("--%s is required", secretsFlag.Name)
		}
		raw, err := parseHex("transaction", ctx.Args().First())
		if err != nil {
			return err
		}
		fields, err := secret.LoadCallFields(ctx.String(secretsFlag.Name))
		if err != nil {
			return err
		}
		p, err := newPreprocessor(ctx, true)
		if err != nil {
			return err
		}
		prepared, err := p.Prepare(raw, fields)

		var invalid *secret.InvalidCommitmentError
		switch {
		case errors.As(err, &invalid):
			red := color.New(color.FgRed).SprintFunc()
			for _, i := range invalid.Indices {
				d := fields.SecretData[i]
				fmt.Fprintf(ctx.App.Writer, "%s entry %d (index %d, %s)\n", red("MISMATCH"), i, d.Index, d.PreimageType)
			}
			return err
		case err != nil:
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		for i, d := range fields.SecretData {
			fmt.Fprintf(ctx.App.Writer, "%s entry %d (index %d, %s)\n", green("OK"), i, d.Index, d.PreimageType)
		}
		fmt.Fprintln(ctx.App.Writer, "Sender:", prepared.From.Hex())
		return nil
	},
}

var commandPrepare = &cli.Command{
	Name:      "prepare",
	Usage:     "decode, recover and decrypt a batch of shielded transactions",
	ArgsUsage: "<hex transaction> [<hex transaction> ...]",
	Description: `
Run a batch of shielded transactions through the preprocessor: decode,
check the chain, recover each sender and decrypt each call input. With
--datadir the transactions are stored in the shield database.`,
	Flags: []cli.Flag{
		jsonFlag,
		dataDirFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() == 0 {
			return fmt.Errorf("need at least one transaction argument")
		}
		raws := make([][]byte, ctx.NArg())
		for i, arg := range ctx.Args().Slice() {
			raw, err := parseHex(fmt.Sprintf("transaction %d", i), arg)
			if err != nil {
				return err
			}
			raws[i] = raw
		}
		p, err := newPreprocessor(ctx, false)
		if err != nil {
			return err
		}
		prepared, err := p.PrepareBatch(ctx.Context, raws, nil)
		if err != nil {
			return err
		}
		txs := make([]*types.Transaction, len(prepared))
		for i, tx := range prepared {
			txs[i] = tx.Tx
		}
		if err := storePrepared(ctx, txs); err != nil {
			return err
		}
		type outputPrepared struct {
			Hash  string        `json:"hash"`
			From  string        `json:"from"`
			Input hexutil.Bytes `json:"input"`
		}
		out := make([]outputPrepared, len(prepared))
		for i, tx := range prepared {
			out[i] = outputPrepared{Hash: tx.Tx.Hash().Hex(), From: tx.From.Hex(), Input: tx.Input}
		}
		if ctx.Bool(jsonFlag.Name) {
			return printJSON(ctx.App.Writer, out)
		}
		for _, o := range out {
			fmt.Fprintf(ctx.App.Writer, "%s %s %s\n", o.Hash, o.From, o.Input)
		}
		return nil
	},
}

// newPreprocessor builds a preprocessor from the loaded configuration.
func newPreprocessor(ctx *cli.Context, verify bool) (*core.Preprocessor, error) {
	cfg, err := shieldConfig(ctx)
	if err != nil {
		return nil, err
	}
	c, err := cfg.Cipher.NewCipher()
	if err != nil {
		return nil, err
	}
	pcfg := cfg.Preprocess
	if verify {
		pcfg.VerifyCommitments = true
	}
	return core.NewPreprocessor(pcfg, cfg.ChainConfig(), c)
}
