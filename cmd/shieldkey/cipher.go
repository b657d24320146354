package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/gshield/core/types"
	"github.com/urfave/cli/v2"
)

var rlpFlag = &cli.BoolFlag{
	Name:  "rlp",
	Usage: "print the encoded secret element instead of the bare ciphertext",
}

var commandEncrypt = &cli.Command{
	Name:      "encrypt",
	Usage:     "seal a payload with the configured cipher",
	ArgsUsage: "<hex payload>",
	Description: `
Encrypt a payload under the configured key and the given nonce.

The payload key is taken from --cipher.key, --cipher.keyfile or the
configuration file. The nonce must be the nonce of the transaction that
will carry the payload.`,
	Flags: []cli.Flag{
		nonceFlag,
		rlpFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("need exactly one payload argument")
		}
		payload, err := parseHex("payload", ctx.Args().First())
		if err != nil {
			return err
		}
		cfg, err := shieldConfig(ctx)
		if err != nil {
			return err
		}
		c, err := cfg.Cipher.NewCipher()
		if err != nil {
			return err
		}
		el, err := types.NewSecretElement(c, payload, true, ctx.Uint64(nonceFlag.Name))
		if err != nil {
			return err
		}
		out := el.Ciphertext()
		if ctx.Bool(rlpFlag.Name) {
			if out, err = el.Encode(); err != nil {
				return err
			}
		}
		fmt.Fprintln(ctx.App.Writer, hexutil.Encode(out))
		return nil
	},
}

var commandDecrypt = &cli.Command{
	Name:      "decrypt",
	Usage:     "open a payload sealed with the configured cipher",
	ArgsUsage: "<hex ciphertext>",
	Flags: []cli.Flag{
		nonceFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("need exactly one ciphertext argument")
		}
		ciphertext, err := parseHex("ciphertext", ctx.Args().First())
		if err != nil {
			return err
		}
		cfg, err := shieldConfig(ctx)
		if err != nil {
			return err
		}
		c, err := cfg.Cipher.NewCipher()
		if err != nil {
			return err
		}
		payload, err := types.DecryptValue[[]byte](c, ciphertext, ctx.Uint64(nonceFlag.Name))
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, hexutil.Encode(payload))
		return nil
	},
}
