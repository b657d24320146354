package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/gshield/core/types"
	"github.com/urfave/cli/v2"
)

var decryptFlag = &cli.BoolFlag{
	Name:  "decrypt",
	Usage: "decrypt the call input with the configured cipher",
}

type outputDecode struct {
	Hash     string         `json:"hash"`
	Type     hexutil.Uint64 `json:"type"`
	ChainID  hexutil.Uint64 `json:"chainId"`
	Nonce    hexutil.Uint64 `json:"nonce"`
	GasPrice *hexutil.Big   `json:"gasPrice"`
	Gas      hexutil.Uint64 `json:"gas"`
	To       string         `json:"to,omitempty"`
	Value    string         `json:"value"`
	Input    hexutil.Bytes  `json:"input"`
	Payload  hexutil.Bytes  `json:"payload,omitempty"`
	V        *hexutil.Big   `json:"v"`
	R        *hexutil.Big   `json:"r"`
	S        *hexutil.Big   `json:"s"`
	From     string         `json:"from"`
	Size     hexutil.Uint64 `json:"size"`
}

var commandDecode = &cli.Command{
	Name:      "decode",
	Usage:     "decode an encoded shielded transaction",
	ArgsUsage: "<hex transaction>",
	Description: `
Decode a shielded transaction in any accepted framing and print its fields
and the recovered sender. With --decrypt the call input is opened with the
configured payload cipher.`,
	Flags: []cli.Flag{
		jsonFlag,
		decryptFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("need exactly one transaction argument")
		}
		raw, err := parseHex("transaction", ctx.Args().First())
		if err != nil {
			return err
		}
		tx, err := types.DecodeEnvelope(raw)
		if err != nil {
			return err
		}
		from, err := types.Sender(types.NewShieldedSigner(tx.ChainId()), tx)
		if err != nil {
			return err
		}
		v, r, s := tx.RawSignatureValues()
		out := outputDecode{
			Hash:     tx.Hash().Hex(),
			Type:     hexutil.Uint64(tx.Type()),
			ChainID:  hexutil.Uint64(tx.ChainId()),
			Nonce:    hexutil.Uint64(tx.Nonce()),
			GasPrice: (*hexutil.Big)(tx.GasPrice()),
			Gas:      hexutil.Uint64(tx.Gas()),
			Value:    tx.Value().Dec(),
			Input:    tx.Input().Ciphertext(),
			V:        (*hexutil.Big)(v),
			R:        (*hexutil.Big)(r),
			S:        (*hexutil.Big)(s),
			From:     from.Hex(),
			Size:     hexutil.Uint64(tx.Size()),
		}
		if to := tx.To(); to != nil {
			out.To = to.Hex()
		}
		if ctx.Bool(decryptFlag.Name) {
			cfg, err := shieldConfig(ctx)
			if err != nil {
				return err
			}
			c, err := cfg.Cipher.NewCipher()
			if err != nil {
				return err
			}
			if out.Payload, err = tx.DecryptInput(c); err != nil {
				return err
			}
		}
		if ctx.Bool(jsonFlag.Name) {
			return printJSON(ctx.App.Writer, out)
		}
		printDecodeTable(ctx.App.Writer, &out)
		return nil
	},
}

func printDecodeTable(w io.Writer, out *outputDecode) {
	to := out.To
	if to == "" {
		to = "(contract creation)"
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.AppendBulk([][]string{
		{"Hash", out.Hash},
		{"Type", out.Type.String()},
		{"Chain ID", fmt.Sprint(uint64(out.ChainID))},
		{"Nonce", fmt.Sprint(uint64(out.Nonce))},
		{"Gas price", out.GasPrice.ToInt().String()},
		{"Gas", fmt.Sprint(uint64(out.Gas))},
		{"To", to},
		{"Value", out.Value},
		{"Input", out.Input.String()},
	})
	if out.Payload != nil {
		table.Append([]string{"Payload", out.Payload.String()})
	}
	table.AppendBulk([][]string{
		{"V", out.V.String()},
		{"R", out.R.String()},
		{"S", out.S.String()},
		{"From", out.From},
		{"Size", fmt.Sprint(uint64(out.Size))},
	})
	table.Render()
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
