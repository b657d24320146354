package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

type outputInspect struct {
	Address    string `json:"address"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey,omitempty"`
	Cipher     string `json:"cipher,omitempty"`
}

var privateFlag = &cli.BoolFlag{
	Name:  "private",
	Usage: "include the private key in the output",
}

var commandInspect = &cli.Command{
	Name:  "inspect",
	Usage: "inspect a signing key",
	Description: `
Print the address and compressed public key of the key given by --key or
--keyfile. When a payload key is configured its cipher is validated and
named as well.

Private key information can be printed by using the --private flag;
make sure to use this feature with great caution!`,
	Flags: []cli.Flag{
		privateKeyFlag,
		privateKeyFileFlag,
		passphraseFlag,
		jsonFlag,
		privateFlag,
	},
	Action: func(ctx *cli.Context) error {
		key, err := loadSigningKey(ctx)
		if err != nil {
			return err
		}
		priv, pub := btcec.PrivKeyFromBytes(crypto.FromECDSA(key))
		out := outputInspect{
			Address:   crypto.PubkeyToAddress(priv.ToECDSA().PublicKey).Hex(),
			PublicKey: hex.EncodeToString(pub.SerializeCompressed()),
		}
		if ctx.Bool(privateFlag.Name) {
			out.PrivateKey = hex.EncodeToString(priv.Serialize())
		}
		cfg, err := shieldConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.Cipher.Key != "" || cfg.Cipher.KeyFile != "" {
			c, err := cfg.Cipher.NewCipher()
			if err != nil {
				return err
			}
			out.Cipher = c.Algorithm()
		}

		if ctx.Bool(jsonFlag.Name) {
			return printJSON(ctx.App.Writer, out)
		}
		fmt.Fprintln(ctx.App.Writer, "Address:       ", out.Address)
		fmt.Fprintln(ctx.App.Writer, "Public key:    ", out.PublicKey)
		if out.PrivateKey != "" {
			fmt.Fprintln(ctx.App.Writer, "Private key:   ", out.PrivateKey)
		}
		if out.Cipher != "" {
			fmt.Fprintln(ctx.App.Writer, "Payload cipher:", out.Cipher)
		}
		return nil
	},
}
