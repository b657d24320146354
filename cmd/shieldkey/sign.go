package main

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/gshield/core/types"
	"github.com/tos-network/gshield/crypto/shield"
	"github.com/urfave/cli/v2"
)

var (
	privateKeyFlag = &cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded secp256k1 private key",
	}
	privateKeyFileFlag = &cli.StringFlag{
		Name:  "keyfile",
		Usage: "encrypted JSON keyfile or file containing a hex encoded private key",
	}
	gasPriceFlag = &cli.StringFlag{
		Name:  "gasprice",
		Usage: "gas price in wei (decimal or 0x-prefixed hex)",
		Value: "1000000000",
	}
	gasFlag = &cli.Uint64Flag{
		Name:  "gas",
		Usage: "gas limit",
		Value: 21000,
	}
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "recipient address, empty for contract creation",
	}
	valueFlag = &cli.StringFlag{
		Name:  "value",
		Usage: "transferred value in wei (decimal or 0x-prefixed hex)",
		Value: "0",
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "hex encoded call input",
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "carry the call input in the clear",
	}
	headerFlag = &cli.BoolFlag{
		Name:  "header",
		Usage: "wrap the output in an RLP string header",
	}
)

var (
	errNoSigningKey      = errors.New("either --key or --keyfile must be given")
	errExclusiveKeyFlags = errors.New("--key and --keyfile can't be used at the same time")
)

var commandSign = &cli.Command{
	Name:  "sign",
	Usage: "build and sign a shielded transaction",
	Description: `
Build a shielded transaction from the given fields, seal its call input with
the configured payload cipher and sign it with the given key.

The transaction is signed for the configured chain and printed as hex.`,
	Flags: []cli.Flag{
		privateKeyFlag,
		privateKeyFileFlag,
		passphraseFlag,
		nonceFlag,
		gasPriceFlag,
		gasFlag,
		toFlag,
		valueFlag,
		inputFlag,
		plainFlag,
		headerFlag,
	},
	Action: func(ctx *cli.Context) error {
		cfg, err := shieldConfig(ctx)
		if err != nil {
			return err
		}
		key, err := loadSigningKey(ctx)
		if err != nil {
			return err
		}
		inner, err := shieldedTxFromFlags(ctx)
		if err != nil {
			return err
		}
		var input []byte
		if ctx.IsSet(inputFlag.Name) {
			if input, err = parseHex("input", ctx.String(inputFlag.Name)); err != nil {
				return err
			}
		}
		var c shield.PayloadCipher
		if !ctx.Bool(plainFlag.Name) {
			if c, err = cfg.Cipher.NewCipher(); err != nil {
				return err
			}
		}
		if inner.Input, err = types.NewSecretElement(c, input, c != nil, inner.Nonce); err != nil {
			return err
		}
		signer := types.LatestSigner(cfg.ChainConfig())
		tx, err := types.SignNewTx(key, signer, inner)
		if err != nil {
			return err
		}
		enc, err := types.EncodeEnvelope(tx, ctx.Bool(headerFlag.Name))
		if err != nil {
			return err
		}
		log.Debug("Signed shielded transaction", "hash", tx.Hash(), "chainid", tx.ChainId(), "size", tx.Size())
		fmt.Fprintln(ctx.App.Writer, hexutil.Encode(enc))
		return nil
	},
}

// shieldedTxFromFlags builds the transaction body without its input.
func shieldedTxFromFlags(ctx *cli.Context) (*types.ShieldedTx, error) {
	gasPrice, ok := new(big.Int).SetString(ctx.String(gasPriceFlag.Name), 0)
	if !ok {
		return nil, fmt.Errorf("invalid gas price %q", ctx.String(gasPriceFlag.Name))
	}
	value, err := parseUint256("value", ctx.String(valueFlag.Name))
	if err != nil {
		return nil, err
	}
	inner := &types.ShieldedTx{
		Nonce:    ctx.Uint64(nonceFlag.Name),
		GasPrice: gasPrice,
		Gas:      ctx.Uint64(gasFlag.Name),
		Value:    value,
	}
	if to := ctx.String(toFlag.Name); to != "" {
		if !common.IsHexAddress(to) {
			return nil, fmt.Errorf("invalid recipient address %q", to)
		}
		addr := common.HexToAddress(to)
		inner.To = &addr
	}
	return inner, nil
}

// parseUint256 parses a decimal or 0x-prefixed hex number.
func parseUint256(what, s string) (*uint256.Int, error) {
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %v", what, s, err)
	}
	return v, nil
}

// loadKeyfile reads either an encrypted JSON keyfile, unlocked with the
// --passwordfile password, or a raw hex key.
func loadKeyfile(ctx *cli.Context, path string) (*ecdsa.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the keyfile at '%s': %v", path, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(content), []byte("{")) {
		key, err := crypto.LoadECDSA(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key: %v", err)
		}
		return key, nil
	}
	passphrase, err := readPassphrase(ctx)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(content, passphrase)
	if err != nil {
		return nil, fmt.Errorf("error decrypting key: %v", err)
	}
	return key.PrivateKey, nil
}

// loadSigningKey reads the secp256k1 key selected by --key or --keyfile.
func loadSigningKey(ctx *cli.Context) (*ecdsa.PrivateKey, error) {
	switch {
	case ctx.IsSet(privateKeyFlag.Name) && ctx.IsSet(privateKeyFileFlag.Name):
		return nil, errExclusiveKeyFlags
	case ctx.IsSet(privateKeyFlag.Name):
		key, err := crypto.HexToECDSA(strings.TrimPrefix(ctx.String(privateKeyFlag.Name), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %v", err)
		}
		return key, nil
	case ctx.IsSet(privateKeyFileFlag.Name):
		return loadKeyfile(ctx, ctx.String(privateKeyFileFlag.Name))
	default:
		return nil, errNoSigningKey
	}
}
