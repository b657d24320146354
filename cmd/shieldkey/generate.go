package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

const defaultKeyfileName = "keyfile.json"

type outputGenerate struct {
	Address        string `json:"address"`
	DerivationPath string `json:"derivationPath,omitempty"`
	Mnemonic       string `json:"mnemonic,omitempty"`
}

var (
	passphraseFlag = &cli.StringFlag{
		Name:  "passwordfile",
		Usage: "the file that contains the password for the keyfile",
	}
	lightKDFFlag = &cli.BoolFlag{
		Name:  "lightkdf",
		Usage: "use less secure scrypt parameters",
	}
	mnemonicGenerateFlag = &cli.BoolFlag{
		Name:  "mnemonic-generate",
		Usage: "Generate a BIP39 mnemonic and derive key using --hd-path",
	}
	mnemonicFlag = &cli.StringFlag{
		Name:  "mnemonic",
		Usage: "Use existing BIP39 mnemonic to derive the key",
	}
	mnemonicPassphraseFlag = &cli.StringFlag{
		Name:  "mnemonic-passphrase",
		Usage: "Optional BIP39 passphrase for mnemonic-to-seed",
	}
	mnemonicBitsFlag = &cli.IntFlag{
		Name:  "mnemonic-bits",
		Usage: "Entropy bits for generated mnemonic (128,160,192,224,256)",
		Value: defaultMnemonicBits,
	}
	hdPathFlag = &cli.StringFlag{
		Name:  "hd-path",
		Usage: "Derivation path used with mnemonic flow",
		Value: defaultHDPath,
	}
)

var errNoPassphrase = errors.New("keyfile password must be given with --passwordfile")

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate new keyfile",
	ArgsUsage: "[ <keyfile> ]",
	Description: `
Generate a new encrypted keyfile holding a secp256k1 signing key.

The key is random unless a BIP39 mnemonic is given with --mnemonic or
requested with --mnemonic-generate. The keyfile can be used with the
--keyfile option of sign and inspect.`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		lightKDFFlag,
		mnemonicGenerateFlag,
		mnemonicFlag,
		mnemonicPassphraseFlag,
		mnemonicBitsFlag,
		hdPathFlag,
	},
	Action: func(ctx *cli.Context) error {
		// Check if keyfile path given and make sure it doesn't already exist.
		keyfilepath := ctx.Args().First()
		if keyfilepath == "" {
			keyfilepath = defaultKeyfileName
		}
		if _, err := os.Stat(keyfilepath); err == nil {
			return fmt.Errorf("keyfile already exists at %s", keyfilepath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("error checking if keyfile exists: %v", err)
		}
		passphrase, err := readPassphrase(ctx)
		if err != nil {
			return err
		}

		var (
			privateKey *ecdsa.PrivateKey
			out        outputGenerate
			mnemonic   = strings.TrimSpace(ctx.String(mnemonicFlag.Name))
		)
		if mnemonic != "" || ctx.Bool(mnemonicGenerateFlag.Name) {
			if mnemonic == "" {
				if mnemonic, err = generateMnemonic(ctx.Int(mnemonicBitsFlag.Name)); err != nil {
					return fmt.Errorf("failed to generate mnemonic: %v", err)
				}
				out.Mnemonic = mnemonic
			}
			out.DerivationPath = ctx.String(hdPathFlag.Name)
			privateKey, err = deriveKeyFromMnemonic(mnemonic, ctx.String(mnemonicPassphraseFlag.Name), out.DerivationPath)
		} else {
			privateKey, err = crypto.GenerateKey()
		}
		if err != nil {
			return fmt.Errorf("failed to create private key: %v", err)
		}

		// Create the keyfile object with a random UUID.
		UUID, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate random uuid: %v", err)
		}
		key := &keystore.Key{
			Id:         UUID,
			Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
			PrivateKey: privateKey,
		}
		scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
		if ctx.Bool(lightKDFFlag.Name) {
			scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
		}
		keyjson, err := keystore.EncryptKey(key, passphrase, scryptN, scryptP)
		if err != nil {
			return fmt.Errorf("error encrypting key: %v", err)
		}

		// Store the file to disk.
		if err := os.MkdirAll(filepath.Dir(keyfilepath), 0700); err != nil {
			return fmt.Errorf("could not create directory %s", filepath.Dir(keyfilepath))
		}
		if err := os.WriteFile(keyfilepath, keyjson, 0600); err != nil {
			return fmt.Errorf("failed to write keyfile to %s: %v", keyfilepath, err)
		}

		out.Address = key.Address.Hex()
		if ctx.Bool(jsonFlag.Name) {
			return printJSON(ctx.App.Writer, out)
		}
		fmt.Fprintln(ctx.App.Writer, "Address:", out.Address)
		if out.Mnemonic != "" {
			fmt.Fprintln(ctx.App.Writer, "Mnemonic:", out.Mnemonic)
		}
		if out.DerivationPath != "" {
			fmt.Fprintln(ctx.App.Writer, "Derivation path:", out.DerivationPath)
		}
		return nil
	},
}

// readPassphrase returns the first line of the --passwordfile file.
func readPassphrase(ctx *cli.Context) (string, error) {
	file := ctx.String(passphraseFlag.Name)
	if file == "" {
		return "", errNoPassphrase
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read password file '%s': %v", file, err)
	}
	return strings.TrimRight(strings.Split(string(content), "\n")[0], "\r"), nil
}
