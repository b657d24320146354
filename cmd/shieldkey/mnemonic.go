package main

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	defaultMnemonicBits = 128
	defaultHDPath       = "m/44'/60'/0'/0/0"
	hdHardenedOffset    = uint32(0x80000000)
)

func generateMnemonic(bits int) (string, error) {
	switch bits {
	case 128, 160, 192, 224, 256:
	default:
		return "", fmt.Errorf("invalid mnemonic bits %d (allowed: 128,160,192,224,256)", bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// deriveKeyFromMnemonic derives a secp256k1 key along a BIP32 path.
func deriveKeyFromMnemonic(mnemonic, passphrase, derivationPath string) (*ecdsa.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, fmt.Errorf("invalid hd path %q: %w", derivationPath, err)
	}
	key, chainCode, err := deriveBIP32Master(seed)
	if err != nil {
		return nil, err
	}
	for _, index := range path {
		if key, chainCode, err = deriveBIP32Child(key, chainCode, index); err != nil {
			return nil, err
		}
	}
	return crypto.ToECDSA(key)
}

func deriveBIP32Master(seed []byte) ([]byte, []byte, error) {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)

	key, chainCode := sum[:32], sum[32:]
	if v := new(big.Int).SetBytes(key); v.Sign() == 0 || v.Cmp(crypto.S256().Params().N) >= 0 {
		return nil, nil, fmt.Errorf("invalid bip32 master key")
	}
	return key, chainCode, nil
}

func deriveBIP32Child(parentKey, parentChainCode []byte, index uint32) ([]byte, []byte, error) {
	data := make([]byte, 37)
	if index >= hdHardenedOffset {
		copy(data[1:33], parentKey)
	} else {
		_, pub := btcec.PrivKeyFromBytes(parentKey)
		copy(data[:33], pub.SerializeCompressed())
	}
	binary.BigEndian.PutUint32(data[33:], index)

	mac := hmac.New(sha512.New, parentChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	n := crypto.S256().Params().N
	il := new(big.Int).SetBytes(sum[:32])
	if il.Sign() == 0 || il.Cmp(n) >= 0 {
		return nil, nil, fmt.Errorf("invalid bip32 child scalar")
	}
	child := il.Add(il, new(big.Int).SetBytes(parentKey))
	child.Mod(child, n)
	if child.Sign() == 0 {
		return nil, nil, fmt.Errorf("invalid bip32 child key: zero")
	}
	childKey := make([]byte, 32)
	child.FillBytes(childKey)
	return childKey, sum[32:], nil
}
