// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// MainnetChainConfig is the chain parameters to run a node on the main network.
	MainnetChainConfig = &ChainConfig{
		ChainID:         5124,
		CipherAlgorithm: DefaultCipherAlgorithm,
	}

	// TestnetChainConfig is the chain parameters to run a node on the test network.
	TestnetChainConfig = &ChainConfig{
		ChainID:         5125,
		CipherAlgorithm: DefaultCipherAlgorithm,
	}

	// TestChainConfig is used by unit tests.
	TestChainConfig = &ChainConfig{
		ChainID:         1337,
		CipherAlgorithm: DefaultCipherAlgorithm,
	}
)

// NetworkNames are user friendly names to use in the chain spec banner.
var NetworkNames = map[string]string{
	strconv.FormatUint(MainnetChainConfig.ChainID, 10): "mainnet",
	strconv.FormatUint(TestnetChainConfig.ChainID, 10): "testnet",
}

var errZeroChainID = errors.New("chain id must be non-zero")

// ChainConfig is the core config which determines how shielded transactions
// are signed and which payload cipher protects their inputs.
type ChainConfig struct {
	ChainID uint64 `json:"chainId"` // chainId identifies the current chain and is used for replay protection

	// CipherAlgorithm names the AEAD used for shielded transaction inputs.
	CipherAlgorithm string `json:"cipherAlgorithm,omitempty"`
}

// CheckConfig validates the chain configuration.
func (c *ChainConfig) CheckConfig() error {
	if c.ChainID == 0 {
		return errZeroChainID
	}
	return nil
}

// Cipher returns the configured payload cipher, falling back to the default.
func (c *ChainConfig) Cipher() string {
	if c == nil || c.CipherAlgorithm == "" {
		return DefaultCipherAlgorithm
	}
	return c.CipherAlgorithm
}

// String implements the fmt.Stringer interface.
func (c *ChainConfig) String() string {
	network := NetworkNames[strconv.FormatUint(c.ChainID, 10)]
	if network == "" {
		network = "unknown"
	}
	return fmt.Sprintf("Chain ID: %d (%s), cipher: %s", c.ChainID, network, c.Cipher())
}
