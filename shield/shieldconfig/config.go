// Package shieldconfig contains the configuration of the shield tooling.
package shieldconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/tos-network/gshield/core"
	"github.com/tos-network/gshield/crypto/shield"
	"github.com/tos-network/gshield/metrics"
	"github.com/tos-network/gshield/params"
)

var errNoKey = errors.New("no payload key configured")

// Defaults contains default settings for use on the main network.
var Defaults = Config{
	ChainID: params.MainnetChainConfig.ChainID,
	Cipher: CipherConfig{
		Algorithm: params.DefaultCipherAlgorithm,
	},
	Preprocess: core.DefaultPreprocessConfig,
	Metrics:    metrics.DefaultConfig,
}

// Config contains configuration options for shielded transaction handling.
type Config struct {
	ChainID uint64 // Chain ID used for signing and replay protection

	Cipher CipherConfig

	// Preprocessor options
	Preprocess core.PreprocessConfig

	Metrics metrics.Config
}

// CipherConfig selects the payload cipher and its key. Key takes precedence
// over KeyFile.
type CipherConfig struct {
	Algorithm string
	Key       string `toml:",omitempty"` // hex encoded 32-byte key
	KeyFile   string `toml:",omitempty"` // file holding the hex encoded key
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadConfig reads a TOML file into cfg. Fields absent from the file keep
// their current values.
func LoadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Dump writes cfg as TOML.
func Dump(w io.Writer, cfg *Config) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// ChainConfig returns the chain parameters described by cfg.
func (c *Config) ChainConfig() *params.ChainConfig {
	return &params.ChainConfig{
		ChainID:         c.ChainID,
		CipherAlgorithm: c.Cipher.Algorithm,
	}
}

// LoadKey resolves the configured payload key.
func (c *CipherConfig) LoadKey() (shield.Key, error) {
	switch {
	case c.Key != "":
		return shield.ParseKey(c.Key)
	case c.KeyFile != "":
		return shield.KeyFromFile(c.KeyFile)
	default:
		return shield.Key{}, errNoKey
	}
}

// NewCipher builds the configured payload cipher.
func (c *CipherConfig) NewCipher() (*shield.Cipher, error) {
	key, err := c.LoadKey()
	if err != nil {
		return nil, err
	}
	return shield.NewCipher(c.Algorithm, key)
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if err := c.ChainConfig().CheckConfig(); err != nil {
		return err
	}
	_, err := shield.NewCipher(c.Cipher.Algorithm, shield.Key{})
	return err
}
