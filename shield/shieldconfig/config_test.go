package shieldconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gshield/crypto/shield"
)

const testConfig = `
ChainID = 1337

[Cipher]
Algorithm = "chacha20-poly1305"
Key = "0x0101010101010101010101010101010101010101010101010101010101010101"

[Preprocess]
SenderCacheSize = 16
Workers = 2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg := Defaults
	require.NoError(t, LoadConfig(writeFile(t, "config.toml", testConfig), &cfg))

	assert.Equal(t, uint64(1337), cfg.ChainID)
	assert.Equal(t, shield.AlgorithmChaCha20Poly1305, cfg.Cipher.Algorithm)
	assert.Equal(t, 16, cfg.Preprocess.SenderCacheSize)
	assert.Equal(t, 2, cfg.Preprocess.Workers)
	// Untouched values keep their defaults.
	assert.Equal(t, Defaults.Preprocess.InputCacheBytes, cfg.Preprocess.InputCacheBytes)
	require.NoError(t, cfg.Validate())

	c, err := cfg.Cipher.NewCipher()
	require.NoError(t, err)
	assert.Equal(t, shield.AlgorithmChaCha20Poly1305, c.Algorithm())
	assert.Equal(t, "chacha20-poly1305", cfg.ChainConfig().Cipher())
}

func TestLoadConfigUnknownField(t *testing.T) {
	cfg := Defaults
	err := LoadConfig(writeFile(t, "bad.toml", "ChainId = 5\n"), &cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad.toml"), err.Error())
}

func TestCipherKeySources(t *testing.T) {
	var cc CipherConfig
	_, err := cc.LoadKey()
	assert.ErrorIs(t, err, errNoKey)

	hexkey := strings.Repeat("ab", 32)
	cc.KeyFile = writeFile(t, "payload.key", hexkey+"\n")
	key, err := cc.LoadKey()
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), key[0])

	cc.Key = "0x" + strings.Repeat("cd", 32)
	key, err = cc.LoadKey()
	require.NoError(t, err)
	assert.Equal(t, byte(0xcd), key[0], "inline key takes precedence")

	cc.Algorithm = "des"
	_, err = cc.NewCipher()
	assert.ErrorIs(t, err, shield.ErrUnknownAlgorithm)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := Defaults
	cfg.Cipher.KeyFile = "/etc/shield/payload.key"

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, &cfg))

	var loaded Config
	require.NoError(t, LoadConfig(writeFile(t, "dump.toml", buf.String()), &loaded))
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := Defaults
	cfg.ChainID = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults
	cfg.Cipher.Algorithm = "rot13"
	assert.ErrorIs(t, cfg.Validate(), shield.ErrUnknownAlgorithm)
}
