// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for gshield commands.
package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/tos-network/gshield/internal/flags"
	"github.com/tos-network/gshield/metrics"
	"github.com/tos-network/gshield/shield/shieldconfig"
	"github.com/urfave/cli/v2"
)

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.ShieldCategory,
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:     "chainid",
		Usage:    "Chain ID used for signing and replay protection (default = mainnet)",
		Category: flags.ShieldCategory,
	}

	// Payload cipher
	CipherAlgorithmFlag = &cli.StringFlag{
		Name:     "cipher",
		Usage:    "Payload cipher algorithm (aes-256-gcm, chacha20-poly1305)",
		Category: flags.CipherCategory,
	}
	CipherKeyFlag = &cli.StringFlag{
		Name:     "cipher.key",
		Usage:    "Hex encoded 32-byte payload key",
		Category: flags.CipherCategory,
	}
	CipherKeyFileFlag = &cli.StringFlag{
		Name:     "cipher.keyfile",
		Usage:    "File containing the hex encoded payload key",
		Category: flags.CipherCategory,
	}

	// Preprocessing
	VerifyCommitmentsFlag = &cli.BoolFlag{
		Name:     "verify.commitments",
		Usage:    "Authenticate secret data against the decrypted call input",
		Category: flags.ShieldCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Maximum number of concurrent preprocessing workers",
		Category: flags.ShieldCategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}

	// Metrics flags
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: flags.MetricsCategory,
	}
	MetricsReportFlag = &cli.BoolFlag{
		Name:     "metrics.report",
		Usage:    "Print collected metrics when the command exits",
		Category: flags.MetricsCategory,
	}
)

var (
	// ConfigFlags are the flags that shape shieldconfig.Config.
	ConfigFlags = []cli.Flag{
		ConfigFileFlag,
		ChainIDFlag,
		CipherAlgorithmFlag,
		CipherKeyFlag,
		CipherKeyFileFlag,
		VerifyCommitmentsFlag,
		WorkersFlag,
	}
	// LoggingFlags are the flags controlling the log output.
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogJSONFlag,
	}
	// MetricsFlags are the flags controlling metric collection.
	MetricsFlags = []cli.Flag{
		MetricsEnabledFlag,
		MetricsReportFlag,
	}
)

// SetupLogging installs the root log handler according to the logging flags.
func SetupLogging(ctx *cli.Context) error {
	verbosity := ctx.Int(VerbosityFlag.Name)
	if verbosity < 0 || verbosity > 5 {
		return fmt.Errorf("invalid --%s value %d", VerbosityFlag.Name, verbosity)
	}
	var (
		output   = io.Writer(os.Stderr)
		usecolor = false
	)
	if !ctx.Bool(LogJSONFlag.Name) {
		usecolor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor {
			output = colorable.NewColorable(os.Stderr)
		}
	}
	log.SetDefault(log.NewLogger(NewLogHandler(output, verbosity, ctx.Bool(LogJSONFlag.Name), usecolor)))
	return nil
}

// NewLogHandler creates the handler used by SetupLogging.
func NewLogHandler(w io.Writer, verbosity int, json, usecolor bool) slog.Handler {
	level := log.FromLegacyLevel(verbosity)
	if json {
		return log.JSONHandlerWithLevel(w, level)
	}
	return log.NewTerminalHandlerWithLevel(w, level, usecolor)
}

// MakeConfig assembles the shield configuration: defaults, then the
// --config file, then individual flags.
func MakeConfig(ctx *cli.Context) (*shieldconfig.Config, error) {
	cfg := shieldconfig.Defaults
	if file := ctx.String(ConfigFileFlag.Name); file != "" {
		if err := shieldconfig.LoadConfig(file, &cfg); err != nil {
			return nil, err
		}
	}
	if err := SetShieldConfig(ctx, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetShieldConfig applies shield-related command line flags to the config.
func SetShieldConfig(ctx *cli.Context, cfg *shieldconfig.Config) error {
	if err := CheckExclusive(ctx, CipherKeyFlag, CipherKeyFileFlag); err != nil {
		return err
	}
	if ctx.IsSet(ChainIDFlag.Name) {
		cfg.ChainID = ctx.Uint64(ChainIDFlag.Name)
	}
	if ctx.IsSet(CipherAlgorithmFlag.Name) {
		cfg.Cipher.Algorithm = ctx.String(CipherAlgorithmFlag.Name)
	}
	switch {
	case ctx.IsSet(CipherKeyFlag.Name):
		cfg.Cipher.Key = ctx.String(CipherKeyFlag.Name)
		cfg.Cipher.KeyFile = ""
	case ctx.IsSet(CipherKeyFileFlag.Name):
		cfg.Cipher.Key = ""
		cfg.Cipher.KeyFile = ctx.String(CipherKeyFileFlag.Name)
	}
	if ctx.IsSet(VerifyCommitmentsFlag.Name) {
		cfg.Preprocess.VerifyCommitments = ctx.Bool(VerifyCommitmentsFlag.Name)
	}
	if ctx.IsSet(WorkersFlag.Name) {
		cfg.Preprocess.Workers = ctx.Int(WorkersFlag.Name)
	}
	setMetrics(ctx, &cfg.Metrics)
	return nil
}

func setMetrics(ctx *cli.Context, cfg *metrics.Config) {
	if ctx.IsSet(MetricsEnabledFlag.Name) {
		cfg.Enabled = ctx.Bool(MetricsEnabledFlag.Name)
	}
	if ctx.IsSet(MetricsReportFlag.Name) {
		cfg.Report = ctx.Bool(MetricsReportFlag.Name)
	}
	// A report of a disabled registry would always be empty.
	if cfg.Report {
		cfg.Enabled = true
	}
}

// SetupMetrics enables metric collection if the config asks for it.
func SetupMetrics(cfg metrics.Config) {
	if cfg.Enabled {
		log.Debug("Enabling metrics collection")
	}
	metrics.Setup(cfg)
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user.
func CheckExclusive(ctx *cli.Context, list ...cli.Flag) error {
	set := make([]string, 0, 1)
	for _, flag := range list {
		if name := flag.Names()[0]; ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", strings.Join(set, ", "))
	}
	return nil
}
