package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/gshield/cmd/utils"
	"github.com/tos-network/gshield/internal/flags"
	"github.com/tos-network/gshield/metrics"
	"github.com/tos-network/gshield/shield/shieldconfig"
	"github.com/urfave/cli/v2"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

const configKey = "shieldconfig"

var errNoConfig = errors.New("configuration not loaded")

func newApp() *cli.App {
	app := flags.NewApp(gitCommit, gitDate, "a shielded transaction tool")
	app.Metadata = make(map[string]interface{})
	app.Flags = flags.Merge(utils.ConfigFlags, utils.LoggingFlags, utils.MetricsFlags)
	app.Commands = []*cli.Command{
		commandGenerate,
		commandEncrypt,
		commandDecrypt,
		commandSign,
		commandDecode,
		commandCommit,
		commandVerify,
		commandPrepare,
		commandStorage,
		commandInspect,
		commandDumpConfig,
	}
	app.Before = func(ctx *cli.Context) error {
		if err := utils.SetupLogging(ctx); err != nil {
			return err
		}
		cfg, err := utils.MakeConfig(ctx)
		if err != nil {
			return err
		}
		utils.SetupMetrics(cfg.Metrics)
		ctx.App.Metadata[configKey] = cfg
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		cfg, ok := ctx.App.Metadata[configKey].(*shieldconfig.Config)
		if ok && cfg.Metrics.Report {
			metrics.WriteReport(ctx.App.ErrWriter, "")
		}
		return nil
	}
	return app
}

// Commonly used command line flags.
var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
	nonceFlag = &cli.Uint64Flag{
		Name:  "nonce",
		Usage: "nonce the payload is sealed under (the transaction nonce)",
	}
)

// shieldConfig returns the configuration assembled before the command ran.
func shieldConfig(ctx *cli.Context) (*shieldconfig.Config, error) {
	cfg, ok := ctx.App.Metadata[configKey].(*shieldconfig.Config)
	if !ok {
		return nil, errNoConfig
	}
	return cfg, nil
}

// parseHex decodes a hex argument with or without 0x prefix.
func parseHex(what, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", what, err)
	}
	return b, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}
