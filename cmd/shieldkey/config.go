package main

import (
	"github.com/tos-network/gshield/shield/shieldconfig"
	"github.com/urfave/cli/v2"
)

var commandDumpConfig = &cli.Command{
	Name:  "dumpconfig",
	Usage: "show configuration values",
	Description: `
The dumpconfig command shows configuration values after flags and the
--config file are applied.`,
	Action: func(ctx *cli.Context) error {
		cfg, err := shieldConfig(ctx)
		if err != nil {
			return err
		}
		return shieldconfig.Dump(ctx.App.Writer, cfg)
	},
}
