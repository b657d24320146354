package flags

import (
	"github.com/tos-network/gshield/params"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	app.Copyright = "Copyright 2024-2026 The gshield Authors"
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// FlagNames returns the primary names of the given flags, in order.
func FlagNames(list []cli.Flag) []string {
	names := make([]string, 0, len(list))
	for _, f := range list {
		names = append(names, f.Names()[0])
	}
	return names
}
