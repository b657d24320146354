package flags

import (
	"strings"
	"testing"

	"github.com/tos-network/gshield/params"
	"github.com/urfave/cli/v2"
)

func TestNewApp(t *testing.T) {
	app := NewApp("0123456789abcdef", "20260101", "test tool")
	if app.Usage != "test tool" {
		t.Fatalf("usage mismatch: %q", app.Usage)
	}
	if !strings.HasPrefix(app.Version, params.VersionWithMeta) {
		t.Fatalf("version %q lacks release prefix %q", app.Version, params.VersionWithMeta)
	}
	if !strings.Contains(app.Version, "01234567") {
		t.Fatalf("version %q lacks commit", app.Version)
	}
}

func TestMerge(t *testing.T) {
	a := []cli.Flag{&cli.StringFlag{Name: "a"}, &cli.BoolFlag{Name: "b"}}
	b := []cli.Flag{&cli.IntFlag{Name: "c"}}

	merged := Merge(a, nil, b)
	got := strings.Join(FlagNames(merged), ",")
	if got != "a,b,c" {
		t.Fatalf("merged flags: have %s, want a,b,c", got)
	}
}
