// Package metrics configures collection of the shield meters and renders
// them for command line tools.
package metrics

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool `toml:",omitempty"`
	Report  bool `toml:",omitempty"` // Print collected metrics when a command exits
}

// DefaultConfig is the default config for metrics used in gshield.
var DefaultConfig = Config{
	Enabled: false,
	Report:  false,
}
