// Package config loads leaporm configuration.
//
// Sources are layered with koanf. Precedence from highest to lowest:
// flags, LEAPORM_ environment variables, the leaporm.yaml file, defaults.
package config

import "github.com/leapstack-labs/leaporm/pkg/core"

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Config file names, searched in this order.
const (
	ConfigFileName    = "leaporm.yaml"
	ConfigFileNameAlt = "leaporm.yml"
)

// Default configuration values.
const (
	DefaultModelFile = "model.yaml"
	DefaultEnv       = "dev"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDialect   = "postgres"
)

// Config holds all configuration options.
type Config struct {
	// ModelFile is the YAML entity model used by the CLI.
	ModelFile    string               `koanf:"model"`
	Dialect      string               `koanf:"dialect"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, empty when none.
	File string `koanf:"-"`
}

// EnvConfig holds environment-specific overrides.
type EnvConfig struct {
	ModelFile string        `koanf:"model"`
	Target    *TargetConfig `koanf:"target"`
}

// DialectName returns the dialect statements are rendered for: the explicit
// dialect, else the target type, else DefaultDialect.
func (c *Config) DialectName() string {
	switch {
	case c.Dialect != "":
		return c.Dialect
	case c.Target != nil && c.Target.Type != "":
		return c.Target.Type
	default:
		return DefaultDialect
	}
}
