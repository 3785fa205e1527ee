// Package config loads the optional YAML run configuration. Values resolve
// in three layers: built-in defaults, then the config file, then command-line
// flags (merged by the CLI, which knows which flags were set).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pixelgardenlabs.io/pgl-mirror/pkg/pathmirror"
)

// DefaultFileName is the config file looked up when --config is not given.
const DefaultFileName = "pgl-mirror.yaml"

// Config holds the run configuration of the tool.
type Config struct {
	// LogLevel is one of debug, notice, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// KeepExtra retains destination entries that have no source counterpart
	// instead of deleting them.
	KeepExtra bool `yaml:"keepExtra"`

	// ArchiveExtra, when set, preserves pruned entries in a compressed
	// tarball (.tar.gz, .tgz or .tar.zst) before removal.
	ArchiveExtra string `yaml:"archiveExtra"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
	}
}

// Load reads the configuration file at path over the defaults. A missing file
// is only an error when explicit is true (the user named the file); the
// default lookup silently falls back to Default().
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values that have a constrained domain.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "notice", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.ArchiveExtra != "" {
		if _, err := pathmirror.ArchiveFormatFromPath(c.ArchiveExtra); err != nil {
			return err
		}
	}
	return nil
}
