// Package config loads the CLI's YAML configuration file. Flags always
// override file values; the file only sets defaults for repeated runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// maxConfigSize limits config input to prevent memory exhaustion (1MB).
const maxConfigSize = 1 << 20

// Config holds all file-configurable settings for the CLI.
type Config struct {
	Backend  string      `yaml:"backend"`  // "chrome", "wkhtmltopdf", "weasyprint", "minpdf"
	Markdown bool        `yaml:"markdown"` // force the Markdown front-end
	CSS      string      `yaml:"css"`      // path to a stylesheet for the Markdown front-end
	Timeout  string      `yaml:"timeout"`  // Go duration, e.g. "90s"
	Workers  int         `yaml:"workers"`  // parallel conversions (0 = auto)
	Page     PageConfig  `yaml:"page"`
	Tools    ToolsConfig `yaml:"tools"`
}

// PageConfig defines page geometry for backends that honor it.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// ToolsConfig overrides external tool binaries.
type ToolsConfig struct {
	Wkhtmltopdf string `yaml:"wkhtmltopdf"` // binary name or path
	Weasyprint  string `yaml:"weasyprint"`  // binary name or path
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend: "chrome",
		Page: PageConfig{
			Size:        "letter",
			Orientation: "portrait",
			Margin:      0.5,
		},
	}
}

// Load reads and strictly parses a YAML config file on top of the
// defaults; unknown fields are rejected to catch typos.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user's own --config flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > maxConfigSize {
		return cfg, fmt.Errorf("%w: %s exceeds %d bytes", ErrConfigParse, path, maxConfigSize)
	}

	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// ParseTimeout converts the config's timeout string to a duration.
// An empty string means no override (zero duration).
func (c Config) ParseTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, c.Timeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, c.Timeout)
	}
	return d, nil
}
