// Package config supplies defaults for the CLI flags from the
// environment (optionally seeded from a .env file) and an optional
// .lsdeps.yaml in the project directory. Flags always win over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project configuration file.
const FileName = ".lsdeps.yaml"

// Config holds pre-flag defaults. Pointer fields distinguish "unset" from
// a zero value.
type Config struct {
	Depth     *int    `yaml:"depth"`
	Color     *string `yaml:"color"` // auto, always or never
	Unicode   *bool   `yaml:"unicode"`
	Long      *bool   `yaml:"long"`
	Parseable *bool   `yaml:"parseable"`
}

// Load reads defaults for the given project directory: .env (if present)
// feeds the environment, then .lsdeps.yaml, then LSDEPS_* environment
// variables on top.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	path := filepath.Join(dir, FileName)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LSDEPS_DEPTH"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LSDEPS_DEPTH %q: %w", v, err)
		}
		c.Depth = &depth
	}
	if v := os.Getenv("LSDEPS_COLOR"); v != "" {
		c.Color = &v
	}
	if v := os.Getenv("LSDEPS_UNICODE"); v != "" {
		unicode, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LSDEPS_UNICODE %q: %w", v, err)
		}
		c.Unicode = &unicode
	}
	if v := os.Getenv("LSDEPS_LONG"); v != "" {
		long, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LSDEPS_LONG %q: %w", v, err)
		}
		c.Long = &long
	}
	if v := os.Getenv("LSDEPS_PARSEABLE"); v != "" {
		parseable, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LSDEPS_PARSEABLE %q: %w", v, err)
		}
		c.Parseable = &parseable
	}
	return nil
}
