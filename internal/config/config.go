// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package config layers the CLI configuration: defaults, an optional YAML
// config file and command-line flags, flags winning.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// CodeConfigError marks invalid CLI configuration.
const CodeConfigError = "CONFIG_ERROR"

// Config holds the CLI settings.
type Config struct {
	LogFormat   string   `koanf:"log-format"`
	Verbose     bool     `koanf:"verbose"`
	Output      string   `koanf:"output"`
	Assignments []string `koanf:"assignments"`
	Filters     []string `koanf:"filters"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogFormat: "text",
		Output:    "text",
	}
}

// Load merges the defaults, the YAML config file at path (when non-empty)
// and the given flag set, in that order.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code(CodeConfigError).
				With("path", path).
				Wrapf(err, "loading config file %q", path)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeConfigError).Wrapf(err, "reading flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code(CodeConfigError).Wrapf(err, "unmarshaling configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code(CodeConfigError).
			With("log-format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.Output != "text" && c.Output != "yaml" {
		return oops.Code(CodeConfigError).
			With("output", c.Output).
			Errorf("output must be 'text' or 'yaml', got %q", c.Output)
	}
	return nil
}
