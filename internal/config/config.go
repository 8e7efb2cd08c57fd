// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the shell's configuration file.
//
// The file is YAML unless its name ends in ".toml".
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/minishell/internal/color"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/spf13/afero"
)

// FileName is the name of the per-user config file in the home directory.
const FileName = ".minishell.yaml"

const (
	defaultPrompt             = "minishell$ "
	defaultContinuationPrompt = "> "
)

var (
	// ErrInvalidYaml is returned when the config file cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidToml is returned when a .toml config file cannot be decoded.
	ErrInvalidToml = errors.New("invalid TOML")
	// ErrRead is returned when an explicitly named config file cannot be read.
	ErrRead = errors.New("cannot read config file")
	// ErrInvalidValue is returned when a field holds a value the shell does not accept.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config is the effective shell configuration.
type Config struct {
	Prompt             string `toml:"prompt"              yaml:"prompt"`
	ContinuationPrompt string `toml:"continuation_prompt" yaml:"continuation_prompt"`
	LogLevel           string `toml:"log_level"           yaml:"log_level,omitempty"`
	LogFormat          string `toml:"log_format"          yaml:"log_format"`
	Color              string `toml:"color"               yaml:"color"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Prompt:             defaultPrompt,
		ContinuationPrompt: defaultContinuationPrompt,
		LogFormat:          ctxlog.FormatPretty,
		Color:              string(color.ModeAuto),
	}
}

// DefaultPath returns ~/.minishell.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, FileName)
}

// Load reads the config at path over the defaults.
// When explicit is false a missing file is not an error.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, errors.Join(ErrRead, err)
	}

	decode := Decode
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		decode = DecodeTOML
	}

	if err := decode(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode unmarshals data into cfg, keeping fields the document leaves out,
// and validates the result.
func Decode(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYaml, err) //nolint:errorlint
	}

	return cfg.Validate()
}

// DecodeTOML is Decode for a TOML document.
func DecodeTOML(data []byte, cfg *Config) error {
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToml, err) //nolint:errorlint
	}

	return cfg.Validate()
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	var errs []error

	if c.LogLevel != "" {
		if _, ok := ctxlog.ParseLevel(c.LogLevel); !ok {
			errs = append(errs, fmt.Errorf("%w: log_level %q", ErrInvalidValue, c.LogLevel))
		}
	}

	switch c.LogFormat {
	case "", ctxlog.FormatPretty, ctxlog.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: log_format %q", ErrInvalidValue, c.LogFormat))
	}

	if _, err := color.ParseMode(c.Color); err != nil {
		errs = append(errs, fmt.Errorf("%w: color: %w", ErrInvalidValue, err))
	}

	return errors.Join(errs...)
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return b, nil
}
