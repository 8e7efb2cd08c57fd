// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds the flags shared by the root command and its
// subcommands, and the config loading they both need.
package cmdstate

import (
	"github.com/matt-FFFFFF/minishell/internal/config"
	"github.com/urfave/cli/v3"
)

// Names of the global flags.
const (
	ConfigFlag   = "config"
	LogLevelFlag = "log-level"
)

// Flags are defined on the root command and visible to every subcommand.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:      ConfigFlag,
		Usage:     "Read configuration from `FILE` (YAML, or TOML when it ends in .toml)",
		TakesFile: true,
	},
	&cli.StringFlag{
		Name:    LogLevelFlag,
		Usage:   "Log level: debug, info, warn or error",
		Sources: cli.EnvVars("MINISHELL_LOG_LEVEL"),
	},
}

// LoadConfig loads the file named by --config, or the default file when the
// flag is absent, and applies --log-level over it.
func LoadConfig(cmd *cli.Command) (*config.Config, error) {
	path, explicit := cmd.String(ConfigFlag), true
	if path == "" {
		path, explicit = config.DefaultPath(), false
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if lvl := cmd.String(LogLevelFlag); lvl != "" {
		cfg.LogLevel = lvl

		if err := cfg.Validate(); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return cfg, nil
}
