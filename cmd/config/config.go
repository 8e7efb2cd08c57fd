// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config implements the `config` subcommand.
package config

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/minishell/cmd/cmdstate"
	"github.com/urfave/cli/v3"
)

// ConfigCmd prints the effective configuration.
var ConfigCmd = &cli.Command{
	Name:   "config",
	Usage:  "Print the effective configuration as YAML",
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	cfg, err := cmdstate.LoadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	b, err := cfg.YAML()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if _, err := fmt.Fprint(cmd.Root().Writer, string(b)); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}
