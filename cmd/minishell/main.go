// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the minishell binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/minishell/cmd"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/signalbroker"
	"github.com/matt-FFFFFF/minishell/internal/stage"
	"github.com/urfave/cli/v3"
)

func main() {
	// A pipeline stage is this binary started again; it never gets here
	// from Init.
	if stage.Init() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := cmd.RootCmd.Run(ctx, os.Args)

	signalbroker.Stop(sigCh)
	cancel()

	os.Exit(exitCode(err)) //nolint:revive
}

// exitCode prints the message carried by err, if any, and returns the status
// the process ends with.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if !errors.As(err, &ec) {
		fmt.Fprintf(os.Stderr, "minishell: %s\n", err) //nolint:errcheck
		return 1
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "minishell: %s\n", msg) //nolint:errcheck
	}

	return ec.ExitCode()
}
