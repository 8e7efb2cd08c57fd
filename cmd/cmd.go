// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/minishell"
	"github.com/matt-FFFFFF/minishell/cmd/cmdstate"
	"github.com/matt-FFFFFF/minishell/cmd/config"
	"github.com/matt-FFFFFF/minishell/internal/builtins"
	"github.com/matt-FFFFFF/minishell/internal/color"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/pipeline"
	"github.com/matt-FFFFFF/minishell/internal/session"
	"github.com/matt-FFFFFF/minishell/internal/shell"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	commandFlag = "command"
	scriptArg   = "script"
)

// RootCmd runs the shell. Its exit status is the shell's last status,
// carried as a cli.ExitCoder.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		config.ConfigCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "minishell",
	Version:   minishell.Version + " (" + minishell.Commit + ")",
	Description: `minishell is a small POSIX-style command shell. It runs simple commands,
pipelines, redirections and heredocs, with pwd, echo, cd, export, unset, env
and exit built in. Without -c or SCRIPT it reads commands from standard input,
prompting when that is a terminal.`,
	Usage:     "minishell [-c COMMAND | SCRIPT]",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      scriptArg,
			UsageText: "[SCRIPT]",
		},
	},
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    commandFlag,
			Aliases: []string{"c"},
			Usage:   "Run `COMMAND` and exit",
		},
	}, cmdstate.Flags...),
	Action: actionFunc,
	// main turns the returned error into the process exit status.
	ExitErrHandler: func(context.Context, *cli.Command, error) {},
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := cmdstate.LoadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), session.StatusUsage)
	}

	mode, _ := color.ParseMode(cfg.Color)
	color.SetMode(mode)

	ctx, err = ctxlog.Configure(ctx, os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return cli.Exit(err.Error(), session.StatusUsage)
	}

	src, interactive, err := lineSource(cmd)
	if err != nil {
		return cli.Exit(err.Error(), session.StatusNotFound)
	}

	defer src.Close() //nolint:errcheck

	orch, err := pipeline.New(builtins.Default())
	if err != nil {
		return cli.Exit(err.Error(), session.StatusFailure)
	}

	sess := session.New(os.Environ())
	sess.Interactive = interactive

	ctxlog.Debug(ctx, "session started", "session", sess.ID, "interactive", interactive, "version", minishell.Version)

	repl := &shell.REPL{
		Runner:             shell.NewRunner(sess, orch),
		Source:             src,
		Prompt:             cfg.Prompt,
		ContinuationPrompt: cfg.ContinuationPrompt,
	}

	if err := repl.Run(ctx); err != nil {
		if errors.Is(err, sysproc.ErrPrimitive) {
			_ = src.Close()

			sysproc.Fatal(err)
		}

		return cli.Exit(err.Error(), session.StatusFailure)
	}

	if sess.Status != session.StatusSuccess {
		return cli.Exit("", sess.Status)
	}

	return nil
}

// lineSource picks where commands come from: -c, a script file, the
// terminal, or piped standard input. Only the terminal is interactive.
func lineSource(cmd *cli.Command) (shell.LineSource, bool, error) {
	if cmd.IsSet(commandFlag) {
		return shell.NewReaderSource(strings.NewReader(cmd.String(commandFlag))), false, nil
	}

	if script := cmd.StringArg(scriptArg); script != "" {
		f, err := os.Open(script)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %s", script, sysproc.Describe(err))
		}

		return &fileSource{LineSource: shell.NewReaderSource(f), f: f}, false, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())) {
		return shell.NewTerminalSource(), true, nil
	}

	return shell.NewReaderSource(os.Stdin), false, nil
}

// fileSource closes the script file along with the source.
type fileSource struct {
	shell.LineSource
	f io.Closer
}

func (s *fileSource) Close() error {
	return s.f.Close() //nolint:wrapcheck
}
