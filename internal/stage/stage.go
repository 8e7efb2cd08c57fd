// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package stage is the child side of a pipeline stage.
//
// The Go runtime cannot fork without exec, so every stage is this binary
// re-executed with a hidden argument, reading the encoded command from
// descriptor 3. The child applies the command's redirections, runs a built-in or replaces itself with
// the external program, exactly as a forked shell would.
package stage

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/minishell/internal/builtins"
	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/redirect"
	"github.com/matt-FFFFFF/minishell/internal/resolver"
	"github.com/matt-FFFFFF/minishell/internal/session"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
)

// Arg marks a process started as a pipeline stage.
const Arg = "__minishell_stage"

// PayloadFd is the descriptor a stage reads its payload from. The payload
// travels in a file rather than on the command line, which caps a single
// argument at a fraction of what an environment or argument list may hold.
const PayloadFd = 3

// ErrPayload is returned when a stage payload cannot be decoded.
var ErrPayload = errors.New("invalid stage payload")

// Payload is everything a stage needs from the parent shell.
type Payload struct {
	Command command.Command
	// Env holds every entry of the session environment, valued or not.
	Env         []string
	Status      int
	Interactive bool
	LogLevel    string
}

// Prepare returns the argument vector that starts self as a stage running
// cmd, and the payload file the stage reads. The file is unlinked and
// positioned at its start. The caller passes it as the child's descriptor
// PayloadFd and closes it once the child has started.
func Prepare(self string, cmd *command.Command, sess *session.Session) ([]string, *os.File, error) {
	p := Payload{
		Command:     *cmd,
		Env:         sess.Env.Entries(),
		Status:      sess.Status,
		Interactive: sess.Interactive,
		LogLevel:    ctxlog.LevelVar.Level().String(),
	}

	f, err := os.CreateTemp("", "minishell-stage-")
	if err != nil {
		return nil, nil, fmt.Errorf("stage payload: %w", err)
	}

	// The open descriptors keep the unlinked file alive.
	_ = os.Remove(f.Name())

	if err := Encode(f, &p); err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stage payload: %w", err)
	}

	return []string{self, Arg}, f, nil
}

// Encode writes p to w.
func Encode(w io.Writer, p *Payload) error {
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("encode stage payload: %w", err)
	}

	return nil
}

// Decode is the inverse of Encode.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Join(ErrPayload, err)
	}

	return &p, nil
}

// Init runs the stage and exits when the process was started from Prepare.
// Otherwise it returns false. main, and TestMain in packages that spawn
// stages, call it before anything else.
func Init() bool {
	if len(os.Args) != 2 || os.Args[1] != Arg { //nolint:mnd
		return false
	}

	f := os.NewFile(PayloadFd, "stage-payload")
	p, err := Decode(f)

	// The descriptor is free for the command's own redirections.
	_ = f.Close()

	if err != nil {
		sysproc.Fatal(err)
		return true
	}

	stopSignals()

	os.Exit(Run(context.Background(), p)) //nolint:revive

	return true
}

// stopSignals makes SIGINT and SIGQUIT end the stage with 128+signo until the
// image is replaced. The Go runtime's default for SIGQUIT is a stack dump.
func stopSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		sig := <-ch
		os.Exit(session.StatusSignalBase + int(sig.(syscall.Signal))) //nolint:forcetypeassert,revive
	}()
}

// Run executes p in the current process and returns the stage status.
// An external command never returns: resolver.Exec replaces the image or
// exits.
func Run(ctx context.Context, p *Payload) int {
	if lvl, ok := ctxlog.ParseLevel(p.LogLevel); ok {
		ctxlog.LevelVar.Set(lvl)
	}

	return run(ctx, p, os.Stderr, builtins.Default(), resolver.Exec)
}

func run(ctx context.Context, p *Payload, stderr io.Writer, reg *builtins.Registry, exec func(argv, env []string)) int {
	sess := session.New(p.Env)
	sess.Status = p.Status
	sess.Interactive = p.Interactive

	ctxlog.Debug(ctx, "stage", "pid", os.Getpid(), "command", p.Command.String())

	if err := redirect.Apply(p.Command.Redirects); err != nil {
		if errors.Is(err, sysproc.ErrPrimitive) {
			sysproc.FatalTo(stderr, err)
			return sysproc.ExitFatal
		}

		fmt.Fprintf(stderr, "minishell: %s\n", err) //nolint:errcheck

		return session.StatusFailure
	}

	if len(p.Command.Args) == 0 {
		return session.StatusSuccess
	}

	inv := &builtins.Invocation{
		Args:    p.Command.Args,
		Session: sess,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  stderr,
	}
	if reg.Dispatch(ctx, inv) {
		return sess.Status
	}

	exec(p.Command.Args, sess.Env.Environ())

	// exec only returns when stubbed.
	return sess.Status
}
