// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline runs a parsed pipeline: one process per stage, joined by
// pipes, or no process at all for a lone built-in.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/minishell/internal/builtins"
	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/heredoc"
	"github.com/matt-FFFFFF/minishell/internal/redirect"
	"github.com/matt-FFFFFF/minishell/internal/session"
	"github.com/matt-FFFFFF/minishell/internal/stage"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
)

// Stage is the record of one pipeline stage.
type Stage struct {
	// Pid is the child's process ID, or -1 when no process was started.
	Pid    int
	Forked bool
	Status int

	proc *os.Process
}

// Run is the outcome of one Execute call.
type Run struct {
	Stages []Stage
}

// Forks returns the number of processes started.
func (r *Run) Forks() int {
	n := 0

	for _, s := range r.Stages {
		if s.Forked {
			n++
		}
	}

	return n
}

// Status returns the status of the last stage, or 0 for an empty run.
func (r *Run) Status() int {
	if len(r.Stages) == 0 {
		return 0
	}

	return r.Stages[len(r.Stages)-1].Status
}

// Orchestrator starts and reaps pipeline stages.
type Orchestrator struct {
	// Self is the path of this executable, started in stage mode for every
	// forked stage.
	Self     string
	Builtins *builtins.Registry
}

// New returns an Orchestrator re-executing the running binary.
func New(reg *builtins.Registry) (*Orchestrator, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot locate own executable: %w", err)
	}

	return &Orchestrator{Self: self, Builtins: reg}, nil
}

// Execute runs p and records the final status in sess.
//
// Nothing is started when sess.Stop is set or ctx is done. A returned error is
// always a *sysproc.PrimitiveError; every descriptor the orchestrator opened
// has been closed and every started stage reaped by then.
func (o *Orchestrator) Execute(ctx context.Context, sess *session.Session, p command.Pipeline) (*Run, error) {
	run := &Run{}

	if len(p) == 0 || stopped(ctx, sess) {
		return run, nil
	}

	cleanup, err := heredoc.Materialize(ctx, p)
	defer func() {
		if cerr := cleanup(); cerr != nil {
			ctxlog.Warn(ctx, "heredoc cleanup", "error", cerr)
		}
	}()

	if err != nil {
		fmt.Fprintf(os.Stderr, "minishell: %s\n", err) //nolint:errcheck
		sess.SetStatus(session.StatusFailure)

		return run, nil
	}

	if len(p) == 1 {
		if name, ok := p[0].Name(); ok && o.Builtins.IsBuiltin(name) {
			return o.runBuiltin(ctx, sess, p[0])
		}
	}

	ctxlog.Debug(ctx, "pipeline", "session", sess.ID, "stages", len(p), "pipeline", p.String())

	spawnErr := o.spawn(ctx, sess, p, run)
	o.reap(ctx, sess, run)

	return run, spawnErr
}

func stopped(ctx context.Context, sess *session.Session) bool {
	return sess.Stop || ctx.Err() != nil
}

// spawn starts one stage per command. Stage i reads from the pipe written by
// stage i-1 and writes to the pipe read by stage i+1; the first and last
// stages use the shell's own stdin and stdout.
func (o *Orchestrator) spawn(ctx context.Context, sess *session.Session, p command.Pipeline, run *Run) error {
	var prevRead *os.File

	closePrev := func() {
		if prevRead != nil {
			_ = prevRead.Close()
			prevRead = nil
		}
	}
	defer closePrev()

	env := sess.Env.Environ()

	for i, cmd := range p {
		if stopped(ctx, sess) {
			ctxlog.Debug(ctx, "pipeline abandoned", "at_stage", i)
			return nil
		}

		last := i == len(p)-1

		var r, w *os.File

		if !last {
			var err error

			r, w, err = sysproc.Pipe()
			if err != nil {
				return err //nolint:wrapcheck
			}
		}

		argv, payload, err := stage.Prepare(o.Self, cmd, sess)
		if err != nil {
			closeAll(r, w)
			return &sysproc.PrimitiveError{Op: sysproc.OpFork, Err: err}
		}

		files := []*os.File{os.Stdin, os.Stdout, os.Stderr, payload}
		if prevRead != nil {
			files[0] = prevRead
		}

		if w != nil {
			files[1] = w
		}

		proc, err := sysproc.Spawn(o.Self, argv, &os.ProcAttr{Env: env, Files: files})

		_ = payload.Close()

		if err != nil {
			closeAll(r, w)
			return err //nolint:wrapcheck
		}

		ctxlog.Debug(ctx, "stage started", "index", i, "pid", proc.Pid, "stdin", files[0].Fd(), "stdout", files[1].Fd())

		run.Stages = append(run.Stages, Stage{Pid: proc.Pid, Forked: true, proc: proc})

		// The child holds its own copies now.
		closePrev()

		prevRead = r

		if w != nil {
			_ = w.Close()
		}
	}

	return nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// runBuiltin runs a lone built-in in the shell process. Its redirections are
// applied inside a redirect.Scope, so every descriptor the shell held before
// is in the same state afterwards.
func (o *Orchestrator) runBuiltin(ctx context.Context, sess *session.Session, cmd *command.Command) (*Run, error) {
	run := &Run{Stages: []Stage{{Pid: -1}}}
	scope := redirect.NewScope()

	var result error

	if err := scope.Apply(cmd.Redirects); err != nil {
		if errors.Is(err, sysproc.ErrPrimitive) {
			result = err
		} else {
			fmt.Fprintf(os.Stderr, "minishell: %s\n", err) //nolint:errcheck
		}

		sess.SetStatus(session.StatusFailure)
	} else {
		o.Builtins.Dispatch(ctx, &builtins.Invocation{
			Args:    cmd.Args,
			Session: sess,
			Stdin:   os.Stdin,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		})
	}

	if err := scope.Restore(); err != nil {
		result = errors.Join(result, err)
	}

	run.Stages[0].Status = sess.Status

	return run, result
}
