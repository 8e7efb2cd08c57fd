// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell runs statement lists and drives the read-eval loop.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/parser"
	"github.com/matt-FFFFFF/minishell/internal/pipeline"
	"github.com/matt-FFFFFF/minishell/internal/session"
	"mvdan.cc/sh/v3/syntax"
)

// Executor runs one pipeline. *pipeline.Orchestrator is the production
// implementation.
type Executor interface {
	Execute(ctx context.Context, sess *session.Session, p command.Pipeline) (*pipeline.Run, error)
}

// Runner executes parsed statements against a session.
type Runner struct {
	Session  *session.Session
	Executor Executor
	Stderr   io.Writer
	// Pid is the value of $$.
	Pid int
}

// NewRunner returns a Runner reporting diagnostics on stderr.
func NewRunner(sess *session.Session, exec Executor) *Runner {
	return &Runner{
		Session:  sess,
		Executor: exec,
		Stderr:   os.Stderr,
		Pid:      os.Getpid(),
	}
}

// Run executes stmts in order. It stops early once the session is stopped or
// exited, or ctx is done.
//
// A returned error is a process primitive failure from the executor; every
// other failure is reported on Stderr and recorded as the session status.
func (r *Runner) Run(ctx context.Context, stmts []*syntax.Stmt) error {
	for _, s := range stmts {
		if r.halted(ctx) {
			return nil
		}

		if err := r.stmt(ctx, s); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) halted(ctx context.Context) bool {
	return r.Session.Stop || r.Session.Exited || ctx.Err() != nil
}

func (r *Runner) stmt(ctx context.Context, s *syntax.Stmt) error {
	if bin, ok := s.Cmd.(*syntax.BinaryCmd); ok && (bin.Op == syntax.AndStmt || bin.Op == syntax.OrStmt) {
		if err := r.andOr(ctx, s, bin); err != nil {
			return err
		}
	} else if err := r.pipeline(ctx, s); err != nil {
		return err
	}

	if s.Negated && !r.Session.Exited && !r.Session.Stop {
		if r.Session.Status == session.StatusSuccess {
			r.Session.SetStatus(session.StatusFailure)
		} else {
			r.Session.SetStatus(session.StatusSuccess)
		}
	}

	return nil
}

// andOr runs "x && y" or "x || y". y runs only when the status of x says so.
func (r *Runner) andOr(ctx context.Context, s *syntax.Stmt, bin *syntax.BinaryCmd) error {
	switch {
	case s.Background:
		r.report(fmt.Errorf("background job: %w", parser.ErrUnsupported))
		return nil
	case len(s.Redirs) > 0:
		r.report(fmt.Errorf("redirection of a command list: %w", parser.ErrUnsupported))
		return nil
	}

	if err := r.stmt(ctx, bin.X); err != nil {
		return err
	}

	if r.halted(ctx) {
		return nil
	}

	succeeded := r.Session.Status == session.StatusSuccess
	if succeeded != (bin.Op == syntax.AndStmt) {
		return nil
	}

	return r.stmt(ctx, bin.Y)
}

func (r *Runner) pipeline(ctx context.Context, s *syntax.Stmt) error {
	p, err := parser.Pipeline(s, &parser.Expander{Session: r.Session, Pid: r.Pid})
	if err != nil {
		r.report(err)
		return nil
	}

	ctxlog.Debug(ctx, "running statement", "session", r.Session.ID, "stages", len(p))

	_, err = r.Executor.Execute(ctx, r.Session, p)

	return err //nolint:wrapcheck
}

// report prints err and sets the status: 1 for a bad redirection, 2 for
// anything the shell cannot run.
func (r *Runner) report(err error) {
	fmt.Fprintf(r.Stderr, "minishell: %s\n", err) //nolint:errcheck

	if errors.Is(err, parser.ErrAmbiguousRedirect) {
		r.Session.SetStatus(session.StatusFailure)
		return
	}

	r.Session.SetStatus(session.StatusUsage)
}
