// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/parser"
	"github.com/matt-FFFFFF/minishell/internal/session"
	"mvdan.cc/sh/v3/syntax"
)

// REPL reads input a line at a time and runs each complete statement list.
//
// Input that ends inside a quote, a heredoc or after a pipe is not run yet:
// the next line is requested with ContinuationPrompt and appended.
type REPL struct {
	Runner             *Runner
	Source             LineSource
	Prompt             string
	ContinuationPrompt string
}

// Run loops until input is exhausted, the exit built-in ran, or ctx is done.
// The exit status of the shell is then Runner.Session.Status.
//
// In a non-interactive session a syntax error ends the loop with status 2.
func (r *REPL) Run(ctx context.Context) error {
	sess := r.Runner.Session
	p := parser.New()

	var pending strings.Builder

	for !sess.Exited && ctx.Err() == nil {
		prompt := r.Prompt
		if pending.Len() > 0 {
			prompt = r.ContinuationPrompt
		}

		line, err := r.Source.ReadLine(prompt)

		switch {
		case errors.Is(err, ErrInterrupted):
			pending.Reset()

			sess.Status = session.StatusInterrupted

			continue
		case errors.Is(err, io.EOF):
			r.eof(pending.Len() > 0)
			return nil
		case err != nil:
			return err
		}

		pending.WriteString(line)
		pending.WriteByte('\n')

		f, err := p.Parse(strings.NewReader(pending.String()), "")
		if incomplete(err) {
			continue
		}

		pending.Reset()

		if err != nil {
			r.Runner.report(err)

			if !sess.Interactive {
				return nil
			}

			continue
		}

		sess.Stop = false

		ctxlog.Debug(ctx, "line parsed", "session", sess.ID, "statements", len(f.Stmts))

		if err := r.Runner.Run(ctx, f.Stmts); err != nil {
			return err
		}
	}

	return nil
}

// eof handles the end of input. Unfinished input is a syntax error.
func (r *REPL) eof(unfinished bool) {
	sess := r.Runner.Session

	if unfinished {
		r.Runner.report(errors.New("syntax error: unexpected end of file"))
	}

	if sess.Interactive {
		fmt.Fprintln(r.Runner.Stderr, "exit") //nolint:errcheck
	}
}

// incomplete reports whether err only means more input is needed.
func incomplete(err error) bool {
	if err == nil {
		return false
	}

	if syntax.IsIncomplete(err) {
		return true
	}

	var perr syntax.ParseError

	return errors.As(err, &perr) && strings.HasPrefix(perr.Text, "unclosed here-document")
}
