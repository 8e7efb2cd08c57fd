// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parser converts shell syntax trees into pipelines the orchestrator
// can run.
//
// Parsing itself is done by mvdan.cc/sh/v3/syntax in its bash dialect. This
// package accepts the subset the shell implements (simple commands, pipes,
// redirections and heredocs) and rejects the rest with ErrUnsupported.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrUnsupported is returned for syntax the shell parses but does not run.
	ErrUnsupported = errors.New("not supported")
	// ErrAmbiguousRedirect is returned for a redirection target that is not a
	// single file or descriptor.
	ErrAmbiguousRedirect = errors.New("ambiguous redirect")
)

func unsupported(what string) error {
	return fmt.Errorf("%s: %w", what, ErrUnsupported)
}

// New returns a parser for the shell's dialect.
func New() *syntax.Parser {
	return syntax.NewParser(syntax.Variant(syntax.LangBash))
}

// Pipeline converts stmt into a pipeline. The statement's own negation is
// left to the caller; and-or lists are not pipelines and are rejected.
func Pipeline(stmt *syntax.Stmt, x *Expander) (command.Pipeline, error) {
	if err := checkStmt(stmt); err != nil {
		return nil, err
	}

	var p command.Pipeline

	if err := flatten(stmt, x, &p); err != nil {
		return nil, err
	}

	return p, nil
}

func checkStmt(stmt *syntax.Stmt) error {
	switch {
	case stmt.Background:
		return unsupported("background job")
	case stmt.Coprocess:
		return unsupported("coprocess")
	}

	return nil
}

func flatten(stmt *syntax.Stmt, x *Expander, p *command.Pipeline) error {
	bin, ok := stmt.Cmd.(*syntax.BinaryCmd)
	if !ok {
		cmd, err := simple(stmt, x)
		if err != nil {
			return err
		}

		*p = append(*p, cmd)

		return nil
	}

	if bin.Op != syntax.Pipe && bin.Op != syntax.PipeAll {
		return unsupported("'" + bin.Op.String() + "' inside a pipeline")
	}

	if len(stmt.Redirs) > 0 {
		return unsupported("redirection of a whole pipeline")
	}

	for _, side := range []*syntax.Stmt{bin.X, bin.Y} {
		if side.Negated {
			return unsupported("'!' inside a pipeline")
		}

		if err := checkStmt(side); err != nil {
			return err
		}
	}

	if err := flatten(bin.X, x, p); err != nil {
		return err
	}

	if bin.Op == syntax.PipeAll {
		left := (*p)[len(*p)-1]
		left.Redirects = append(left.Redirects, command.Redirect{Fd: 2, Op: command.Dup, DupFd: 1})
	}

	return flatten(bin.Y, x, p)
}

// simple converts one simple command with its redirections.
func simple(stmt *syntax.Stmt, x *Expander) (*command.Command, error) {
	cmd := &command.Command{}

	switch c := stmt.Cmd.(type) {
	case nil:
		// Redirections only.
	case *syntax.CallExpr:
		for _, as := range c.Assigns {
			s, err := x.assign(as)
			if err != nil {
				return nil, err
			}

			cmd.Args = append(cmd.Args, s)
		}

		for _, w := range c.Args {
			s, keep, err := x.Word(w)
			if err != nil {
				return nil, err
			}

			if keep {
				cmd.Args = append(cmd.Args, s)
			}
		}
	case *syntax.DeclClause:
		cmd.Args = append(cmd.Args, c.Variant.Value)

		for _, as := range c.Args {
			s, err := x.assign(as)
			if err != nil {
				return nil, err
			}

			if s != "" || !as.Naked {
				cmd.Args = append(cmd.Args, s)
			}
		}
	default:
		return nil, unsupported(commandName(stmt.Cmd))
	}

	for _, r := range stmt.Redirs {
		redirs, err := x.redirect(r)
		if err != nil {
			return nil, err
		}

		cmd.Redirects = append(cmd.Redirects, redirs...)
	}

	return cmd, nil
}

// assign renders an assignment as the literal word NAME=value.
func (x *Expander) assign(as *syntax.Assign) (string, error) {
	if as.Array != nil || as.Index != nil {
		return "", unsupported("arrays")
	}

	if as.Naked {
		if as.Name != nil {
			return as.Name.Value, nil
		}

		s, _, err := x.Word(as.Value)

		return s, err
	}

	value, _, err := x.Word(as.Value)
	if err != nil {
		return "", err
	}

	op := "="
	if as.Append {
		op = "+="
	}

	return as.Name.Value + op + value, nil
}

func (x *Expander) redirect(r *syntax.Redirect) ([]command.Redirect, error) {
	fd := defaultFd(r.Op)

	if r.N != nil {
		n, err := strconv.Atoi(r.N.Value)
		if err != nil {
			return nil, unsupported("{varname} redirection")
		}

		fd = n
	}

	switch r.Op {
	case syntax.Hdoc, syntax.DashHdoc:
		body, err := x.Heredoc(r.Hdoc, quotedWord(r.Word))
		if err != nil {
			return nil, err
		}

		return []command.Redirect{{Fd: fd, Op: command.Heredoc, Body: body}}, nil
	}

	word, _, err := x.Word(r.Word)
	if err != nil {
		return nil, err
	}

	switch r.Op {
	case syntax.RdrOut, syntax.ClbOut:
		return []command.Redirect{{Fd: fd, Op: command.Out, Path: word}}, nil
	case syntax.AppOut:
		return []command.Redirect{{Fd: fd, Op: command.Append, Path: word}}, nil
	case syntax.RdrIn:
		return []command.Redirect{{Fd: fd, Op: command.In, Path: word}}, nil
	case syntax.RdrInOut:
		return []command.Redirect{{Fd: fd, Op: command.ReadWrite, Path: word}}, nil
	case syntax.WordHdoc:
		return []command.Redirect{{Fd: fd, Op: command.Heredoc, Body: word + "\n"}}, nil
	case syntax.RdrAll:
		return bothTo(command.Out, word), nil
	case syntax.AppAll:
		return bothTo(command.Append, word), nil
	case syntax.DplIn, syntax.DplOut:
		if word == "-" {
			return []command.Redirect{{Fd: fd, Op: command.Close}}, nil
		}

		if n, err := strconv.Atoi(word); err == nil && n >= 0 {
			return []command.Redirect{{Fd: fd, Op: command.Dup, DupFd: n}}, nil
		}

		if r.Op == syntax.DplOut && r.N == nil {
			// >&file is &>file.
			return bothTo(command.Out, word), nil
		}

		return nil, fmt.Errorf("%s: %w", word, ErrAmbiguousRedirect)
	default:
		return nil, unsupported("'" + r.Op.String() + "' redirection")
	}
}

// bothTo sends stdout to path and stderr to the same file.
func bothTo(op command.Op, path string) []command.Redirect {
	return []command.Redirect{
		{Fd: 1, Op: op, Path: path},
		{Fd: 2, Op: command.Dup, DupFd: 1},
	}
}

func defaultFd(op syntax.RedirOperator) int {
	switch op {
	case syntax.RdrIn, syntax.RdrInOut, syntax.DplIn, syntax.Hdoc, syntax.DashHdoc, syntax.WordHdoc:
		return 0
	default:
		return 1
	}
}

func commandName(cmd syntax.Command) string {
	switch cmd.(type) {
	case *syntax.Block:
		return "command group"
	case *syntax.Subshell:
		return "subshell"
	case *syntax.IfClause:
		return "if"
	case *syntax.WhileClause:
		return "while"
	case *syntax.ForClause:
		return "for"
	case *syntax.CaseClause:
		return "case"
	case *syntax.FuncDecl:
		return "function definition"
	case *syntax.ArithmCmd, *syntax.LetClause:
		return "arithmetic"
	case *syntax.TestClause:
		return "[["
	case *syntax.TimeClause:
		return "time"
	case *syntax.CoprocClause:
		return "coproc"
	default:
		return fmt.Sprintf("%T", cmd)
	}
}
