// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package builtins contains the commands the shell runs in its own process
// and the dispatcher that recognises them.
package builtins

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/session"
)

// Invocation is one call of a built-in.
type Invocation struct {
	// Args is the full argument list, Args[0] being the built-in's name.
	Args    []string
	Session *session.Session
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Errorf writes a diagnostic of the form "minishell: <name>: <msg>" to stderr.
func (inv *Invocation) Errorf(format string, a ...any) {
	fmt.Fprintf(inv.Stderr, "minishell: %s: %s\n", inv.Args[0], fmt.Sprintf(format, a...)) //nolint:errcheck
}

// Builtin is a command implemented inside the shell.
type Builtin interface {
	Run(ctx context.Context, inv *Invocation) int
}

// Func adapts a plain function to the Builtin interface.
type Func func(ctx context.Context, inv *Invocation) int

// Run calls f.
func (f Func) Run(ctx context.Context, inv *Invocation) int {
	return f(ctx, inv)
}

var _ Builtin = (Func)(nil)

// Registry maps exact, case-sensitive names to built-ins.
type Registry struct {
	builtins map[string]Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Builtin)}
}

// Default returns a registry holding pwd, echo, cd, export, unset, env and exit.
func Default() *Registry {
	r := NewRegistry()
	r.Register("pwd", Func(Pwd))
	r.Register("echo", Func(Echo))
	r.Register("cd", Func(Cd))
	r.Register("export", Func(Export))
	r.Register("unset", Func(Unset))
	r.Register("env", Func(Env))
	r.Register("exit", Func(Exit))

	return r
}

// Register adds or replaces the built-in called name.
func (r *Registry) Register(name string, b Builtin) {
	r.builtins[name] = b
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builtins))
}

// IsBuiltin reports whether name is registered. It never runs anything.
func (r *Registry) IsBuiltin(name string) bool {
	if r == nil || name == "" {
		return false
	}

	_, ok := r.builtins[name]

	return ok
}

// Dispatch runs the built-in named by inv.Args[0], if there is one, and
// stores its status in the session. It reports whether it handled the call;
// when it did not, nothing has been touched.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation) bool {
	if len(inv.Args) == 0 || !r.IsBuiltin(inv.Args[0]) {
		return false
	}

	status := r.builtins[inv.Args[0]].Run(ctx, inv)
	inv.Session.SetStatus(status)

	ctxlog.Debug(ctx, "builtin", "name", inv.Args[0], "status", status)

	return true
}
