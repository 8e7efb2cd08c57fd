// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/minishell/internal/environ"
)

// Export sets and exports variables. Without arguments it lists every
// exported name as `declare -x NAME="VALUE"`, sorted by name.
func Export(_ context.Context, inv *Invocation) int {
	env := inv.Session.Env

	if len(inv.Args) == 1 {
		for _, kv := range env.Exported() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				fmt.Fprintf(inv.Stdout, "declare -x %s\n", name) //nolint:errcheck
				continue
			}

			fmt.Fprintf(inv.Stdout, "declare -x %s=\"%s\"\n", name, escapeDeclare(value)) //nolint:errcheck
		}

		return 0
	}

	status := 0

	for _, arg := range inv.Args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if !environ.ValidName(name) {
			inv.Errorf("`%s': not a valid identifier", arg)

			status = 1

			continue
		}

		if hasValue {
			env.Set(name, value)
		} else {
			env.Export(name)
		}
	}

	return status
}

// escapeDeclare escapes the characters that are special inside double quotes.
func escapeDeclare(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`").Replace(s)
}

// Unset removes variables from the environment.
func Unset(_ context.Context, inv *Invocation) int {
	status := 0

	for _, name := range inv.Args[1:] {
		if !environ.ValidName(name) {
			inv.Errorf("`%s': not a valid identifier", name)

			status = 1

			continue
		}

		inv.Session.Env.Unset(name)
	}

	return status
}

// Env prints the environment passed to child processes, one entry per line.
func Env(_ context.Context, inv *Invocation) int {
	if len(inv.Args) > 1 {
		inv.Errorf("too many arguments")
		return 1
	}

	for _, kv := range inv.Session.Env.Environ() {
		fmt.Fprintln(inv.Stdout, kv) //nolint:errcheck
	}

	return 0
}
