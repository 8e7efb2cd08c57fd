// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/minishell/internal/sysproc"
)

// Cd changes the working directory.
//
//	cd        go to $HOME
//	cd -      go to $OLDPWD and print it
//	cd DIR    go to DIR
//
// PWD and OLDPWD are updated on success.
func Cd(_ context.Context, inv *Invocation) int {
	env := inv.Session.Env

	var (
		dir      string
		announce bool
	)

	switch len(inv.Args) {
	case 1:
		home, ok := env.Get("HOME")
		if !ok || home == "" {
			inv.Errorf("HOME not set")
			return 1
		}

		dir = home
	case 2: //nolint:mnd
		dir = inv.Args[1]
		if dir == "-" {
			old, ok := env.Get("OLDPWD")
			if !ok || old == "" {
				inv.Errorf("OLDPWD not set")
				return 1
			}

			dir, announce = old, true
		}
	default:
		inv.Errorf("too many arguments")
		return 1
	}

	prev, err := getwd()
	if err != nil {
		prev, _ = env.Get("PWD")
	}

	if err := os.Chdir(dir); err != nil {
		inv.Errorf("%s: %s", dir, sysproc.Describe(err))
		return 1
	}

	cur, err := getwd()
	if err != nil {
		cur = dir
	}

	env.Set("OLDPWD", prev)
	env.Set("PWD", cur)

	if announce {
		fmt.Fprintln(inv.Stdout, cur) //nolint:errcheck
	}

	return 0
}
