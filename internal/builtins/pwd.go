// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/minishell/internal/sysproc"
)

// getwd is replaced in tests.
var getwd = os.Getwd

// Pwd prints the working directory. Arguments are ignored.
func Pwd(_ context.Context, inv *Invocation) int {
	dir, err := getwd()
	if err != nil {
		inv.Errorf("error retrieving current directory: %s", sysproc.Describe(err))
		return 1
	}

	fmt.Fprintln(inv.Stdout, dir) //nolint:errcheck

	return 0
}
