// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"io"
	"regexp"
	"strings"
)

var noNewlineFlag = regexp.MustCompile(`^-n+$`)

// Echo writes its arguments separated by single spaces. Leading arguments
// made only of -n, -nn, ... suppress the trailing newline; the first argument
// that is not such a flag ends flag parsing.
func Echo(_ context.Context, inv *Invocation) int {
	args := inv.Args[1:]
	newline := true

	for len(args) > 0 && noNewlineFlag.MatchString(args[0]) {
		newline = false
		args = args[1:]
	}

	out := strings.Join(args, " ")
	if newline {
		out += "\n"
	}

	_, _ = io.WriteString(inv.Stdout, out)

	return 0
}
