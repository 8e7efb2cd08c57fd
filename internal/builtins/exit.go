// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/minishell/internal/session"
)

// Exit asks the shell to terminate. It records the status and sets
// Session.Exited; the caller owning the process performs the exit.
//
// With too many arguments nothing is exited and the status is 1.
func Exit(_ context.Context, inv *Invocation) int {
	sess := inv.Session

	if sess.Interactive {
		_, _ = io.WriteString(inv.Stderr, "exit\n")
	}

	status := sess.Status

	if len(inv.Args) > 1 {
		n, ok := parseExitStatus(inv.Args[1])
		if !ok {
			inv.Errorf("%s: numeric argument required", inv.Args[1])

			sess.Exited = true

			return session.StatusUsage
		}

		if len(inv.Args) > 2 { //nolint:mnd
			inv.Errorf("too many arguments")
			return 1
		}

		status = n
	}

	sess.Exited = true

	return status
}

// parseExitStatus parses an optionally signed decimal integer and reduces it
// modulo 256.
func parseExitStatus(s string) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}

	return int(uint8(n)), true //nolint:gosec
}
