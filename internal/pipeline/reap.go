// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"syscall"

	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/matt-FFFFFF/minishell/internal/session"
)

// reap waits for every started stage in order. Each status goes through
// sess.SetStatus, so a stage killed by SIGINT or SIGQUIT anywhere in the
// pipeline raises Stop, and the last stage's status is the one that remains.
func (o *Orchestrator) reap(ctx context.Context, sess *session.Session, run *Run) {
	for i := range run.Stages {
		st := &run.Stages[i]
		if !st.Forked || st.proc == nil {
			continue
		}

		state, err := st.proc.Wait()
		if err != nil {
			ctxlog.Error(ctx, "wait failed", "pid", st.Pid, "error", err)

			st.Status = session.StatusFailure
			sess.SetStatus(st.Status)

			continue
		}

		ws, ok := state.Sys().(syscall.WaitStatus)
		if ok {
			st.Status = ExitStatus(ws)
		} else {
			st.Status = state.ExitCode()
		}

		ctxlog.Debug(ctx, "stage reaped", "pid", st.Pid, "status", st.Status)
		sess.SetStatus(st.Status)
	}
}

// ExitStatus converts a wait status into a shell status: the exit code for a
// normal exit, 128 plus the signal number for a signalled process.
func ExitStatus(ws syscall.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		switch sig := ws.Signal(); sig {
		case syscall.SIGINT:
			return session.StatusInterrupted
		case syscall.SIGQUIT:
			return session.StatusQuit
		default:
			return session.StatusSignalBase + int(sig)
		}
	default:
		return session.StatusFailure
	}
}
