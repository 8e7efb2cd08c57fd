// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker routes the signals the interactive shell receives.
//
// Keyboard signals (SIGINT, SIGQUIT) are consumed so the shell survives them;
// the foreground pipeline shares the terminal's process group and receives
// them on its own. Termination signals (SIGTERM, SIGHUP) cancel the shell's
// context.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
)

var keyboardSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGQUIT,
}

var termSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGHUP,
}

// New creates a channel subscribed to sigs, or to the keyboard and
// termination signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = append(append(sigs, keyboardSignals...), termSignals...)
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. It does not close it.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}

// Watch consumes sigCh until it is closed or ctx is done. A termination
// signal calls cancel and returns; anything else is logged and dropped.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if isTermination(sig) {
				ctxlog.Info(ctx, "signalbroker", "detail", "termination signal, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Debug(ctx, "signalbroker", "detail", "keyboard signal ignored by shell", "signal", sig.String())
		}
	}
}

func isTermination(sig os.Signal) bool {
	for _, s := range termSignals {
		if s == sig {
			return true
		}
	}

	return false
}
