// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session holds the mutable state of one shell session.
package session

import (
	"github.com/matt-FFFFFF/minishell/internal/environ"
	"github.com/oklog/ulid/v2"
)

// Exit statuses produced by the shell itself.
const (
	StatusSuccess     = 0
	StatusFailure     = 1
	StatusUsage       = 2
	StatusCannotExec  = 126
	StatusNotFound    = 127
	StatusSignalBase  = 128
	StatusInterrupted = 130 // SIGINT
	StatusQuit        = 131 // SIGQUIT
)

// Session is the state shared by the orchestrator, the reaper and the built-ins.
type Session struct {
	// ID identifies the session in log records.
	ID string
	// Env is the session environment, mutated by cd, export and unset.
	Env *environ.Env
	// Status is the last exit status ($?).
	Status int
	// Stop is set when a stage ended with 130 or 131. While set, no new
	// pipeline stage is started.
	Stop bool
	// Exited is set by the exit built-in once it has decided to terminate
	// the shell.
	Exited bool
	// Interactive is true when input comes from a terminal.
	Interactive bool
}

// New returns a session with the given environment list.
func New(env []string) *Session {
	return &Session{
		ID:  ulid.Make().String(),
		Env: environ.New(env),
	}
}

// SetStatus records status as the last exit status and raises Stop when
// status is one of the signal statuses that halt further execution.
func (s *Session) SetStatus(status int) {
	s.Status = status
	if status == StatusInterrupted || status == StatusQuit {
		s.Stop = true
	}
}
