// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package redirect applies a command's redirections to the current process.
package redirect

import (
	"errors"
	"strconv"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
	"golang.org/x/sys/unix"
)

const fileMode = 0o644

// ErrHeredocBody is returned for a heredoc that was not written to a file first.
var ErrHeredocBody = errors.New("heredoc body was not materialised")

// Error is a redirection that could not be opened. Its message is what the
// shell prints after "minishell: ".
type Error struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Path + ": " + sysproc.Describe(e.Err)
}

// Unwrap returns the underlying OS error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Apply applies redirs in order onto the process's descriptors. It stops at
// the first failure; redirections already applied stay in place.
func Apply(redirs []command.Redirect) error {
	for _, r := range redirs {
		if err := apply(r); err != nil {
			return err
		}
	}

	return nil
}

func apply(r command.Redirect) error {
	if flags, ok := openFlags(r.Op); ok {
		return openOnto(r.Path, flags, r.Fd)
	}

	switch r.Op {
	case command.Dup:
		if _, err := unix.FcntlInt(uintptr(r.DupFd), unix.F_GETFD, 0); err != nil {
			return &Error{Path: strconv.Itoa(r.DupFd), Err: err}
		}

		return sysproc.Dup2(r.DupFd, r.Fd)
	case command.Close:
		return sysproc.Close(r.Fd) //nolint:wrapcheck
	case command.Heredoc:
		return ErrHeredocBody
	default:
		return errors.New("unknown redirection " + r.Op.String())
	}
}

// openFlags returns the open(2) flags of a file redirection.
func openFlags(op command.Op) (int, bool) {
	switch op {
	case command.In:
		return unix.O_RDONLY, true
	case command.Out:
		return unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC, true
	case command.Append:
		return unix.O_WRONLY | unix.O_CREAT | unix.O_APPEND, true
	case command.ReadWrite:
		return unix.O_RDWR | unix.O_CREAT, true
	default:
		return 0, false
	}
}

func openOnto(path string, flags, target int) error {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, fileMode)
	if err != nil {
		return &Error{Path: path, Err: err}
	}

	if fd == target {
		// The target was free and open picked it; it must survive exec.
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, 0); err != nil {
			_ = unix.Close(fd)
			return &sysproc.PrimitiveError{Op: sysproc.OpDup2, Err: err}
		}

		return nil
	}

	if err := sysproc.MoveFd(fd, target); err != nil {
		_ = unix.Close(fd)
		return err //nolint:wrapcheck
	}

	return nil
}
