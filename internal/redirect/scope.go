// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package redirect

import (
	"errors"
	"strconv"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
	"golang.org/x/sys/unix"
)

// ScopeFloor is the lowest descriptor a Scope allocates for its own copies.
const ScopeFloor = 10

// Scope applies redirections for a command that runs inside the shell
// process and undoes them with Restore.
//
// Only 0, 1 and 2 are redirected for real. Any other descriptor a redirection
// names lives on a private copy at or above ScopeFloor, so descriptors the
// shell or the Go runtime hold are never overwritten or closed.
type Scope struct {
	// saved maps a standard descriptor to its saved copy, or -1 when it
	// was closed before the scope touched it.
	saved map[int]int
	// private maps a redirected descriptor above 2 to the real one.
	private map[int]int
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{saved: map[int]int{}, private: map[int]int{}}
}

// Apply applies redirs in order. It stops at the first failure; Restore must
// still be called.
func (s *Scope) Apply(redirs []command.Redirect) error {
	for _, r := range redirs {
		if err := s.apply(r); err != nil {
			return err
		}
	}

	return nil
}

// Fd returns the real descriptor that stands for fd inside the scope.
func (s *Scope) Fd(fd int) (int, bool) {
	if isStd(fd) {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
			return -1, false
		}

		return fd, true
	}

	priv, ok := s.private[fd]

	return priv, ok
}

// Restore closes the private descriptors and puts 0, 1 and 2 back the way
// they were before Apply.
func (s *Scope) Restore() error {
	for fd, priv := range s.private {
		_ = unix.Close(priv)

		delete(s.private, fd)
	}

	var result error

	for fd, copyFd := range s.saved {
		var err error
		if copyFd < 0 {
			err = sysproc.Close(fd)
		} else {
			err = sysproc.MoveFd(copyFd, fd)
		}

		if err != nil {
			result = errors.Join(result, err)
		}

		delete(s.saved, fd)
	}

	return result
}

func (s *Scope) apply(r command.Redirect) error {
	if flags, ok := openFlags(r.Op); ok {
		fd, err := unix.Open(r.Path, flags|unix.O_CLOEXEC, fileMode)
		if err != nil {
			return &Error{Path: r.Path, Err: err}
		}

		return s.install(r.Fd, fd, true)
	}

	switch r.Op {
	case command.Dup:
		src, ok := s.Fd(r.DupFd)
		if !ok {
			return &Error{Path: strconv.Itoa(r.DupFd), Err: unix.EBADF}
		}

		return s.install(r.Fd, src, false)
	case command.Close:
		if !isStd(r.Fd) {
			s.drop(r.Fd)
			return nil
		}

		if err := s.save(r.Fd); err != nil {
			return err
		}

		return sysproc.Close(r.Fd) //nolint:wrapcheck
	case command.Heredoc:
		return ErrHeredocBody
	default:
		return errors.New("unknown redirection " + r.Op.String())
	}
}

// install makes target refer to src. An owned src is consumed.
func (s *Scope) install(target, src int, owned bool) error {
	if isStd(target) {
		if err := s.save(target); err != nil {
			if owned {
				_ = unix.Close(src)
			}

			return err
		}

		if owned {
			if err := sysproc.MoveFd(src, target); err != nil {
				_ = unix.Close(src)
				return err //nolint:wrapcheck
			}

			return nil
		}

		return sysproc.Dup2(src, target) //nolint:wrapcheck
	}

	priv, err := sysproc.DupAbove(src, ScopeFloor)
	if owned {
		_ = unix.Close(src)
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	s.drop(target)
	s.private[target] = priv

	return nil
}

// save records the current state of a standard descriptor the first time
// the scope changes it.
func (s *Scope) save(fd int) error {
	if _, ok := s.saved[fd]; ok {
		return nil
	}

	if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
		s.saved[fd] = -1
		return nil
	}

	copyFd, err := sysproc.DupAbove(fd, ScopeFloor)
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.saved[fd] = copyFd

	return nil
}

func (s *Scope) drop(fd int) {
	if priv, ok := s.private[fd]; ok {
		_ = unix.Close(priv)

		delete(s.private, fd)
	}
}

func isStd(fd int) bool {
	return fd >= 0 && fd <= 2 //nolint:mnd
}
