// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysproc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// ExitFatal is the status a process terminates with after a primitive failure.
const ExitFatal = 255

// Names of the primitives, used as PrimitiveError.Op.
const (
	OpFork = "fork"
	OpPipe = "pipe"
	OpDup  = "dup"
	OpDup2 = "dup2"
)

// ErrPrimitive is matched by every PrimitiveError through errors.Is.
var ErrPrimitive = errors.New("process primitive failed")

// PrimitiveError reports a failed process primitive.
type PrimitiveError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PrimitiveError) Error() string {
	return e.Op + ": " + Describe(e.Err)
}

// Unwrap returns the underlying OS error.
func (e *PrimitiveError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPrimitive) true for every PrimitiveError.
func (e *PrimitiveError) Is(target error) bool {
	return target == ErrPrimitive
}

// Spawn starts a new process running path with argv. It is the fork half of
// a pipeline stage; the child is expected to exec or exit on its own.
func Spawn(path string, argv []string, attr *os.ProcAttr) (*os.Process, error) {
	p, err := os.StartProcess(path, argv, attr)
	if err != nil {
		return nil, &PrimitiveError{Op: OpFork, Err: err}
	}

	return p, nil
}

// Pipe creates a pipe. Both ends are close-on-exec, so they only reach a
// child that is handed them explicitly.
func Pipe() (r, w *os.File, err error) {
	r, w, err = os.Pipe()
	if err != nil {
		return nil, nil, &PrimitiveError{Op: OpPipe, Err: err}
	}

	return r, w, nil
}

// Dup duplicates fd onto the lowest free descriptor, close-on-exec.
func Dup(fd int) (int, error) {
	return DupAbove(fd, 0)
}

// DupAbove duplicates fd onto the lowest free descriptor not below floor,
// close-on-exec.
func DupAbove(fd, floor int) (int, error) {
	nfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, floor)
	if err != nil {
		return -1, &PrimitiveError{Op: OpDup, Err: err}
	}

	return nfd, nil
}

// Dup2 makes dst refer to the same open file as src. src stays open.
// The new dst is not close-on-exec.
func Dup2(src, dst int) error {
	if src == dst {
		return nil
	}

	if err := dupOnto(src, dst); err != nil {
		return &PrimitiveError{Op: OpDup2, Err: err}
	}

	return nil
}

// MoveFd duplicates src onto dst and then closes src. Callers must treat src
// as gone once it returns without error. Moving a descriptor onto itself is a
// no-op that leaves it open.
func MoveFd(src, dst int) error {
	if src == dst {
		return nil
	}

	if err := Dup2(src, dst); err != nil {
		return err
	}

	_ = unix.Close(src)

	return nil
}

// Close closes a raw descriptor, ignoring EBADF.
func Close(fd int) error {
	if err := unix.Close(fd); err != nil && !errors.Is(err, unix.EBADF) {
		return err //nolint:wrapcheck
	}

	return nil
}

// Fatal reports err on stderr in the shell's diagnostic format and
// terminates the process. It never returns.
func Fatal(err error) {
	FatalTo(os.Stderr, err)
}

// exit is replaced in tests.
var exit = os.Exit

// FatalTo is Fatal writing to w.
func FatalTo(w io.Writer, err error) {
	fmt.Fprintf(w, "minishell: %s\n", err) //nolint:errcheck
	exit(ExitFatal)
}

// Describe renders an OS error the way strerror does: "No such file or
// directory" rather than "no such file or directory". Path and syscall
// wrappers are stripped so only the reason remains.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return capitalize(errno.Error())
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return capitalize(pathErr.Err.Error())
	}

	return capitalize(err.Error())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
