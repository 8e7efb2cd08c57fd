// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package redirect

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// identity names the open file behind fd.
func identity(t *testing.T, fd int) string {
	t.Helper()

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(fd, &st))

	return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
}

func isOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

// nextFree returns the descriptor the next open would get.
func nextFree(t *testing.T) int {
	t.Helper()

	fd, err := unix.Dup(0)
	require.NoError(t, err)
	require.NoError(t, unix.Close(fd))

	return fd
}

func TestScope_NextFreeDescriptorKeepsStdin(t *testing.T) {
	stdin := identity(t, 0)
	fd := nextFree(t)
	path := filepath.Join(t.TempDir(), "f")

	s := NewScope()
	require.NoError(t, s.Apply([]command.Redirect{
		{Fd: 0, Op: command.In, Path: os.DevNull},
		{Fd: fd, Op: command.Out, Path: path},
	}))

	priv, ok := s.Fd(fd)
	require.True(t, ok)
	assert.GreaterOrEqual(t, priv, ScopeFloor)
	write(t, priv, "via scope")

	require.NoError(t, s.Restore())

	assert.Equal(t, stdin, identity(t, 0), "stdin is the shell's again")
	assert.False(t, isOpen(fd), "the descriptor was free before and is free after")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "via scope", string(got))
}

func TestScope_LeavesShellDescriptorsOpen(t *testing.T) {
	r, w, err := sysproc.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck
	defer w.Close() //nolint:errcheck

	target := int(w.Fd())

	s := NewScope()
	require.NoError(t, s.Apply([]command.Redirect{
		{Fd: target, Op: command.Out, Path: os.DevNull},
		{Fd: target, Op: command.Close},
	}))
	require.NoError(t, s.Restore())

	_, err = w.WriteString("still mine")
	require.NoError(t, err)

	buf := make([]byte, 32)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "still mine", string(buf[:n]))
}

func TestScope_StdoutRestored(t *testing.T) {
	stdout := identity(t, 1)
	path := filepath.Join(t.TempDir(), "out")

	s := NewScope()
	require.NoError(t, s.Apply([]command.Redirect{{Fd: 1, Op: command.Out, Path: path}}))
	write(t, 1, "captured")
	require.NoError(t, s.Restore())

	assert.Equal(t, stdout, identity(t, 1))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "captured", string(got))
}

func TestScope_DupFromPrivateDescriptor(t *testing.T) {
	stderr := identity(t, 2)
	path := filepath.Join(t.TempDir(), "err")

	s := NewScope()
	require.NoError(t, s.Apply([]command.Redirect{
		{Fd: fdA, Op: command.Out, Path: path},
		{Fd: 2, Op: command.Dup, DupFd: fdA},
	}))
	write(t, 2, "to file")
	require.NoError(t, s.Restore())

	assert.Equal(t, stderr, identity(t, 2))
	assert.False(t, isOpen(fdA))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "to file", string(got))
}

func TestScope_DupUnknownDescriptor(t *testing.T) {
	s := NewScope()

	err := s.Apply([]command.Redirect{{Fd: 1, Op: command.Dup, DupFd: fdB}})
	require.EqualError(t, err, "41: Bad file descriptor")
	require.NoError(t, s.Restore())
}

func TestScope_CloseStdoutRestored(t *testing.T) {
	stdout := identity(t, 1)

	s := NewScope()
	require.NoError(t, s.Apply([]command.Redirect{{Fd: 1, Op: command.Close}}))
	assert.False(t, isOpen(1))
	require.NoError(t, s.Restore())

	assert.Equal(t, stdout, identity(t, 1))
}

func TestScope_FailureStillRestores(t *testing.T) {
	stdout := identity(t, 1)
	dir := t.TempDir()

	s := NewScope()
	err := s.Apply([]command.Redirect{
		{Fd: 1, Op: command.Out, Path: filepath.Join(dir, "first")},
		{Fd: 0, Op: command.In, Path: filepath.Join(dir, "missing")},
	})

	var rerr *Error

	require.ErrorAs(t, err, &rerr)
	require.NoError(t, s.Restore())
	assert.Equal(t, stdout, identity(t, 1))
}
