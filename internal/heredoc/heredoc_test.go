// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package heredoc

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, fs afero.Fs) {
	t.Helper()

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stubs.Reset)
}

func TestMaterialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(os.TempDir(), 0o755))
	stubFs(t, fs)

	p := command.Pipeline{
		{Args: []string{"cat"}, Redirects: []command.Redirect{{Fd: 0, Op: command.Heredoc, Body: "one\ntwo\n"}}},
		{Args: []string{"wc"}, Redirects: []command.Redirect{
			{Fd: 1, Op: command.Out, Path: "out"},
			{Fd: 3, Op: command.Heredoc, Body: "three\n"},
		}},
	}

	cleanup, err := Materialize(context.Background(), p)
	require.NoError(t, err)

	first := p[0].Redirects[0]
	assert.Equal(t, command.In, first.Op)
	assert.Empty(t, first.Body)
	assert.True(t, strings.Contains(first.Path, TempPrefix))

	got, err := afero.ReadFile(fs, first.Path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(got))

	assert.Equal(t, command.Redirect{Fd: 1, Op: command.Out, Path: "out"}, p[1].Redirects[0], "other redirections are untouched")

	third := p[1].Redirects[1]
	assert.Equal(t, 3, third.Fd)
	assert.NotEqual(t, first.Path, third.Path)

	require.NoError(t, cleanup())

	for _, path := range []string{first.Path, third.Path} {
		_, err := fs.Stat(path)
		assert.True(t, os.IsNotExist(err), "%s removed", path)
	}

	assert.NoError(t, cleanup(), "a second cleanup has nothing to do")
}

func TestMaterialize_NoHeredocs(t *testing.T) {
	stubFs(t, afero.NewMemMapFs())

	p := command.Pipeline{{Args: []string{"ls"}}}

	cleanup, err := Materialize(context.Background(), p)
	require.NoError(t, err)
	assert.NoError(t, cleanup())
}

func TestMaterialize_ReadOnlyFs(t *testing.T) {
	stubFs(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))

	p := command.Pipeline{{Args: []string{"cat"}, Redirects: []command.Redirect{{Op: command.Heredoc, Body: "x"}}}}

	cleanup, err := Materialize(context.Background(), p)
	require.ErrorIs(t, err, ErrWrite)
	require.NotNil(t, cleanup)
	assert.NoError(t, cleanup())
	assert.Equal(t, command.Heredoc, p[0].Redirects[0].Op, "failed redirection is left as it was")
}

func TestCleanup_ReportsEveryFailure(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(os.TempDir(), 0o755))
	stubFs(t, mem)

	p := command.Pipeline{{Redirects: []command.Redirect{
		{Op: command.Heredoc, Body: "a"},
		{Op: command.Heredoc, Body: "b"},
	}}}

	cleanup, err := Materialize(context.Background(), p)
	require.NoError(t, err)

	for _, r := range p[0].Redirects {
		require.NoError(t, mem.Remove(r.Path))
	}

	err = cleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
}
