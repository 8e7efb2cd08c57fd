// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package heredoc writes heredoc bodies to temporary files so that a stage
// can read them like any other input redirection.
package heredoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/minishell/internal/command"
	"github.com/matt-FFFFFF/minishell/internal/ctxlog"
	"github.com/spf13/afero"
)

// TempPrefix is the name prefix of every heredoc temp file.
const TempPrefix = "minishell-heredoc-"

// ErrWrite is returned when a heredoc body cannot be stored.
var ErrWrite = errors.New("cannot write heredoc")

// FsFactory returns the filesystem heredoc files are created on.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Materialize rewrites every heredoc redirection in p into an input
// redirection from a temp file holding its body. The returned cleanup removes
// the files; it is never nil and is safe to call after an error.
func Materialize(ctx context.Context, p command.Pipeline) (func() error, error) {
	fs := FsFactory()

	var paths []string

	cleanup := func() error {
		var result error

		for _, path := range paths {
			if err := fs.Remove(path); err != nil {
				result = multierror.Append(result, err)
			}
		}

		paths = nil

		return result //nolint:wrapcheck
	}

	for _, cmd := range p {
		for i := range cmd.Redirects {
			r := &cmd.Redirects[i]
			if r.Op != command.Heredoc {
				continue
			}

			path, err := store(fs, r.Body)
			if path != "" {
				paths = append(paths, path)
			}

			if err != nil {
				return cleanup, errors.Join(ErrWrite, err, cleanup())
			}

			ctxlog.Debug(ctx, "heredoc", "fd", r.Fd, "path", path, "bytes", len(r.Body))

			r.Op = command.In
			r.Path = path
			r.Body = ""
		}
	}

	return cleanup, nil
}

func store(fs afero.Fs, body string) (string, error) {
	f, err := afero.TempFile(fs, "", TempPrefix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return f.Name(), fmt.Errorf("write %s: %w", f.Name(), err)
	}

	if err := f.Close(); err != nil {
		return f.Name(), fmt.Errorf("close %s: %w", f.Name(), err)
	}

	return f.Name(), nil
}
