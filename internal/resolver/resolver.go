// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolver turns a command name into a running program image.
//
// Exec is called in a stage child after redirections have been applied. It
// never returns: the process image is replaced or the process exits.
package resolver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/minishell/internal/session"
	"github.com/matt-FFFFFF/minishell/internal/sysproc"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// FsFactory returns the filesystem used for existence checks.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Replaced in tests.
var (
	execve = unix.Exec
	exit   = os.Exit
)

// Exec runs argv[0] with env, writing diagnostics to os.Stderr.
func Exec(argv, env []string) {
	ExecTo(os.Stderr, argv, env)
}

// ExecTo is Exec writing diagnostics to w.
//
// A name containing '/' is executed directly when it exists. A name that
// does not contain '/', or a direct path that does not exist, is searched
// for in the PATH of env; the first existing candidate is executed. An exec
// failure on an existing file exits with 126, no candidate with 127.
func ExecTo(w io.Writer, argv, env []string) {
	name := argv[0]
	if name == "" {
		fmt.Fprintln(w, "minishell: : command not found") //nolint:errcheck
		exit(session.StatusNotFound)

		return
	}

	path, ok := Lookup(FsFactory(), name, env)
	if !ok {
		fmt.Fprintf(w, "minishell: %s: command not found\n", name) //nolint:errcheck
		exit(session.StatusNotFound)

		return
	}

	err := execve(path, argv, env)

	// Only reached when the image was not replaced.
	fmt.Fprintf(w, "minishell: %s: %s\n", name, sysproc.Describe(err)) //nolint:errcheck
	exit(session.StatusCannotExec)
}

// Lookup returns the path Exec would execute for name, and false when
// there is none. Only existence is checked, never permissions.
func Lookup(fs afero.Fs, name string, env []string) (string, bool) {
	if name == "" {
		return "", false
	}

	if strings.Contains(name, "/") && exists(fs, name) {
		return name, true
	}

	for _, dir := range SearchPath(env) {
		candidate := dir + "/" + name
		if exists(fs, candidate) {
			return candidate, true
		}
	}

	return "", false
}

// SearchPath returns the directories of PATH in env, skipping empty entries.
func SearchPath(env []string) []string {
	var value string

	found := false

	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			value, found = v, true
		}
	}

	if !found {
		return nil
	}

	var dirs []string

	for _, dir := range strings.Split(value, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
