// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/minishell/internal/session"
	"github.com/prashantv/gostub"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	handled bool
	stdout  string
	stderr  string
	sess    *session.Session
}

func run(t *testing.T, sess *session.Session, args ...string) result {
	t.Helper()

	if sess == nil {
		sess = session.New(nil)
	}

	var stdout, stderr bytes.Buffer

	inv := &Invocation{
		Args:    args,
		Session: sess,
		Stdin:   strings.NewReader(""),
		Stdout:  &stdout,
		Stderr:  &stderr,
	}

	handled := Default().Dispatch(context.Background(), inv)

	return result{handled: handled, stdout: stdout.String(), stderr: stderr.String(), sess: sess}
}

func TestIsBuiltin(t *testing.T) {
	r := Default()

	for _, name := range []string{"pwd", "echo", "cd", "export", "unset", "env", "exit"} {
		assert.True(t, r.IsBuiltin(name), name)
	}

	assert.False(t, r.IsBuiltin("ECHO"), "names are case-sensitive")
	assert.False(t, r.IsBuiltin(""))
	assert.False(t, r.IsBuiltin("ls"))

	var nilRegistry *Registry
	assert.False(t, nilRegistry.IsBuiltin("echo"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "echo", "env", "exit", "export", "pwd", "unset"}, Default().Names())
}

func TestDispatch_NotHandledHasNoSideEffects(t *testing.T) {
	sess := session.New(nil)
	sess.Status = 42

	res := run(t, sess, "ls", "-l")
	assert.False(t, res.handled)
	assert.Equal(t, 42, sess.Status)
	assert.Empty(t, res.stdout)

	res = run(t, sess)
	assert.False(t, res.handled, "no arguments")
}

func TestDispatch_StoresStatus(t *testing.T) {
	sess := session.New(nil)
	sess.Status = 5

	res := run(t, sess, "env", "extra")
	assert.True(t, res.handled)
	assert.Equal(t, 1, sess.Status)
	assert.Equal(t, "minishell: env: too many arguments\n", res.stderr)
}

func TestRegister_Custom(t *testing.T) {
	r := NewRegistry()
	r.Register("true", Func(func(context.Context, *Invocation) int { return 0 }))
	r.Register("false", Func(func(context.Context, *Invocation) int { return 1 }))

	sess := session.New(nil)
	assert.True(t, r.Dispatch(context.Background(), &Invocation{Args: []string{"false"}, Session: sess}))
	assert.Equal(t, 1, sess.Status)
}

func TestEcho(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"echo"}, "\n"},
		{[]string{"echo", "hello", "world"}, "hello world\n"},
		{[]string{"echo", "-n", "hello"}, "hello"},
		{[]string{"echo", "-n", "-n", "-n", "hello"}, "hello"},
		{[]string{"echo", "-nnn", "hello"}, "hello"},
		{[]string{"echo", "-n", "hi", "-n", "there"}, "hi -n there"},
		{[]string{"echo", "hi", "-n", "there"}, "hi -n there\n"},
		{[]string{"echo", "-nx"}, "-nx\n"},
		{[]string{"echo", "-"}, "-\n"},
		{[]string{"echo", "-n"}, ""},
		{[]string{"echo", "", "a"}, " a\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			res := run(t, nil, tt.args...)
			assert.True(t, res.handled)
			assert.Equal(t, tt.want, res.stdout)
			assert.Equal(t, 0, res.sess.Status)
		})
	}
}

func TestPwd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	want, err := os.Getwd()
	require.NoError(t, err)

	res := run(t, nil, "pwd", "ignored")
	assert.Equal(t, want+"\n", res.stdout)
	assert.Equal(t, 0, res.sess.Status)
}

func TestPwd_Failure(t *testing.T) {
	stubs := gostub.Stub(&getwd, func() (string, error) { return "", os.ErrNotExist })
	defer stubs.Reset()

	res := run(t, nil, "pwd")
	assert.Equal(t, 1, res.sess.Status)
	assert.Equal(t, "minishell: pwd: error retrieving current directory: File does not exist\n", res.stderr)
}

func TestCd(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)

	base, err := os.Getwd()
	require.NoError(t, err)

	sub := filepath.Join(base, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	sess := session.New([]string{"HOME=" + base})

	res := run(t, sess, "cd", "sub")
	require.Equal(t, 0, sess.Status, res.stderr)

	pwd, _ := sess.Env.Get("PWD")
	old, _ := sess.Env.Get("OLDPWD")
	assert.Equal(t, sub, pwd)
	assert.Equal(t, base, old)

	res = run(t, sess, "cd", "-")
	assert.Equal(t, 0, sess.Status)
	assert.Equal(t, base+"\n", res.stdout, "cd - prints the new directory")

	run(t, sess, "cd", "sub")
	res = run(t, sess, "cd")
	assert.Equal(t, 0, sess.Status)
	assert.Empty(t, res.stdout)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, base, cwd, "bare cd goes to HOME")
}

func TestCd_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  []string
		args []string
		want string
	}{
		{"no home", nil, []string{"cd"}, "minishell: cd: HOME not set\n"},
		{"no oldpwd", nil, []string{"cd", "-"}, "minishell: cd: OLDPWD not set\n"},
		{"too many", nil, []string{"cd", "a", "b"}, "minishell: cd: too many arguments\n"},
		{"missing dir", nil, []string{"cd", "nope"}, "minishell: cd: nope: No such file or directory\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, session.New(tt.env), tt.args...)
			assert.Equal(t, 1, res.sess.Status)
			assert.Equal(t, tt.want, res.stderr)
		})
	}
}

func TestExport_List(t *testing.T) {
	sess := session.New([]string{"ZED=last", "ALPHA=first", `QUOTE=say "hi" $HOME`, "EMPTY="})
	sess.Env.Export("BARE")

	res := run(t, sess, "export")
	require.Equal(t, 0, sess.Status)

	g := goldie.New(t)
	g.Assert(t, "export_list", []byte(res.stdout))
}

func TestExport_Set(t *testing.T) {
	sess := session.New(nil)

	res := run(t, sess, "export", "A=1", "B", "C=x=y")
	assert.Equal(t, 0, sess.Status)
	assert.Empty(t, res.stderr)

	v, _ := sess.Env.Get("A")
	assert.Equal(t, "1", v)

	v, _ = sess.Env.Get("C")
	assert.Equal(t, "x=y", v)

	_, ok := sess.Env.Get("B")
	assert.False(t, ok, "B is exported without a value")
	assert.NotContains(t, sess.Env.Environ(), "B")
}

func TestExport_InvalidIdentifier(t *testing.T) {
	sess := session.New(nil)

	res := run(t, sess, "export", "1X=2", "OK=yes", "=v")
	assert.Equal(t, 1, sess.Status)
	assert.Equal(t,
		"minishell: export: `1X=2': not a valid identifier\n"+
			"minishell: export: `=v': not a valid identifier\n",
		res.stderr)

	v, _ := sess.Env.Get("OK")
	assert.Equal(t, "yes", v, "valid arguments are still applied")
}

func TestUnset(t *testing.T) {
	sess := session.New([]string{"A=1", "B=2"})

	res := run(t, sess, "unset", "A", "NOPE", "bad-name")
	assert.Equal(t, 1, sess.Status)
	assert.Equal(t, "minishell: unset: `bad-name': not a valid identifier\n", res.stderr)
	assert.Equal(t, []string{"B=2"}, sess.Env.Environ())
}

func TestEnv(t *testing.T) {
	sess := session.New([]string{"A=1", "B=2"})
	sess.Env.Export("HIDDEN")

	res := run(t, sess, "env")
	assert.Equal(t, 0, sess.Status)
	assert.Equal(t, "A=1\nB=2\n", res.stdout)
}

func TestExit(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		last       int
		want       int
		wantExited bool
		wantErr    string
	}{
		{"no argument uses last status", []string{"exit"}, 7, 7, true, ""},
		{"numeric", []string{"exit", "3"}, 0, 3, true, ""},
		{"modulo 256", []string{"exit", "257"}, 0, 1, true, ""},
		{"negative", []string{"exit", "-1"}, 0, 255, true, ""},
		{"explicit plus", []string{"exit", "+4"}, 0, 4, true, ""},
		{"non numeric", []string{"exit", "abc"}, 0, 2, true, "minishell: exit: abc: numeric argument required\n"},
		{"non numeric wins over count", []string{"exit", "abc", "1"}, 0, 2, true, "minishell: exit: abc: numeric argument required\n"},
		{"too many", []string{"exit", "1", "2"}, 0, 1, false, "minishell: exit: too many arguments\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(nil)
			sess.Status = tt.last

			res := run(t, sess, tt.args...)
			assert.Equal(t, tt.want, sess.Status)
			assert.Equal(t, tt.wantExited, sess.Exited)
			assert.Equal(t, tt.wantErr, res.stderr)
		})
	}
}

func TestExit_InteractivePrintsExit(t *testing.T) {
	sess := session.New(nil)
	sess.Interactive = true

	res := run(t, sess, "exit", "0")
	assert.Equal(t, "exit\n", res.stderr)
	assert.True(t, sess.Exited)
}

func TestInvocationErrorf(t *testing.T) {
	var buf bytes.Buffer

	inv := &Invocation{Args: []string{"cd"}, Stderr: &buf}
	inv.Errorf("%s: %s", "x", errors.New("boom").Error())
	assert.Equal(t, "minishell: cd: x: boom\n", buf.String())
}
