// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/minishell/internal/config"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MINISHELL_LOG_LEVEL", "")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("prompt: \"% \"\nlog_level: info\n"), 0o644))

	stubs := gostub.Stub(&config.FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	tests := []struct {
		name      string
		args      []string
		wantLevel string
		wantErr   bool
	}{
		{"file", []string{"x", "--config", "/c.yaml"}, "info", false},
		{"flag overrides file", []string{"x", "--config", "/c.yaml", "--log-level", "debug"}, "debug", false},
		{"bad level", []string{"x", "--config", "/c.yaml", "--log-level", "chatty"}, "", true},
		{"missing explicit file", []string{"x", "--config", "/nope.yaml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got *config.Config
				err error
			)

			cmd := &cli.Command{
				Name:  "x",
				Flags: Flags,
				Action: func(_ context.Context, cmd *cli.Command) error {
					got, err = LoadConfig(cmd)
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), tt.args))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "% ", got.Prompt)
			assert.Equal(t, tt.wantLevel, got.LogLevel)
		})
	}
}
