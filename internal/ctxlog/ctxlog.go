// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel is the environment variable read at start-up for the log level.
// It accepts DEBUG, INFO, WARN or ERROR; anything else means WARN.
const EnvLogLevel = "MINISHELL_LOG_LEVEL"

// Log formats accepted by Configure.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// ErrUnknownFormat is returned by Configure for an unsupported format.
var ErrUnknownFormat = errors.New("unknown log format")

type loggerKey struct{}

// LevelVar controls the level of every logger built by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger writes human-readable records to stderr. The shell's stdout
// belongs to the commands it runs, so logs never go there.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger writes JSON records to stderr.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New returns a copy of ctx carrying logger.
// A nil logger means DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger carried by ctx, or DefaultLogger.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs at info level with the logger carried by ctx.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs at debug level with the logger carried by ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs at warn level with the logger carried by ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs at error level with the logger carried by ctx.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// ParseLevel converts a level name, case-insensitively, into a slog.Level.
// The second result is false for unknown names.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelWarn, false
	}
}

// Configure sets the package level and returns ctx carrying a logger of the
// given format writing to w. An empty level leaves LevelVar untouched; an
// empty format means FormatPretty.
func Configure(ctx context.Context, w io.Writer, format, level string) (context.Context, error) {
	if level != "" {
		lvl, ok := ParseLevel(level)
		if !ok {
			return ctx, fmt.Errorf("unknown log level %q", level)
		}

		LevelVar.Set(lvl)
	}

	var logger *slog.Logger

	switch strings.ToLower(format) {
	case "", FormatPretty:
		logger = slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar},
			WithAutoColour(),
			WithDestinationWriter(w),
		))
	case FormatJSON:
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelVar}))
	default:
		return ctx, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return New(ctx, logger), nil
}

func logLevelFromEnv() slog.Level {
	lvl, _ := ParseLevel(os.Getenv(EnvLogLevel))
	return lvl
}
