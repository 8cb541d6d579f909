// Package logging adapts log/slog to the types.Logger capability injected
// into the pipeline's components.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"wetwatch/internal/types"
)

// slogAdapter wraps *slog.Logger behind the types.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

// Compile-time assertion that slogAdapter implements types.Logger.
var _ types.Logger = (*slogAdapter)(nil)

// New constructs a JSON structured logger writing to stdout at the given
// level ("debug", "info", "warn", "error").
func New(level string) types.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return &slogAdapter{l: slog.New(h)}
}

// Wrap adapts an existing *slog.Logger, for tests and custom handlers.
func Wrap(l *slog.Logger) types.Logger {
	return &slogAdapter{l: l}
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{l: a.l.With(args...)}
}

// parseLevel maps a config level string to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
