// Package logutil builds the structured loggers the CLI hands to the data
// cache, executor, and runner.
package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON slog logger at the given level. Levels are "debug",
// "info", "warn", and "error"; anything else falls back to info.
func New(level string) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination, mainly for tests.
func NewWriter(w io.Writer, level string) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slevel})
	return slog.New(handler)
}
