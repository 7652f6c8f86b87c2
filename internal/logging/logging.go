// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug lowers the level from Warn
// to Debug.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs a logger built by New as the slog default and returns it.
func Setup(w io.Writer, debug bool) *slog.Logger {
	logger := New(w, debug)
	slog.SetDefault(logger)
	return logger
}
