package cli

import (
	"io"
	"log/slog"
)

// newLogger returns the diagnostics logger. Diagnostics go to w (stderr) so
// that stdout only ever carries the report.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
