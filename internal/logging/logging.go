// Package logging builds the slog loggers used across the simulator.
// Logs always go to stderr: stdout carries the result dump and must
// stay machine-readable.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/me/dagsim/pkg/model"
)

// Levels accepted by the --log-level flag.
var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New returns a stderr logger for the given level and format
// ("text" or "json").
func New(level, format string) (*slog.Logger, error) {
	return NewWithWriter(level, format, os.Stderr)
}

// NewWithWriter is New with an explicit destination, for tests.
func NewWithWriter(level, format string, w io.Writer) (*slog.Logger, error) {
	l, ok := levels[level]
	if !ok {
		return nil, model.NewConfigError("log-level", "unknown level %q (valid values: debug, info, warn, error)", level)
	}
	opts := &slog.HandlerOptions{Level: l}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, model.NewConfigError("log-format", "unknown format %q (valid values: text, json)", format)
}
