// Package logging builds the slog loggers shared by the server and client.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing JSON when format is "json" and text otherwise.
func New(w io.Writer, format, level string, addSource bool) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: addSource, Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a textual level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
