package app

import (
	"log/slog"
	"os"

	"github.com/odyssey-erp/userdesk/internal/logging"
)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg == nil {
		return logging.New(os.Stdout, "", "", true)
	}
	return logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel, true)
}
