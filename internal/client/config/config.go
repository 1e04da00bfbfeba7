// Package config loads settings for the terminal client.
package config

import (
	"flag"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings for the client.
type Config struct {
	BaseURL   string        `envconfig:"USERDESK_BASE_URL" default:"http://localhost:3000"`
	Timeout   time.Duration `envconfig:"USERDESK_TIMEOUT" default:"10s"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string        `envconfig:"LOG_FORMAT" default:"pretty"`
}

// Load reads the environment and then overlays command-line flags from args.
// Flags take precedence over environment values.
func Load(args []string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet("userdesk-client", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the userdesk server")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}
