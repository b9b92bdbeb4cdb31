// Package config loads runtime configuration for the storefront binaries.
//
// Values come from environment variables (github.com/caarlos0/env). A .env
// file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LogConfig controls the zerolog output of a binary.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is "console" for human output or "json".
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// Sanitize normalises log settings.
func (l *LogConfig) Sanitize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format != "json" {
		l.Format = "console"
	}
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

func parse(v interface{}) error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
