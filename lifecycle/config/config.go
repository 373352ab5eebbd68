// Package config reads the LIFECYCLE_* environment and builds the logger
// the lifecycle components share.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LIFECYCLE_LOG_LEVEL" envDefault:"info"`
	// LogFormat is console or json.
	LogFormat string `env:"LIFECYCLE_LOG_FORMAT" envDefault:"console"`
	// DebugEmit logs emits that reach no subscriber.
	DebugEmit bool `env:"LIFECYCLE_DEBUG_EMIT" envDefault:"false"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// Logger builds a slog logger backed by zerolog that writes to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp, NoColor: true}
	}
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	return slog.New(zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: level}))
}
