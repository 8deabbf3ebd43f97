// Package config resolves the ambient settings cmd/mkmimo needs before it
// can construct an ioloop.Loop: log verbosity, the starting buffer size for
// every endpoint, and whether the SIGUSR1 diagnostic dump should colorize
// its output.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/units"
	"github.com/sirupsen/logrus"

	"github.com/sashaperigo/mkmimo/internal/ioloop"
)

// Config holds application configuration.
type Config struct {
	LogLevel              logrus.Level
	InitialBufferCapacity int
	Color                 bool
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:              logrus.InfoLevel,
		InitialBufferCapacity: ioloop.DefaultInitialBufferCapacity,
		Color:                 true,
	}
}

// Load starts from DefaultConfig and overlays MKMIMO_INITIAL_BUFFER
// (a human-readable size, e.g. "256KiB", parsed with alecthomas/units) and
// MKMIMO_COLOR ("0" disables) when present. A malformed MKMIMO_INITIAL_BUFFER
// is logged and ignored rather than treated as fatal.
func Load(logger *logrus.Logger) *Config {
	cfg := DefaultConfig()

	if raw := os.Getenv("MKMIMO_INITIAL_BUFFER"); raw != "" {
		size, err := units.ParseBase2Bytes(raw)
		if err != nil || size <= 0 {
			logger.WithFields(logrus.Fields{"var": "MKMIMO_INITIAL_BUFFER", "value": raw}).
				Warn("invalid buffer size, using default")
		} else {
			cfg.InitialBufferCapacity = int(size)
		}
	}

	if raw := os.Getenv("MKMIMO_COLOR"); raw == "0" {
		cfg.Color = false
	}

	return cfg
}

// IoloopConfig builds the ioloop.Config this Config implies, overlaying the
// POLL_TIMEOUT_MSEC / THROTTLE_SLEEP_USEC knobs ioloop.ConfigFromEnv reads
// directly.
func (c *Config) IoloopConfig(logger *logrus.Logger) ioloop.Config {
	cfg := ioloop.ConfigFromEnv(logger)
	cfg.InitialBufferCapacity = c.InitialBufferCapacity
	return cfg
}

// NewLogger creates a configured logger instance.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// ParseLogLevel is a thin wrapper over logrus.ParseLevel that produces an
// error message naming the flag it came from, for cobra flag validation.
func ParseLogLevel(raw string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(raw)
	if err != nil {
		return 0, fmt.Errorf("--log-level %q: %w", raw, err)
	}
	return lvl, nil
}
