// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/image-pad-mcp/internal/logging"
)

// Environment variable names.
const (
	EnvLogLevel     = "IMAGE_PAD_LOG_LEVEL"
	EnvLogJSON      = "IMAGE_PAD_LOG_JSON"
	EnvLogFile      = "IMAGE_PAD_LOG_FILE"
	EnvWorkers      = "IMAGE_PAD_WORKERS"
	EnvWarnings     = "IMAGE_PAD_WARNINGS"
	EnvDebugObjects = "IMAGE_PAD_DEBUG_OBJECTS"
)

// DefaultEnvFile is read by Load when it exists.
const DefaultEnvFile = ".env"

// Config holds all server settings.
type Config struct {
	LogLevel zapcore.Level
	LogJSON  bool
	LogFile  string

	// Workers is the size of the shared worker pool and the default number of
	// pieces a pad is split into. 0 means one per CPU.
	Workers int

	// WarningDisplay sets the process-wide warning flag of ref-counted objects.
	WarningDisplay bool

	// DebugObjects turns on debug logging for the server's pad filters.
	DebugObjects bool
}

// Load reads envFile (DefaultEnvFile when empty) if it exists, then builds a
// Config from the environment. Variables already set in the environment win
// over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:       logging.ParseLevel(GetEnvOrDefault(EnvLogLevel, "info"), zapcore.InfoLevel),
		LogJSON:        ParseBoolEnv(EnvLogJSON, false),
		LogFile:        GetEnvOrDefault(EnvLogFile, ""),
		Workers:        ParseIntEnv(EnvWorkers, 0),
		WarningDisplay: ParseBoolEnv(EnvWarnings, true),
		DebugObjects:   ParseBoolEnv(EnvDebugObjects, false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%s must not be negative, got %d", EnvWorkers, c.Workers)
	}
	return nil
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level: c.LogLevel,
		JSON:  c.LogJSON,
		File:  c.LogFile,
	}
}
