// Package logging builds the zap logger used by the server.
//
// Stdout carries the MCP protocol, so console output always goes to stderr.
// An optional log file receives the same entries as JSON and is rotated by
// lumberjack.
package logging

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File rotation defaults.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 14
)

// Options configures New.
type Options struct {
	// Level is the minimum level written to every output.
	Level zapcore.Level

	// JSON switches stderr output from the human-readable console format to
	// JSON.
	JSON bool

	// File, if set, also appends JSON entries to this path with rotation.
	File string
}

// New returns a logger writing to stderr and, if opts.File is set, to a
// rotated log file.
func New(opts Options) *zap.Logger {
	var file zapcore.WriteSyncer
	if opts.File != "" {
		file = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
			Compress:   true,
		})
	}
	return NewWithWriters(opts, zapcore.Lock(os.Stderr), file)
}

// NewWithWriters is like New but writes to the given syncers. file may be
// nil.
func NewWithWriters(opts Options, console, file zapcore.WriteSyncer) *zap.Logger {
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	}

	core := zapcore.NewCore(enc, console, opts.Level)
	if file != nil {
		core = zapcore.NewTee(core,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), file, opts.Level))
	}
	return zap.New(core, zap.AddCaller())
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// consoleEncoderConfig is uncoloured; stderr is often captured by the MCP
// client into a plain log.
func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}
