package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel parses a level name case-insensitively. Unknown or empty names
// return def.
//
// Valid levels: debug, info, warn, warning, error
func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return def
	}
}
