// Package log provides a structured logging interface for skstack machine
// learning operations.
//
// The package defines a minimal logging interface with ML-specific structured
// attributes, backed by zerolog. Estimators obtain a contextual logger via
// GetLoggerWithName and attach fit/predict diagnostics (sample counts, fold
// counts, class counts) as key-value fields.
package log

import (
	"context"
)

// Logger defines a structured logging interface with key-value fields.
//
// The interface is implementation-agnostic; the default implementation wraps
// zerolog. With returns a contextual logger with pre-populated fields, so a
// model can tag every message with its name once.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error it is attached under the "error" key.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level values.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
