// Package log provides a structured logging interface for model conversion and
// verification runs.
//
// This package defines a minimal, slog-compatible logging interface so the
// converter and the equivalence checker can log through zerolog, log/slog or an
// in-memory test logger without depending on any of them directly.
//
// Key features:
//   - slog-compatible interface
//   - zerolog backend with structured error objects
//   - Conversion/verification attribute keys (shapes, deviations, throughput)
//   - Test-friendly logger capturing JSON lines in memory
//
// Example usage:
//
//	logger := log.NewZerologLogger(os.Stderr, log.LevelInfo).With(
//	    log.ComponentKey, "verify",
//	)
//	logger.Info("sample verified",
//	    log.SampleKey, "test",
//	    log.MaxAbsDeviationKey, 3.1e-7,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key-value pairs. The With method returns a
// contextual logger whose fields are attached to every subsequent record.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//   logger.Info("conversion completed",
	//       log.DInKey, 784,
	//       log.DOutKey, 32,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// Errors should be passed under ErrAttrKey so backends can attach
	// stack traces or structured error objects.
	//
	// Example:
	//   logger.Error("verification failed",
	//       log.ErrAttrKey, err,
	//       log.SampleKey, "train",
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }
func (nopLogger) Enabled(context.Context, Level) bool { return false }
