// Package log provides a structured logging interface for linear model
// operations.
//
// The package defines a minimal, slog-compatible logging interface that
// allows for flexible implementation switching while providing model-specific
// structured logging. A zerolog-backed implementation ships with the library
// and is installed as the default provider; tests can swap in TestLogger to
// capture output.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("linear").With(
//	    log.OperationKey, log.OperationFit,
//	)
//	logger.Debug("solving least squares",
//	    log.RowsKey, 120,
//	    log.ColsKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface is implementation-agnostic so callers can switch logging
// backends without touching call sites. Fields are alternating key-value
// pairs. The With method returns a contextual logger with pre-populated
// fields.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Debug logs carry detailed diagnostic information such as matrix
	// shapes and solver internals.
	//
	// Example:
	//
	//	logger.Debug("building design matrix",
	//	    log.TermsKey, 3,
	//	    log.RowsKey, 200,
	//	)
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Warnings indicate conditions such as ill-conditioned designs that do
	// not stop the computation.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided as the first field, stack trace
	// information may be automatically included.
	//
	// Example:
	//
	//	logger.Error("model comparison failed",
	//	    err,
	//	    log.OperationKey, log.OperationCompare,
	//	)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated in all
	// subsequent log messages.
	//
	// Example:
	//
	//	fitLogger := logger.With(
	//	    log.ComponentKey, "linear",
	//	    log.OperationKey, log.OperationFit,
	//	)
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given
	// level. Use it to avoid building expensive fields for records that
	// would be discarded.
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

// LoggerProvider creates and configures loggers. It exists for dependency
// injection and for swapping in test implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
