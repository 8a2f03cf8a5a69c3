// Package logger configures the global zap logger for idlgen.
//
// The generator is a short-lived batch process; everything it prints beyond
// the artifacts themselves is diagnostics. Default output is warnings and
// errors only, -v raises it to informational (touched files, cache stats),
// -vv to debug (resolution steps, closure traversal).
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance. Initialized to a no-op logger so
// packages may log before Initialize runs without nil checks.
var Logger *zap.SugaredLogger

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger for the given verbosity count.
func Initialize(verbosity int) {
	core := zapcore.NewCore(
		newConsoleEncoder(),
		zapcore.AddSync(os.Stderr),
		VerbosityToLevel(verbosity),
	)
	Logger = zap.New(core).Sugar()
}

// Cleanup flushes any buffered log entries.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Verbosity level constants for CLI flag counts.
const (
	VerbosityQuiet = 0 // no flags: warnings and errors only
	VerbosityInfo  = 1 // -v: + touched files, per-package progress
	VerbosityDebug = 2 // -vv: + resolution and traversal detail
)

// VerbosityToLevel maps -v flag counts to zap log levels.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

// Infow logs an info message with structured fields.
func Infow(msg string, keysAndValues ...interface{}) {
	Logger.Infow(msg, keysAndValues...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

// Errorw logs an error message with structured fields.
func Errorw(msg string, keysAndValues ...interface{}) {
	Logger.Errorw(msg, keysAndValues...)
}

// Debugw logs a debug message with structured fields.
func Debugw(msg string, keysAndValues ...interface{}) {
	Logger.Debugw(msg, keysAndValues...)
}
