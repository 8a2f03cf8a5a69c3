// Package errors provides error handling for idlgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel marking for the generator's failure taxonomy
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Classify into the taxonomy
//	return errors.Mark(err, errors.ErrParse)
//
//	// Check errors
//	if errors.IsParse(err) {
//	    // surface as a parse failure
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection and classification
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Mark         = crdb.Mark
	Unwrap       = crdb.Unwrap
	UnwrapOnce   = crdb.UnwrapOnce
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Failure taxonomy. Every error that escapes to the driver is marked with
// exactly one of these sentinels so the exit path can classify it without
// string matching. Wrap freely on top; Mark preserves the class.
var (
	// ErrUsage indicates a malformed invocation, caught before any
	// name is resolved.
	ErrUsage = New("usage error")

	// ErrValidation indicates a requested name whose shape does not
	// match the selected backend's requirement.
	ErrValidation = New("validation error")

	// ErrParse indicates a unit that could not be resolved to a parsed
	// form: missing source, invalid syntax, or a ledger hash mismatch.
	ErrParse = New("parse error")

	// ErrGeneration indicates a failure while producing output: an
	// unopenable sink or an internal invariant violation.
	ErrGeneration = New("generation error")
)

// IsUsage checks if an error is or wraps ErrUsage.
func IsUsage(err error) bool {
	return err != nil && Is(err, ErrUsage)
}

// IsValidation checks if an error is or wraps ErrValidation.
func IsValidation(err error) bool {
	return err != nil && Is(err, ErrValidation)
}

// IsParse checks if an error is or wraps ErrParse.
func IsParse(err error) bool {
	return err != nil && Is(err, ErrParse)
}

// IsGeneration checks if an error is or wraps ErrGeneration.
func IsGeneration(err error) bool {
	return err != nil && Is(err, ErrGeneration)
}

// Usagef creates a usage error with a formatted message.
func Usagef(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrUsage)
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrValidation)
}

// Generationf creates a generation error with a formatted message.
func Generationf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrGeneration)
}
