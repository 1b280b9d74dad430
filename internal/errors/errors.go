// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// decomposition, internal invariants) and for carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types that carry a cause implement Unwrap() to support
// errors.Is() and errors.As().
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a verification mismatch.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect
// user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// UnsupportedLengthError is returned by the decomposition engine when the
// series length along the transform axis is not a power of two. It is fatal
// and is surfaced before any numeric work begins.
type UnsupportedLengthError struct {
	// Length is the offending series length along the transform axis.
	Length int
	// Axis is the transform axis.
	Axis int
}

// Error returns the error message for an UnsupportedLengthError.
func (e UnsupportedLengthError) Error() string {
	return fmt.Sprintf("series length %d along axis %d is not a power of two", e.Length, e.Axis)
}

// ShapeMismatchError indicates an internal invariant violation between the
// even and odd branch lengths of a recombination step. It points to a bug in
// chunk-boundary tracking and is never user-recoverable.
type ShapeMismatchError struct {
	// EvenLen is the length of the even-indexed half result.
	EvenLen int
	// OddLen is the length of the odd-indexed half result.
	OddLen int
}

// Error returns the error message for a ShapeMismatchError.
func (e ShapeMismatchError) Error() string {
	return fmt.Sprintf("recombination halves differ in length: even=%d odd=%d", e.EvenLen, e.OddLen)
}

// VerificationError is returned when the verification pass finds a bin of
// the materialized output disagreeing with the direct DFT reference beyond
// tolerance. It identifies the first offending bin.
type VerificationError struct {
	// Bin is the index along the transform axis where the mismatch occurred.
	Bin int
	// Outer and Inner locate the batch lane of the mismatch.
	Outer, Inner int
	// Got is the materialized value, Want the reference value.
	Got, Want complex128
}

// Error returns the error message for a VerificationError.
func (e VerificationError) Error() string {
	return fmt.Sprintf("verification mismatch at bin %d (outer %d, inner %d): got %v, want %v",
		e.Bin, e.Outer, e.Inner, e.Got, e.Want)
}

// InvalidSizeError is returned when twiddle-factor computation is requested
// for a degenerate size (odd, or smaller than 2).
type InvalidSizeError struct {
	// Size is the requested twiddle vector size.
	Size int
}

// Error returns the error message for an InvalidSizeError.
func (e InvalidSizeError) Error() string {
	return fmt.Sprintf("twiddle factors require an even size >= 2, got %d", e.Size)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline
// exceeded error.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: true if the error is a context error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsDecompositionError reports whether err originates from graph building
// rather than materialization. Decomposition errors are cheap: they occur
// before any numeric work has been performed.
func IsDecompositionError(err error) bool {
	var lengthErr UnsupportedLengthError
	var sizeErr InvalidSizeError
	return errors.As(err, &lengthErr) || errors.As(err, &sizeErr)
}
