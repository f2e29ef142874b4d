package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorNoFit    = 3   // Indicates no measured parameter set fits the budget.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

var (
	// ErrEmptySeries is returned when a selector is initialized with a
	// series that holds no samples.
	ErrEmptySeries = errors.New("sample series is empty")

	// ErrNoSampleWithinBudget is the sentinel matched by
	// NoSampleWithinBudgetError through errors.Is.
	ErrNoSampleWithinBudget = errors.New("no sample within budget")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
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

// UnknownPolicyError is returned by the strategy factories when a name is
// not part of their closed enumeration. It is never retried.
type UnknownPolicyError struct {
	// Kind names the enumeration ("calibration", "selection", "variant").
	Kind string
	// Name is the rejected value.
	Name string
}

// Error returns a formatted message naming the rejected policy.
func (e UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown %s policy %q", e.Kind, e.Name)
}

// NoSampleWithinBudgetError reports that every measured sample exceeded the
// requested budget. Fastest carries the quickest measurement so callers can
// decide whether to relax the budget.
type NoSampleWithinBudgetError struct {
	// Budget is the requested ceiling.
	Budget time.Duration
	// Fastest is the elapsed time of the fastest recorded sample.
	Fastest time.Duration
}

// Error returns a formatted message describing the miss.
func (e *NoSampleWithinBudgetError) Error() string {
	return fmt.Sprintf("no sample within budget %s (fastest measured %s)", e.Budget, e.Fastest)
}

// Is reports whether target is ErrNoSampleWithinBudget.
func (e *NoSampleWithinBudgetError) Is(target error) bool {
	return target == ErrNoSampleWithinBudget
}

// PrimitiveError encapsulates a failure of the wrapped hashing primitive
// (hash, verify or salt generation) while preserving the original cause.
// It aborts the calibration run in progress.
type PrimitiveError struct {
	// Op is the primitive operation that failed ("hash", "verify", "salt").
	Op string
	// Cause is the underlying error that triggered this error.
	Cause error
}

// Error returns the operation name followed by the cause message.
func (e PrimitiveError) Error() string { return e.Op + ": " + e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e PrimitiveError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MemoryError represents a memory limit exceeded condition. It captures the
// requested, available, and limit memory values for diagnostic purposes.
type MemoryError struct {
	// Requested is the number of bytes the operation needed.
	Requested uint64
	// Available is the number of bytes currently available.
	Available uint64
	// Limit is the configured memory limit in bytes.
	Limit uint64
}

// Error returns a formatted message describing the memory error.
func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d bytes, available %d bytes (limit: %d)", e.Requested, e.Available, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the application exit code.
func ExitCodeFor(err error) int {
	var cfgErr ConfigError
	var policyErr UnknownPolicyError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &policyErr):
		return ExitErrorConfig
	case errors.Is(err, ErrNoSampleWithinBudget):
		return ExitErrorNoFit
	default:
		return ExitErrorGeneric
	}
}
