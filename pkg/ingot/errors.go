package ingot

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := service.Run(ctx, config)
//	if errors.Is(err, ingot.ErrValidationFailed) {
//	    // Surface the validation report without executing
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputNotFound indicates the input CSV or input directory was not found.
	ErrInputNotFound = errors.New("input not found")

	// ErrValidationFailed indicates the batch failed validation and no
	// remote mutation was attempted.
	ErrValidationFailed = errors.New("validation failed")

	// ErrApprovalDenied indicates the user denied approval for a delete task.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates a remote operation failed during execution.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrConnectionFailed indicates the repository host could not be reached.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInputNotFound):
		return ExitInputMissing
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
