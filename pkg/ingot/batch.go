package ingot

import "context"

// Checker is the interface for validate-only batch runs. Implementations
// perform the full validation pipeline against the remote snapshot and
// surface every error and warning without mutating remote state.
type Checker interface {
	// Check validates the batch described by config and returns the
	// validation report. The returned error is non-nil only for failures
	// outside the report's scope (bad config, unreadable input,
	// unreachable host).
	Check(ctx context.Context, config BatchConfig) (*ValidationReport, error)
}

// Runner is the interface for executing batch runs. Implementations must
// perform the same validation as Checker first, and abort before any
// mutation if the batch is fatal or any included row has an unresolved
// error.
type Runner interface {
	// Run validates and then executes the batch described by config.
	// Remote operations are issued one at a time; cancellation via ctx is
	// cooperative and leaves already-created remote objects intact.
	Run(ctx context.Context, config BatchConfig) (*ValidationReport, error)
}
