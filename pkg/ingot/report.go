package ingot

import (
	"fmt"

	"github.com/google/uuid"
)

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError excludes the affected row from the plan
	SeverityError Severity = "error"

	// SeverityWarning is informational; the row stays in the plan
	SeverityWarning Severity = "warning"
)

// Issue is one per-row, per-field diagnostic produced during validation.
type Issue struct {
	// RowNumber is the 1-based source row (0 for batch-level issues)
	RowNumber int

	// Field is the field machine name, when the issue is field-scoped
	Field string

	// Severity is error or warning
	Severity Severity

	// Message is the human-readable diagnostic
	Message string
}

// String formats the issue for log output.
func (i Issue) String() string {
	scope := ""
	if i.RowNumber > 0 {
		scope = fmt.Sprintf("row %d", i.RowNumber)
	}
	if i.Field != "" {
		if scope != "" {
			scope += ", "
		}
		scope += "field " + i.Field
	}
	if scope != "" {
		return fmt.Sprintf("[%s] (%s) %s", i.Severity, scope, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}

// ValidationReport collects every error and warning produced while
// normalizing, resolving and planning one batch. Issues appear in source
// row order; within a row, in the order they were detected.
//
// The report is the single place that decides fatal-batch versus continue:
// lower-level components append diagnostics rather than returning errors.
type ValidationReport struct {
	// RunID uniquely identifies this batch run in logs and manifests
	RunID uuid.UUID

	// Issues is the ordered list of diagnostics
	Issues []Issue

	// Fatal is set for batch-level failures (malformed header, unreadable
	// input) that abort before any row processing
	Fatal bool

	// FatalMessage describes the fatal condition when Fatal is set
	FatalMessage string

	errorRows map[int]bool
}

// NewValidationReport creates an empty report with a fresh run ID.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		RunID:     uuid.New(),
		errorRows: make(map[int]bool),
	}
}

// AddError appends an error-severity issue for the given row and field.
// Field may be empty for row-level issues.
func (r *ValidationReport) AddError(row int, field string, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		RowNumber: row,
		Field:     field,
		Severity:  SeverityError,
		Message:   fmt.Sprintf(format, args...),
	})
	if r.errorRows == nil {
		r.errorRows = make(map[int]bool)
	}
	r.errorRows[row] = true
}

// AddWarning appends a warning-severity issue for the given row and field.
func (r *ValidationReport) AddWarning(row int, field string, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		RowNumber: row,
		Field:     field,
		Severity:  SeverityWarning,
		Message:   fmt.Sprintf(format, args...),
	})
}

// SetFatal marks the batch as fatally failed. Fatal conditions abort
// before any row processing and before any remote mutation.
func (r *ValidationReport) SetFatal(format string, args ...interface{}) {
	r.Fatal = true
	r.FatalMessage = fmt.Sprintf(format, args...)
}

// RowHasErrors reports whether any error-severity issue was recorded for
// the given row. Rows with errors are excluded from the plan.
func (r *ValidationReport) RowHasErrors(row int) bool {
	return r.errorRows[row]
}

// ErrorCount returns the number of error-severity issues.
func (r *ValidationReport) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity issues.
func (r *ValidationReport) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Pass reports whether the batch may proceed to execution: no fatal
// condition and no error-severity issues.
func (r *ValidationReport) Pass() bool {
	return !r.Fatal && r.ErrorCount() == 0
}
