package ingot

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Batch completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or parameters
	ExitConnectionError  = 11 // Failed to reach the repository host
	ExitApprovalDenied   = 12 // User denied delete approval
	ExitExecutionFailed  = 13 // Remote operation failed during execution
	ExitInputMissing     = 14 // Input CSV or directory not found
	ExitValidationFailed = 15 // Batch failed validation; nothing was mutated
)

// Field type machine names as reported by the remote schema. The codec
// registry selects a parser by these names, never by value shape.
const (
	FieldTypeText            = "string"
	FieldTypeInteger         = "integer"
	FieldTypeBoolean         = "boolean"
	FieldTypeDate            = "created"
	FieldTypeEntityReference = "entity_reference"
	FieldTypeTypedRelation   = "typed_relation"
	FieldTypeGeolocation     = "geolocation"
	FieldTypeLink            = "link"
)

const (
	// DefaultIDColumn is the CSV column holding record identifiers.
	DefaultIDColumn = "id"

	// DefaultDelimiter separates CSV columns.
	DefaultDelimiter = ","

	// DefaultSubdelimiter separates multiple values within one CSV cell.
	DefaultSubdelimiter = "|"

	// DefaultPageSequenceSeparator is the character preceding the numeric
	// sequence suffix in page filenames, e.g. "page-001.jpg".
	DefaultPageSequenceSeparator = "-"

	// DefaultRequestPause is the pause between consecutive remote
	// operations, as backpressure toward the repository.
	DefaultRequestPause = 500 * time.Millisecond

	// MaxTermNameLength is the remote system's maximum taxonomy term name
	// length. Longer names are truncated with a warning.
	MaxTermNameLength = 255

	// ParentColumn is the reserved CSV column linking a child record to
	// its parent record's ID.
	ParentColumn = "parent_id"

	// FileColumn is the reserved CSV column carrying the file reference.
	FileColumn = "file"

	// NodeIDColumn is the reserved CSV column carrying existing remote
	// node IDs for update, delete and add_media tasks.
	NodeIDColumn = "node_id"

	// MediaIDColumn is the reserved CSV column carrying existing remote
	// media IDs for delete_media tasks.
	MediaIDColumn = "media_id"

	// TitleColumn is the reserved CSV column carrying node titles.
	TitleColumn = "title"

	// MemberOfField is the field that links a child node to its parent.
	MemberOfField = "field_member_of"

	// WeightField is the field carrying a page's ordering weight.
	WeightField = "field_weight"

	// DefaultForceApprovalCountdown is the countdown duration before
	// forced approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3
)
