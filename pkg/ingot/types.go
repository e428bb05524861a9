package ingot

import (
	"errors"
	"fmt"
	"time"
)

// TaskKind identifies the remote operation a batch performs.
type TaskKind string

// Supported task kinds. Each kind changes which CSV columns are required
// and what plan steps are emitted.
const (
	TaskCreate          TaskKind = "create"
	TaskCreateFromFiles TaskKind = "create_from_files"
	TaskUpdate          TaskKind = "update"
	TaskDelete          TaskKind = "delete"
	TaskAddMedia        TaskKind = "add_media"
	TaskDeleteMedia     TaskKind = "delete_media"
)

// Valid reports whether k is one of the supported task kinds.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskCreate, TaskCreateFromFiles, TaskUpdate, TaskDelete, TaskAddMedia, TaskDeleteMedia:
		return true
	}
	return false
}

// UpdateMode controls how field values are applied during update tasks.
type UpdateMode string

const (
	UpdateModeReplace UpdateMode = "replace"
	UpdateModeAppend  UpdateMode = "append"
	UpdateModeDelete  UpdateMode = "delete"
)

// BatchConfig contains all parameters needed for one batch run.
type BatchConfig struct {
	// Task selects the remote operation kind
	Task TaskKind

	// Host is the base URL of the repository, e.g. "https://islandora.dev"
	Host string

	// Username and Password authenticate against the repository REST API.
	// Password is resolved from the environment by the CLI layer, never
	// from a flag.
	Username string
	Password string

	// ContentType is the target node bundle machine name
	ContentType string

	// InputDir is the directory containing the input CSV and any files
	InputDir string

	// InputCSV is the CSV filename, relative to InputDir
	InputCSV string

	// IDColumn names the CSV column holding each record's unique identifier
	IDColumn string

	// Delimiter separates CSV columns (default ",")
	Delimiter string

	// Subdelimiter separates multiple values inside one CSV cell (default "|")
	Subdelimiter string

	// AllowMissingFiles permits rows with an empty file reference
	AllowMissingFiles bool

	// AllowTermCreation permits on-the-fly creation of unmatched taxonomy terms
	AllowTermCreation bool

	// PagedContentFromDirectories enables directory-derived child grouping:
	// a subdirectory named after a record's ID supplies its ordered pages
	PagedContentFromDirectories bool

	// PageSequenceSeparator is the character preceding the numeric sequence
	// suffix in page filenames (default "-")
	PageSequenceSeparator string

	// PageContentType is the bundle for directory-derived child nodes.
	// Falls back to ContentType when empty.
	PageContentType string

	// UpdateModeOption controls field application for update tasks
	UpdateModeOption UpdateMode

	// CascadeDeleteMedia makes delete tasks enumerate and delete each
	// node's attached media
	CascadeDeleteMedia bool

	// RequestPause is the pause between consecutive remote operations
	RequestPause time.Duration

	// FieldTemplates supplies default values for fields absent from the
	// CSV. An explicit CSV column always overrides a template for the
	// same field.
	FieldTemplates map[string]string

	// IgnoreColumns lists CSV columns dropped before normalization
	IgnoreColumns []string

	// StartRow and StopRow bound which data rows are processed (1-based,
	// inclusive; zero means unbounded)
	StartRow int
	StopRow  int

	// RollbackCSVPath is where created node IDs are recorded so a partial
	// run can be undone with a later delete task. Empty disables the
	// rollback manifest.
	RollbackCSVPath string

	// Force bypasses interactive approval for delete tasks
	Force bool

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the BatchConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *BatchConfig) Validate() error {
	var errs []error

	if !c.Task.Valid() {
		errs = append(errs, fmt.Errorf("task %q is not one of create, create_from_files, update, delete, add_media, delete_media: %w", c.Task, ErrInvalidConfig))
	}

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}

	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
	}

	if c.InputCSV == "" && c.Task != TaskCreateFromFiles {
		errs = append(errs, fmt.Errorf("input_csv is required for %s tasks: %w", c.Task, ErrInvalidConfig))
	}

	if c.Task == TaskUpdate {
		switch c.UpdateModeOption {
		case UpdateModeReplace, UpdateModeAppend, UpdateModeDelete:
		default:
			errs = append(errs, fmt.Errorf("update_mode %q must be one of replace, append, delete: %w", c.UpdateModeOption, ErrInvalidConfig))
		}
	}

	if c.RequestPause < 0 {
		errs = append(errs, fmt.Errorf("request_pause cannot be negative: %w", ErrInvalidConfig))
	}

	if c.StartRow < 0 || c.StopRow < 0 {
		errs = append(errs, fmt.Errorf("start_row and stop_row cannot be negative: %w", ErrInvalidConfig))
	}
	if c.StartRow > 0 && c.StopRow > 0 && c.StopRow < c.StartRow {
		errs = append(errs, fmt.Errorf("stop_row (%d) cannot precede start_row (%d): %w", c.StopRow, c.StartRow, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ApplyDefaults fills zero-valued optional settings with their defaults.
// The CLI layer calls this after loading the YAML config so the rest of
// the pipeline never has to special-case empty settings.
func (c *BatchConfig) ApplyDefaults() {
	if c.IDColumn == "" {
		c.IDColumn = DefaultIDColumn
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if c.Subdelimiter == "" {
		c.Subdelimiter = DefaultSubdelimiter
	}
	if c.PageSequenceSeparator == "" {
		c.PageSequenceSeparator = DefaultPageSequenceSeparator
	}
	if c.PageContentType == "" {
		c.PageContentType = c.ContentType
	}
	if c.Task == TaskUpdate && c.UpdateModeOption == "" {
		c.UpdateModeOption = UpdateModeReplace
	}
	if c.RequestPause == 0 {
		c.RequestPause = DefaultRequestPause
	}
}
