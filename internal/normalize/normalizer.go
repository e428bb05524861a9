// Package normalize turns raw CSV rows into typed Records using the field
// codec registry, per-batch field templates, and per-task required-column
// rules.
package normalize

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vknys/ingot/internal/codec"
	"github.com/vknys/ingot/internal/csvio"
	"github.com/vknys/ingot/pkg/ingot"
)

// Normalizer converts raw rows to Records for one batch run.
type Normalizer struct {
	registry *codec.Registry
	schema   ingot.FieldSchema
	config   ingot.BatchConfig
	logger   ingot.Logger
}

// NewNormalizer creates a Normalizer. Panics if registry or logger is nil.
func NewNormalizer(registry *codec.Registry, schema ingot.FieldSchema, config ingot.BatchConfig, logger ingot.Logger) *Normalizer {
	if registry == nil {
		panic("registry cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Normalizer{
		registry: registry,
		schema:   schema,
		config:   config,
		logger:   logger,
	}
}

// reservedColumns are CSV columns consumed by the pipeline itself rather
// than dispatched to field codecs.
func (n *Normalizer) reservedColumns() map[string]bool {
	return map[string]bool{
		n.config.IDColumn:   true,
		ingot.ParentColumn:  true,
		ingot.FileColumn:    true,
		ingot.NodeIDColumn:  true,
		ingot.MediaIDColumn: true,
		ingot.TitleColumn:   true,
	}
}

// NormalizeTable validates the header against the remote schema, then
// normalizes every row. Rows that fail normalization are still returned
// with their errors recorded; the plan builder excludes them later so
// sibling rows keep flowing.
func (n *Normalizer) NormalizeTable(ctx context.Context, table *csvio.Table, rep *ingot.ValidationReport) []*ingot.Record {
	reserved := n.reservedColumns()

	// A header column the remote schema does not know is a batch-level
	// failure: every row would be wrong in the same way.
	for _, column := range table.Header {
		if reserved[column] {
			continue
		}
		def, known := n.schema[column]
		if !known {
			rep.SetFatal("CSV column %q does not match any field in the %q content type", column, n.config.ContentType)
			return nil
		}
		if !n.registry.Supports(def.Type) {
			rep.SetFatal("CSV column %q has field type %q, which is not supported", column, def.Type)
			return nil
		}
	}

	records := make([]*ingot.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, n.normalizeRow(ctx, row, table, rep))
	}
	return records
}

// normalizeRow builds one Record. Field templates fill fields absent from
// the CSV; an explicit CSV column always wins over a template for the same
// field.
func (n *Normalizer) normalizeRow(ctx context.Context, row csvio.RawRow, table *csvio.Table, rep *ingot.ValidationReport) *ingot.Record {
	rec := &ingot.Record{
		RowNumber: row.Number,
		Fields:    make(map[string]ingot.FieldValue),
	}

	cells := make(map[string]string, len(row.Cells)+len(n.config.FieldTemplates))
	for k, v := range row.Cells {
		cells[k] = v
	}
	for field, value := range n.config.FieldTemplates {
		if !table.HasColumn(field) {
			cells[field] = value
		}
	}

	rec.ID = cells[n.config.IDColumn]
	rec.ParentID = cells[ingot.ParentColumn]
	rec.File = cells[ingot.FileColumn]
	rec.Title = n.normalizeTitle(cells[ingot.TitleColumn], row.Number, rep)
	rec.NodeID = n.parseEntityID(cells[ingot.NodeIDColumn], ingot.NodeIDColumn, row.Number, rep)
	rec.MediaID = n.parseEntityID(cells[ingot.MediaIDColumn], ingot.MediaIDColumn, row.Number, rep)

	n.checkRequired(rec, cells, row.Number, rep)

	reserved := n.reservedColumns()
	for _, column := range table.Header {
		if reserved[column] {
			continue
		}
		raw, present := cells[column]
		if !present || raw == "" {
			continue
		}
		def := n.schema[column]
		if value, ok := n.registry.Parse(ctx, raw, def, row.Number, rep); ok {
			rec.Fields[column] = value
		}
	}

	// Templated fields for columns absent from the CSV entirely.
	for field := range n.config.FieldTemplates {
		if table.HasColumn(field) {
			continue
		}
		raw := cells[field]
		if raw == "" {
			continue
		}
		def, known := n.schema[field]
		if !known {
			rep.AddError(row.Number, field, "templated field %q does not match any field in the %q content type", field, n.config.ContentType)
			continue
		}
		if value, ok := n.registry.Parse(ctx, raw, def, row.Number, rep); ok {
			rec.Fields[field] = value
		}
	}

	return rec
}

// normalizeTitle truncates over-length titles with a warning; the remote
// system caps node titles at 255 characters.
func (n *Normalizer) normalizeTitle(title string, row int, rep *ingot.ValidationReport) string {
	if length := utf8.RuneCountInString(title); length > ingot.MaxTermNameLength {
		rep.AddWarning(row, ingot.TitleColumn, "title is longer (%d characters) than the maximum of %d and will be truncated", length, ingot.MaxTermNameLength)
		title = string([]rune(title)[:ingot.MaxTermNameLength])
	}
	return title
}

// parseEntityID parses a remote entity ID cell; empty cells yield zero.
func (n *Normalizer) parseEntityID(raw, column string, row int, rep *ingot.ValidationReport) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		rep.AddError(row, column, "value %q is not a valid entity ID", raw)
		return 0
	}
	return id
}

// checkRequired enforces the per-task required column rules. Failures are
// per-row errors; they never abort the whole batch.
func (n *Normalizer) checkRequired(rec *ingot.Record, cells map[string]string, row int, rep *ingot.ValidationReport) {
	switch n.config.Task {
	case ingot.TaskCreate, ingot.TaskCreateFromFiles:
		if strings.TrimSpace(rec.ID) == "" {
			rep.AddError(row, n.config.IDColumn, "record is missing a value in the ID column %q", n.config.IDColumn)
		}
		if rec.Title == "" {
			rep.AddError(row, ingot.TitleColumn, "record is missing a title")
		}
		if rec.File == "" && !n.config.AllowMissingFiles && !n.config.PagedContentFromDirectories {
			rep.AddError(row, ingot.FileColumn, "record has no file reference; set allow_missing_files to permit this")
		}

	case ingot.TaskUpdate, ingot.TaskDelete:
		if cells[ingot.NodeIDColumn] == "" {
			rep.AddError(row, ingot.NodeIDColumn, "record is missing a node ID")
		}

	case ingot.TaskAddMedia:
		if cells[ingot.NodeIDColumn] == "" {
			rep.AddError(row, ingot.NodeIDColumn, "record is missing a node ID")
		}
		if rec.File == "" {
			rep.AddError(row, ingot.FileColumn, "record is missing a file reference")
		}

	case ingot.TaskDeleteMedia:
		if cells[ingot.MediaIDColumn] == "" {
			rep.AddError(row, ingot.MediaIDColumn, "record is missing a media ID")
		}
	}
}
