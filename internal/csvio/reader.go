// Package csvio reads and pre-cleans the input CSV: header validation,
// smart-quote cleanup, comment-row skipping, duplicate identifier
// detection, and per-row column count checks.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vknys/ingot/pkg/ingot"
)

// RawRow is one cleaned but untyped CSV row.
type RawRow struct {
	// Number is the 1-based data row number (the header is row 0)
	Number int

	// Cells maps column names to cleaned cell values
	Cells map[string]string
}

// Table is the cleaned tabular input for one batch.
type Table struct {
	// Header lists the column names in source order, after dropping
	// ignored columns
	Header []string

	// Rows holds the data rows that survived cleaning. Rows with
	// column-count mismatches are excluded and reported.
	Rows []RawRow
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Options configures CSV reading for one batch.
type Options struct {
	// Delimiter separates columns; the first rune is used (default ",")
	Delimiter string

	// IDColumn, when non-empty, is checked for uniqueness across the batch
	IDColumn string

	// IgnoreColumns lists columns dropped from every row
	IgnoreColumns []string

	// StartRow and StopRow bound which data rows are kept (1-based,
	// inclusive; zero means unbounded)
	StartRow int
	StopRow  int
}

// Read parses and cleans CSV content. Batch-level failures (empty input,
// malformed or duplicate header columns, duplicate record identifiers)
// set the report's fatal flag; per-row column-count mismatches exclude
// only the affected row.
func Read(r io.Reader, opts Options, rep *ingot.ValidationReport) *Table {
	delimiter := ','
	if opts.Delimiter != "" {
		delimiter = []rune(opts.Delimiter)[0]
	}

	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1 // column counts are validated per row below
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		rep.SetFatal("input CSV is empty")
		return nil
	}
	if err != nil {
		rep.SetFatal("failed to read CSV header: %v", err)
		return nil
	}

	ignored := make(map[string]bool, len(opts.IgnoreColumns))
	for _, col := range opts.IgnoreColumns {
		ignored[col] = true
	}

	seen := make(map[string]bool, len(header))
	var columns []string
	keep := make([]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if name == "" {
			rep.SetFatal("CSV header has an empty column name in position %d", i+1)
			return nil
		}
		if seen[name] {
			rep.SetFatal("CSV header has a duplicate column name %q", name)
			return nil
		}
		seen[name] = true
		if ignored[name] {
			continue
		}
		keep[i] = true
		columns = append(columns, name)
	}

	if opts.IDColumn != "" && !seen[opts.IDColumn] {
		rep.SetFatal("CSV header is missing the configured ID column %q", opts.IDColumn)
		return nil
	}

	table := &Table{Header: columns}
	ids := make(map[string][]int)

	rowNum := 0
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rep.AddError(rowNum, "", "row is unreadable: %v", err)
			continue
		}

		if opts.StartRow > 0 && rowNum < opts.StartRow {
			continue
		}
		if opts.StopRow > 0 && rowNum > opts.StopRow {
			break
		}

		// Rows whose first cell starts with # are comments.
		if len(cells) > 0 && strings.HasPrefix(strings.TrimSpace(cells[0]), "#") {
			continue
		}

		if len(cells) != len(header) {
			rep.AddError(rowNum, "", "row has %d columns but the header has %d", len(cells), len(header))
			continue
		}

		row := RawRow{Number: rowNum, Cells: make(map[string]string, len(columns))}
		for i, cell := range cells {
			if !keep[i] {
				continue
			}
			row.Cells[header[i]] = Clean(cell)
		}

		if opts.IDColumn != "" {
			id := row.Cells[opts.IDColumn]
			ids[id] = append(ids[id], rowNum)
		}

		table.Rows = append(table.Rows, row)
	}

	if dupes := duplicateIDs(ids); len(dupes) > 0 {
		rep.SetFatal("duplicate identifiers in column %q: %s", opts.IDColumn, strings.Join(dupes, ", "))
		return nil
	}

	return table
}

// duplicateIDs returns a sorted description of every identifier used by
// more than one row.
func duplicateIDs(ids map[string][]int) []string {
	var dupes []string
	for id, rows := range ids {
		if len(rows) > 1 {
			dupes = append(dupes, fmt.Sprintf("%q (rows %s)", id, joinInts(rows)))
		}
	}
	sort.Strings(dupes)
	return dupes
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

// Clean performs basic string cleanup on one CSV cell: smart and curly
// quotes become straight ones, and surrounding whitespace is stripped.
func Clean(value string) string {
	replacer := strings.NewReplacer(
		"“", `"`, // left double quotation mark
		"”", `"`, // right double quotation mark
		"‘", "'", // left single quotation mark
		"’", "'", // right single quotation mark
	)
	return strings.TrimSpace(replacer.Replace(value))
}
