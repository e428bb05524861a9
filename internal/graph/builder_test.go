package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/internal/logging"
	"github.com/vknys/ingot/pkg/ingot"
)

func record(id, parentID string, row int) *ingot.Record {
	return &ingot.Record{
		ID:        id,
		ParentID:  parentID,
		RowNumber: row,
		Title:     "Title " + id,
		Fields:    map[string]ingot.FieldValue{},
	}
}

func testBuilder(config ingot.BatchConfig, fs filesystem.Provider) *Builder {
	if fs == nil {
		fs = filesystem.NewMemoryFileSystem()
	}
	return NewBuilder(fs, config, logging.NewNullLogger())
}

func TestBuild_Forest(t *testing.T) {
	b := testBuilder(ingot.BatchConfig{Task: ingot.TaskCreate}, nil)
	rep := ingot.NewValidationReport()

	records := []*ingot.Record{
		record("book", "", 1),
		record("page-1", "book", 2),
		record("page-2", "book", 3),
		record("other", "", 4),
	}

	g := b.Build(records, rep)

	assert.True(t, rep.Pass())
	require.Len(t, g.Roots, 2)
	assert.Equal(t, "book", g.Roots[0].Record.ID)
	assert.Equal(t, "other", g.Roots[1].Record.ID)

	require.Len(t, g.Roots[0].Children, 2)
	assert.Equal(t, "page-1", g.Roots[0].Children[0].Record.ID)
	assert.Equal(t, "page-2", g.Roots[0].Children[1].Record.ID)

	node, found := g.NodeByID("page-2")
	require.True(t, found)
	assert.Equal(t, 3, node.Record.RowNumber)
}

func TestBuild_MissingParent(t *testing.T) {
	b := testBuilder(ingot.BatchConfig{Task: ingot.TaskCreate}, nil)
	rep := ingot.NewValidationReport()

	records := []*ingot.Record{
		record("a", "", 1),
		record("orphan", "nothing", 2),
		record("b", "", 3),
	}

	g := b.Build(records, rep)

	assert.Equal(t, 1, rep.ErrorCount())
	assert.True(t, rep.RowHasErrors(2))
	require.Len(t, g.Roots, 2, "siblings keep flowing when one row is excluded")
	_, found := g.NodeByID("orphan")
	assert.False(t, found)
}

func TestBuild_ParentMustPrecedeChild(t *testing.T) {
	b := testBuilder(ingot.BatchConfig{Task: ingot.TaskCreate}, nil)
	rep := ingot.NewValidationReport()

	records := []*ingot.Record{
		record("child", "parent", 1),
		record("parent", "", 2),
	}

	g := b.Build(records, rep)

	assert.Equal(t, 1, rep.ErrorCount())
	assert.True(t, rep.RowHasErrors(1))
	require.Len(t, g.Roots, 1)
	assert.Equal(t, "parent", g.Roots[0].Record.ID)
}

func TestBuild_FailedParentExcludesChildren(t *testing.T) {
	b := testBuilder(ingot.BatchConfig{Task: ingot.TaskCreate}, nil)
	rep := ingot.NewValidationReport()
	rep.AddError(1, "title", "record is missing a title")

	records := []*ingot.Record{
		record("bad-parent", "", 1),
		record("child", "bad-parent", 2),
		record("grandchild", "child", 3),
		record("healthy", "", 4),
	}

	g := b.Build(records, rep)

	// The child is excluded because its parent failed, and the grandchild
	// because its parent was excluded.
	assert.True(t, rep.RowHasErrors(2))
	assert.True(t, rep.RowHasErrors(3))
	require.Len(t, g.Roots, 1)
	assert.Equal(t, "healthy", g.Roots[0].Record.ID)
}

func TestBuild_DeepNesting(t *testing.T) {
	b := testBuilder(ingot.BatchConfig{Task: ingot.TaskCreate}, nil)
	rep := ingot.NewValidationReport()

	records := []*ingot.Record{
		record("a", "", 1),
		record("b", "a", 2),
		record("c", "b", 3),
	}

	g := b.Build(records, rep)

	assert.True(t, rep.Pass())
	require.Len(t, g.Roots, 1)
	require.Len(t, g.Roots[0].Children, 1)
	require.Len(t, g.Roots[0].Children[0].Children, 1)
	assert.Equal(t, "c", g.Roots[0].Children[0].Children[0].Record.ID)
}

func TestBuild_PagedContentFromDirectories(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem()
	fs.AddFile("input/book1/isbn-1843341778-002.jpg", 100)
	fs.AddFile("input/book1/isbn-1843341778-001.jpg", 100)
	fs.AddFile("input/book1/isbn-1843341778-010.jpg", 100)

	config := ingot.BatchConfig{
		Task:                        ingot.TaskCreate,
		InputDir:                    "input",
		PagedContentFromDirectories: true,
		PageSequenceSeparator:       "-",
	}
	b := testBuilder(config, fs)
	rep := ingot.NewValidationReport()

	g := b.Build([]*ingot.Record{record("book1", "", 1)}, rep)

	assert.True(t, rep.Pass(), "issues: %v", rep.Issues)
	require.Len(t, g.Roots, 1)
	pages := g.Roots[0].Children
	require.Len(t, pages, 3)

	// Ordered by sequence weight, with leading zeros stripped.
	assert.Equal(t, 1, pages[0].Weight)
	assert.Equal(t, 2, pages[1].Weight)
	assert.Equal(t, 10, pages[2].Weight)

	first := pages[0].Record
	assert.Equal(t, "book1_isbn-1843341778-001", first.ID)
	assert.Equal(t, "book1", first.ParentID)
	assert.Equal(t, "Title book1, page 1", first.Title)
	assert.Equal(t, "book1/isbn-1843341778-001.jpg", first.File)
	assert.True(t, pages[0].Page)
}

func TestBuild_PagedContent_MissingDirectory(t *testing.T) {
	config := ingot.BatchConfig{
		Task:                        ingot.TaskCreate,
		InputDir:                    "input",
		PagedContentFromDirectories: true,
		PageSequenceSeparator:       "-",
	}
	b := testBuilder(config, nil)
	rep := ingot.NewValidationReport()

	b.Build([]*ingot.Record{record("book1", "", 1)}, rep)

	assert.Equal(t, 1, rep.ErrorCount())
	assert.True(t, rep.RowHasErrors(1))
}

func TestBuild_PagedContent_EmptyDirectory(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem()
	fs.AddDir("input/book1")

	config := ingot.BatchConfig{
		Task:                        ingot.TaskCreate,
		InputDir:                    "input",
		PagedContentFromDirectories: true,
		PageSequenceSeparator:       "-",
	}
	b := testBuilder(config, fs)
	rep := ingot.NewValidationReport()

	b.Build([]*ingot.Record{record("book1", "", 1)}, rep)

	assert.Equal(t, 1, rep.ErrorCount())
}

func TestBuild_PagedContent_BadSequenceNames(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem()
	fs.AddFile("input/book1/page-001.jpg", 100)
	fs.AddFile("input/book1/nosuffix.jpg", 100)

	config := ingot.BatchConfig{
		Task:                        ingot.TaskCreate,
		InputDir:                    "input",
		PagedContentFromDirectories: true,
		PageSequenceSeparator:       "-",
	}
	b := testBuilder(config, fs)
	rep := ingot.NewValidationReport()

	g := b.Build([]*ingot.Record{record("book1", "", 1)}, rep)

	// The malformed name is reported; the valid page still attaches.
	assert.Equal(t, 1, rep.ErrorCount())
	require.Len(t, g.Roots, 1)
	require.Len(t, g.Roots[0].Children, 1)
	assert.Equal(t, 1, g.Roots[0].Children[0].Weight)
}

func TestPageWeight(t *testing.T) {
	config := ingot.BatchConfig{PageSequenceSeparator: "-"}
	b := testBuilder(config, nil)

	tests := []struct {
		name   string
		weight int
		ok     bool
	}{
		{"isbn-1843341778-001.jpg", 1, true},
		{"page-002.jpg", 2, true},
		{"page-0.tif", 0, true},
		{"page-12.tif", 12, true},
		{"nosuffix.jpg", 0, false},
		{"page-abc.jpg", 0, false},
	}

	for _, tt := range tests {
		rep := ingot.NewValidationReport()
		weight, ok := b.pageWeight(tt.name, "book1", 1, rep)
		assert.Equal(t, tt.ok, ok, "pageWeight(%q)", tt.name)
		if tt.ok {
			assert.Equal(t, tt.weight, weight, "pageWeight(%q)", tt.name)
		}
	}
}
