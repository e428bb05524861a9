package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/internal/graph"
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

func buildGraph(t *testing.T, config ingot.BatchConfig, records []*ingot.Record, rep *ingot.ValidationReport) *graph.Graph {
	t.Helper()
	gb := graph.NewBuilder(filesystem.NewMemoryFileSystem(), config, logging.NewNullLogger())
	return gb.Build(records, rep)
}

func kinds(p *ingot.Plan) []ingot.StepKind {
	var out []ingot.StepKind
	for _, s := range p.Steps() {
		out = append(out, s.Kind)
	}
	return out
}

func TestBuild_Create_ParentBeforeChildren(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskCreate}
	rep := ingot.NewValidationReport()

	records := []*ingot.Record{
		record("book", "", 1),
		record("page-1", "book", 2),
		record("page-2", "book", 3),
		record("other", "", 4),
	}
	g := buildGraph(t, config, records, rep)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	steps := p.Steps()
	require.Len(t, steps, 4)
	assert.Equal(t, "book", steps[0].Record.ID)
	assert.Equal(t, "page-1", steps[1].Record.ID)
	assert.Equal(t, "page-2", steps[2].Record.ID)
	assert.Equal(t, "other", steps[3].Record.ID)

	// Children carry a deferred member-of slot pointing at their parent.
	require.Len(t, steps[1].Deferred, 1)
	assert.Equal(t, ingot.MemberOfField, steps[1].Deferred[0].Field)
	assert.Equal(t, "book", steps[1].Deferred[0].DependsOn)
	assert.Empty(t, steps[0].Deferred)
}

func TestBuild_Create_FileEmitsMediaStep(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskCreate}
	rep := ingot.NewValidationReport()

	rec := record("obj", "", 1)
	rec.File = "obj.jpg"
	records := []*ingot.Record{rec}
	g := buildGraph(t, config, records, rep)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	require.Equal(t, []ingot.StepKind{ingot.StepCreateNode, ingot.StepCreateMedia}, kinds(p))

	media := p.Steps()[1]
	assert.Equal(t, "obj.jpg", media.File)
	require.Len(t, media.Deferred, 1)
	assert.Equal(t, MediaOfField, media.Deferred[0].Field)
	assert.Equal(t, "obj", media.Deferred[0].DependsOn)
}

func TestBuild_Create_PageBundleOverride(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem()
	fs.AddFile("input/book1/page-001.jpg", 100)

	config := ingot.BatchConfig{
		Task:                        ingot.TaskCreate,
		ContentType:                 "islandora_object",
		InputDir:                    "input",
		PagedContentFromDirectories: true,
		PageSequenceSeparator:       "-",
		PageContentType:             "islandora_page",
	}
	rep := ingot.NewValidationReport()
	records := []*ingot.Record{record("book1", "", 1)}

	gb := graph.NewBuilder(fs, config, logging.NewNullLogger())
	g := gb.Build(records, rep)
	require.True(t, rep.Pass(), "issues: %v", rep.Issues)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	// Parent node, then the page node, then the page's media.
	steps := p.Steps()
	require.Len(t, steps, 3)
	assert.Empty(t, steps[0].Bundle)
	assert.Equal(t, "islandora_page", steps[1].Bundle)
	assert.Equal(t, 1, steps[1].Weight)
	assert.Equal(t, ingot.StepCreateMedia, steps[2].Kind)
}

func TestBuild_Create_ExcludesFailedRows(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskCreate}
	rep := ingot.NewValidationReport()
	rep.AddError(2, "title", "record is missing a title")

	records := []*ingot.Record{
		record("good", "", 1),
		record("bad", "", 2),
	}
	g := buildGraph(t, config, records, rep)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	require.Equal(t, 1, p.Len())
	assert.Equal(t, "good", p.Steps()[0].Record.ID)
}

func TestBuild_Update(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskUpdate}
	rep := ingot.NewValidationReport()

	rec := record("001", "", 1)
	rec.NodeID = 42
	records := []*ingot.Record{rec}
	g := buildGraph(t, config, records, rep)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	require.Equal(t, 1, p.Len())
	step := p.Steps()[0]
	assert.Equal(t, ingot.StepUpdateNode, step.Kind)
	assert.Equal(t, int64(42), step.NodeID)
}

func TestBuild_Delete_CascadeMedia(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskDelete, CascadeDeleteMedia: true}
	rep := ingot.NewValidationReport()

	rec := record("001", "", 1)
	rec.NodeID = 42
	records := []*ingot.Record{rec}
	g := buildGraph(t, config, records, rep)

	lookup := func(ctx context.Context, nodeID int64) ([]int64, error) {
		assert.Equal(t, int64(42), nodeID)
		return []int64{7, 8}, nil
	}

	b := NewBuilder(config, lookup, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	require.Equal(t, []ingot.StepKind{ingot.StepDeleteMedia, ingot.StepDeleteMedia, ingot.StepDeleteNode}, kinds(p))
	assert.Equal(t, int64(7), p.Steps()[0].MediaID)
	assert.Equal(t, int64(8), p.Steps()[1].MediaID)
}

func TestBuild_Delete_CascadeLookupFailure(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskDelete, CascadeDeleteMedia: true}
	rep := ingot.NewValidationReport()

	rec := record("001", "", 1)
	rec.NodeID = 42
	records := []*ingot.Record{rec}
	g := buildGraph(t, config, records, rep)

	lookup := func(ctx context.Context, nodeID int64) ([]int64, error) {
		return nil, errors.New("boom")
	}

	b := NewBuilder(config, lookup, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	assert.Zero(t, p.Len(), "a failed media enumeration excludes the record")
	assert.True(t, rep.RowHasErrors(1))
}

func TestBuild_DeleteMedia(t *testing.T) {
	config := ingot.BatchConfig{Task: ingot.TaskDeleteMedia}
	rep := ingot.NewValidationReport()

	rec := record("001", "", 1)
	rec.MediaID = 99
	records := []*ingot.Record{rec}
	g := buildGraph(t, config, records, rep)

	b := NewBuilder(config, nil, logging.NewNullLogger())
	p := b.Build(context.Background(), g, records, rep)

	require.Equal(t, 1, p.Len())
	assert.Equal(t, ingot.StepDeleteMedia, p.Steps()[0].Kind)
	assert.Equal(t, int64(99), p.Steps()[0].MediaID)
}

func TestNewBuilder_CascadeRequiresLookup(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil media lookup with cascade deletion enabled")
		}
	}()
	NewBuilder(ingot.BatchConfig{Task: ingot.TaskDelete, CascadeDeleteMedia: true}, nil, logging.NewNullLogger())
}
