package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/pkg/ingot"
)

func TestRead_BasicTable(t *testing.T) {
	input := "id,title,field_note\n001,First,hello\n002,Second,world\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id"}, rep)

	require.NotNil(t, table)
	assert.True(t, rep.Pass())
	assert.Equal(t, []string{"id", "title", "field_note"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Number)
	assert.Equal(t, "001", table.Rows[0].Cells["id"])
	assert.Equal(t, "world", table.Rows[1].Cells["field_note"])
}

func TestRead_EmptyInputIsFatal(t *testing.T) {
	rep := ingot.NewValidationReport()
	table := Read(strings.NewReader(""), Options{IDColumn: "id"}, rep)

	assert.Nil(t, table)
	assert.True(t, rep.Fatal)
}

func TestRead_HeaderValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty column name", "id,,title\n001,x,y\n"},
		{"duplicate column name", "id,title,title\n001,x,y\n"},
		{"missing id column", "identifier,title\n001,x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := ingot.NewValidationReport()
			table := Read(strings.NewReader(tt.input), Options{IDColumn: "id"}, rep)
			assert.Nil(t, table)
			assert.True(t, rep.Fatal)
		})
	}
}

func TestRead_DuplicateIDsAreFatal(t *testing.T) {
	input := "id,title\n001,First\n002,Second\n001,Third\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id"}, rep)

	assert.Nil(t, table)
	require.True(t, rep.Fatal)
	assert.Contains(t, rep.FatalMessage, `"001"`)
	assert.Contains(t, rep.FatalMessage, "rows 1, 3")
}

func TestRead_CommentRowsSkipped(t *testing.T) {
	input := "id,title\n# a note to self,ignored\n001,First\n  # indented comment,x\n002,Second\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id"}, rep)

	require.NotNil(t, table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "001", table.Rows[0].Cells["id"])
	assert.Equal(t, "002", table.Rows[1].Cells["id"])
}

func TestRead_ColumnCountMismatchExcludesRow(t *testing.T) {
	input := "id,title,field_note\n001,First,ok\n002,Second\n003,Third,ok\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id"}, rep)

	require.NotNil(t, table)
	assert.Len(t, table.Rows, 2, "short row is excluded, not fatal")
	assert.Equal(t, 1, rep.ErrorCount())
	assert.True(t, rep.RowHasErrors(2))
}

func TestRead_StartAndStopRow(t *testing.T) {
	input := "id,title\n001,a\n002,b\n003,c\n004,d\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id", StartRow: 2, StopRow: 3}, rep)

	require.NotNil(t, table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "002", table.Rows[0].Cells["id"])
	assert.Equal(t, "003", table.Rows[1].Cells["id"])
}

func TestRead_IgnoreColumns(t *testing.T) {
	input := "id,title,notes\n001,First,private\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id", IgnoreColumns: []string{"notes"}}, rep)

	require.NotNil(t, table)
	assert.Equal(t, []string{"id", "title"}, table.Header)
	_, present := table.Rows[0].Cells["notes"]
	assert.False(t, present)
	assert.False(t, table.HasColumn("notes"))
	assert.True(t, table.HasColumn("title"))
}

func TestRead_CustomDelimiter(t *testing.T) {
	input := "id\ttitle\n001\tFirst\n"
	rep := ingot.NewValidationReport()

	table := Read(strings.NewReader(input), Options{IDColumn: "id", Delimiter: "\t"}, rep)

	require.NotNil(t, table)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "First", table.Rows[0].Cells["title"])
}

func TestClean_SmartQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"“quoted”", `"quoted"`},
		{"it’s", "it's"},
		{"‘single’", "'single'"},
		{"  padded  ", "padded"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}
