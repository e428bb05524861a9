package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/pkg/ingot"
)

func TestManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollback.csv")

	m, err := NewManifest(path)
	require.NoError(t, err)

	require.NoError(t, m.Append("001", 42))
	require.NoError(t, m.Append("002", 43))
	require.NoError(t, m.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,node_id\n001,42\n002,43\n", string(content))

	// The manifest is itself valid delete-task input.
	rep := ingot.NewValidationReport()
	table := Read(strings.NewReader(string(content)), Options{IDColumn: ingot.DefaultIDColumn}, rep)
	require.NotNil(t, table)
	assert.True(t, rep.Pass())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "42", table.Rows[0].Cells[ingot.NodeIDColumn])
}

func TestManifest_FlushedPerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollback.csv")

	m, err := NewManifest(path)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Append("001", 42))

	// Readable before Close: an aborted run must leave usable output.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "001,42")
}

func TestNewManifest_BadPath(t *testing.T) {
	_, err := NewManifest(filepath.Join(t.TempDir(), "missing", "rollback.csv"))
	assert.Error(t, err)
}
