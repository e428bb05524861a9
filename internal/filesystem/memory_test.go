package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	m := NewMemoryFileSystem()
	m.AddFile("input/book1/page-002.jpg", 10)
	m.AddFile("input/book1/page-001.jpg", 10)
	m.AddFile("input/book2/page-001.jpg", 10)
	m.AddFile("input/metadata.csv", 5)

	names, err := m.ReadDir("input/book1")
	require.NoError(t, err)
	assert.Equal(t, []string{"page-001.jpg", "page-002.jpg"}, names, "names are sorted and scoped to the directory")

	names, err = m.ReadDir("input")
	require.NoError(t, err)
	assert.Equal(t, []string{"metadata.csv"}, names, "subdirectories are not listed")
}

func TestMemoryFileSystem_ReadDirMissing(t *testing.T) {
	m := NewMemoryFileSystem()

	_, err := m.ReadDir("nowhere")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadDirEmpty(t *testing.T) {
	m := NewMemoryFileSystem()
	m.AddDir("input/book1")

	names, err := m.ReadDir("input/book1")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	m := NewMemoryFileSystem()
	m.AddFile("input/obj.jpg", 2048)

	info, err := m.Stat("input/obj.jpg")
	require.NoError(t, err)
	assert.Equal(t, "obj.jpg", info.Name())
	assert.Equal(t, int64(2048), info.Size())
	assert.False(t, info.IsDir())

	info, err = m.Stat("input")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "parent directories exist implicitly")

	_, err = m.Stat("input/missing.jpg")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_NormalizesPaths(t *testing.T) {
	m := NewMemoryFileSystem()
	m.AddFile("./input//book1/page-001.jpg", 1)

	names, err := m.ReadDir("input/book1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"page-001.jpg"}, names)
}

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	names, err := NewOSFileSystem().ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names, "sorted, directories excluded")
}
