package filesystem

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files.
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements Provider for in-memory testing.
// Paths are normalized to forward slashes.
type MemoryFileSystem struct {
	files map[string]int64
	dirs  map[string]bool
}

// NewMemoryFileSystem creates a new, empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string]int64),
		dirs:  make(map[string]bool),
	}
}

// AddFile registers a file of the given size, creating parent directories
// implicitly.
func (m *MemoryFileSystem) AddFile(p string, size int64) {
	p = normalize(p)
	m.files[p] = size
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
}

// AddDir registers an (possibly empty) directory.
func (m *MemoryFileSystem) AddDir(p string) {
	m.dirs[normalize(p)] = true
}

// ReadDir returns the names of the regular files directly under path,
// sorted lexically.
func (m *MemoryFileSystem) ReadDir(p string) ([]string, error) {
	p = normalize(p)
	if !m.dirs[p] {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}

	var names []string
	for f := range m.files {
		if path.Dir(f) == p {
			names = append(names, path.Base(f))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Stat returns file information for the given path.
func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	p = normalize(p)
	if size, ok := m.files[p]; ok {
		return &memoryFileInfo{name: path.Base(p), size: size}, nil
	}
	if m.dirs[p] {
		return &memoryFileInfo{name: path.Base(p), isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func normalize(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	return strings.TrimSuffix(p, "/")
}
