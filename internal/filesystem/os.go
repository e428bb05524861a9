package filesystem

import (
	"os"
	"sort"
)

// OSFileSystem implements Provider for the OS filesystem.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem provider.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadDir returns the names of the regular files in the directory at
// path, sorted lexically.
func (p *OSFileSystem) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Stat returns file information for the given path.
func (p *OSFileSystem) Stat(path string) (FileInfo, error) {
	return os.Stat(path)
}
