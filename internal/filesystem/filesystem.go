// Package filesystem abstracts directory and file access so that
// directory-derived grouping and file accessibility checks can be tested
// against an in-memory tree.
package filesystem

import "io/fs"

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// Provider gives read access to an input tree.
type Provider interface {
	// ReadDir returns the names of the regular files in the directory at
	// path, sorted lexically. Subdirectories are not included.
	ReadDir(path string) ([]string, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
