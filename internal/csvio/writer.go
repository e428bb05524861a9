package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/vknys/ingot/pkg/ingot"
)

// Manifest records the node IDs created during a run, in a CSV shaped as
// the input for a later delete batch. A partially-executed run can then
// be undone by pointing a delete task at the manifest.
type Manifest struct {
	file   *os.File
	writer *csv.Writer
}

// NewManifest creates the manifest file at path and writes its header.
// An existing file at path is truncated.
func NewManifest(path string) (*Manifest, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating rollback manifest %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{ingot.DefaultIDColumn, ingot.NodeIDColumn}); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing rollback manifest header: %w", err)
	}

	return &Manifest{file: f, writer: w}, nil
}

// Append records one created node. The row is flushed immediately so the
// manifest stays usable if the run aborts mid-batch.
func (m *Manifest) Append(recordID string, nodeID int64) error {
	if err := m.writer.Write([]string{recordID, strconv.FormatInt(nodeID, 10)}); err != nil {
		return fmt.Errorf("writing rollback manifest row for record %q: %w", recordID, err)
	}
	m.writer.Flush()
	return m.writer.Error()
}

// Close flushes and closes the manifest file.
func (m *Manifest) Close() error {
	m.writer.Flush()
	if err := m.writer.Error(); err != nil {
		m.file.Close()
		return err
	}
	return m.file.Close()
}
