package drupal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/pkg/ingot"
)

// NodeExists reports whether a node with the given ID exists.
func (c *Client) NodeExists(ctx context.Context, id int64) (bool, error) {
	return c.head(ctx, fmt.Sprintf("/node/%d?_format=json", id))
}

// MediaExists reports whether a media item with the given ID exists.
func (c *Client) MediaExists(ctx context.Context, id int64) (bool, error) {
	return c.head(ctx, fmt.Sprintf("/media/%d?_format=json", id))
}

// mediaListRow is one media entity from the node media listing.
type mediaListRow struct {
	MID []struct {
		Value int64 `json:"value"`
	} `json:"mid"`
}

// MediaIDsForNode lists the media IDs attached to a node. Satisfies the
// MediaLookup collaborator used by cascading delete tasks.
func (c *Client) MediaIDsForNode(ctx context.Context, nodeID int64) ([]int64, error) {
	var rows []mediaListRow
	if err := c.getJSON(ctx, fmt.Sprintf("/node/%d/media?_format=json", nodeID), &rows); err != nil {
		return nil, fmt.Errorf("listing media for node %d: %w", nodeID, err)
	}

	var ids []int64
	for _, row := range rows {
		if len(row.MID) > 0 {
			ids = append(ids, row.MID[0].Value)
		}
	}
	return ids, nil
}

// FileChecker verifies file references during validation: local paths are
// resolved against the input directory and stat'ed, URLs are probed with
// an unauthenticated HEAD request.
type FileChecker struct {
	fs       filesystem.Provider
	client   *Client
	inputDir string
}

// NewFileChecker creates a file checker rooted at inputDir.
// Panics if fs is nil.
func NewFileChecker(fs filesystem.Provider, client *Client, inputDir string) *FileChecker {
	if fs == nil {
		panic("fs cannot be nil")
	}
	return &FileChecker{fs: fs, client: client, inputDir: inputDir}
}

// CheckFile verifies that a file reference is accessible.
func (f *FileChecker) CheckFile(ctx context.Context, ref string) error {
	if isURL(ref) {
		if f.client == nil {
			return nil
		}
		ok, err := f.client.headURL(ctx, ref)
		if err != nil {
			return fmt.Errorf("probing file URL %q: %w", ref, err)
		}
		if !ok {
			return fmt.Errorf("file URL %q is not reachable", ref)
		}
		return nil
	}

	full := ref
	if !filepath.IsAbs(full) {
		full = filepath.Join(f.inputDir, ref)
	}
	info, err := f.fs.Stat(full)
	if err != nil {
		return fmt.Errorf("file %q not found", ref)
	}
	if info.IsDir() {
		return fmt.Errorf("file %q is a directory", ref)
	}
	return nil
}

// isURL reports whether ref is a remote file reference.
func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// headURL probes an absolute URL outside the client's base URL. The
// unauthenticated client is used so credentials are not sent to
// third-party hosts.
func (c *Client) headURL(ctx context.Context, rawURL string) (bool, error) {
	var exists bool
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.external.R().SetContext(ctx).Head(rawURL)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode() == 404:
			exists = false
			return nil
		case resp.IsError():
			return &StatusError{Method: "HEAD", URL: rawURL, Status: resp.StatusCode()}
		default:
			exists = true
			return nil
		}
	})
	return exists, err
}

var _ ingot.EntityChecker = (*Client)(nil)
var _ ingot.TermCreator = (*Client)(nil)
var _ ingot.FileChecker = (*FileChecker)(nil)
