package drupal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vknys/ingot/pkg/ingot"
)

// entityResponse carries the created entity IDs the executor cares about.
type entityResponse struct {
	NID []struct {
		Value int64 `json:"value"`
	} `json:"nid"`
	MID []struct {
		Value int64 `json:"value"`
	} `json:"mid"`
	FID []struct {
		Value int64 `json:"value"`
	} `json:"fid"`
}

// Executor performs planned steps against the repository's REST API.
// It satisfies the StepExecutor collaborator.
type Executor struct {
	client *Client
	config ingot.BatchConfig
	logger ingot.Logger
}

// NewExecutor creates an Executor.
// Panics if client or logger is nil.
func NewExecutor(client *Client, config ingot.BatchConfig, logger ingot.Logger) *Executor {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Executor{client: client, config: config, logger: logger}
}

// ExecuteStep performs one remote mutation. For create steps the returned
// ID is the created entity's remote ID; zero otherwise.
func (e *Executor) ExecuteStep(ctx context.Context, step *ingot.ExecutionStep) (int64, error) {
	switch step.Kind {
	case ingot.StepCreateNode:
		return e.createNode(ctx, step)
	case ingot.StepCreateMedia:
		return e.createMedia(ctx, step)
	case ingot.StepUpdateNode:
		return 0, e.updateNode(ctx, step)
	case ingot.StepSetReference:
		return 0, e.setReference(ctx, step)
	case ingot.StepDeleteNode:
		return 0, e.client.deleteEntity(ctx, fmt.Sprintf("/node/%d?_format=json", step.NodeID))
	case ingot.StepDeleteMedia:
		return 0, e.client.deleteEntity(ctx, fmt.Sprintf("/media/%d?_format=json", step.MediaID))
	default:
		return 0, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

// createNode creates one node and returns its remote ID.
func (e *Executor) createNode(ctx context.Context, step *ingot.ExecutionStep) (int64, error) {
	bundle := step.Bundle
	if bundle == "" {
		bundle = e.config.ContentType
	}

	payload := nodePayload(step.Record, bundle)
	if step.Weight > 0 {
		payload[ingot.WeightField] = []map[string]any{{"value": step.Weight}}
	}
	applyDeferred(payload, step)

	var created entityResponse
	if err := e.client.postJSON(ctx, "/node?_format=json", payload, &created); err != nil {
		return 0, fmt.Errorf("creating node for record %q: %w", step.Record.ID, err)
	}
	if len(created.NID) == 0 {
		return 0, fmt.Errorf("creating node for record %q: response carried no node ID", step.Record.ID)
	}

	nid := created.NID[0].Value
	e.logger.Info("Created node %d (record %q, %q)", nid, step.Record.ID, step.Record.Title)
	return nid, nil
}

// createMedia uploads the step's file and wraps it in a media entity
// attached to the owning node. The owning node ID comes from the step
// itself (add_media tasks) or from the resolved media-of slot (create
// tasks).
func (e *Executor) createMedia(ctx context.Context, step *ingot.ExecutionStep) (int64, error) {
	nodeID := step.NodeID
	for _, slot := range step.Deferred {
		if slot.Resolved {
			nodeID = slot.TargetID
		}
	}
	if nodeID == 0 {
		return 0, fmt.Errorf("creating media for file %q: owning node ID is not resolved", step.File)
	}

	filename := filepath.Base(step.File)
	mediaType := mediaTypeForFile(filename)

	fileID, err := e.uploadFile(ctx, step.File, filename, mediaType)
	if err != nil {
		return 0, err
	}

	var created entityResponse
	payload := mediaPayload(mediaType, filename, nodeID, fileID)
	if err := e.client.postJSON(ctx, "/entity/media?_format=json", payload, &created); err != nil {
		return 0, fmt.Errorf("creating %s media for node %d: %w", mediaType, nodeID, err)
	}
	if len(created.MID) == 0 {
		return 0, fmt.Errorf("creating %s media for node %d: response carried no media ID", mediaType, nodeID)
	}

	mid := created.MID[0].Value
	e.logger.Info("Created %s media %d on node %d from %q", mediaType, mid, nodeID, filename)
	return mid, nil
}

// uploadFile sends the file's bytes to the upload endpoint for the media
// bundle and returns the created file entity ID. URL references are
// fetched first; local paths are resolved against the input directory.
func (e *Executor) uploadFile(ctx context.Context, ref, filename, mediaType string) (int64, error) {
	var body any
	if isURL(ref) {
		data, err := e.client.fetchURL(ctx, ref)
		if err != nil {
			return 0, fmt.Errorf("fetching file %q: %w", ref, err)
		}
		body = data
	} else {
		full := ref
		if !filepath.IsAbs(full) {
			full = filepath.Join(e.config.InputDir, ref)
		}
		f, err := os.Open(full)
		if err != nil {
			return 0, fmt.Errorf("opening file %q: %w", ref, err)
		}
		defer f.Close()
		body = f
	}

	var created entityResponse
	path := fmt.Sprintf("/file/upload/media/%s/%s?_format=json", mediaType, fileField(mediaType))
	err := e.client.do(ctx, func(ctx context.Context) error {
		resp, err := e.client.http.R().SetContext(ctx).
			SetHeader("Content-Type", "application/octet-stream").
			SetHeader("Content-Disposition", fmt.Sprintf(`file; filename="%s"`, filename)).
			SetBody(body).
			SetResult(&created).
			Post(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "POST", URL: resp.Request.URL, Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("uploading file %q: %w", ref, err)
	}
	if len(created.FID) == 0 {
		return 0, fmt.Errorf("uploading file %q: response carried no file ID", ref)
	}
	return created.FID[0].Value, nil
}

// fetchURL retrieves the raw bytes of an absolute URL. The
// unauthenticated client is used so credentials are not sent to
// third-party hosts.
func (c *Client) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.external.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Method: "GET", URL: rawURL, Status: resp.StatusCode()}
		}
		data = resp.Bytes()
		return nil
	})
	return data, err
}

// updateNode patches one existing node. Append mode first fetches the
// node's current field values so new values accumulate instead of
// replacing.
func (e *Executor) updateNode(ctx context.Context, step *ingot.ExecutionStep) error {
	var existing map[string][]map[string]any
	if e.config.UpdateModeOption == ingot.UpdateModeAppend {
		nodePath := fmt.Sprintf("/node/%d?_format=json", step.NodeID)
		if err := e.client.getJSON(ctx, nodePath, &existing); err != nil {
			return fmt.Errorf("fetching node %d for append update: %w", step.NodeID, err)
		}
	}

	payload := updatePayload(step.Record, e.config.ContentType, e.config.UpdateModeOption, existing)
	nodePath := fmt.Sprintf("/node/%d?_format=json", step.NodeID)
	if err := e.client.patchJSON(ctx, nodePath, payload); err != nil {
		return fmt.Errorf("updating node %d: %w", step.NodeID, err)
	}

	e.logger.Info("Updated node %d (record %q)", step.NodeID, step.Record.ID)
	return nil
}

// setReference patches a single reference field on an already-created
// node, filling in a dependency ID that was unknown when the node was
// created.
func (e *Executor) setReference(ctx context.Context, step *ingot.ExecutionStep) error {
	payload := map[string]any{
		"type": []map[string]any{{"target_id": e.config.ContentType}},
	}
	applyDeferred(payload, step)

	nodePath := fmt.Sprintf("/node/%d?_format=json", step.NodeID)
	if err := e.client.patchJSON(ctx, nodePath, payload); err != nil {
		return fmt.Errorf("patching references on node %d: %w", step.NodeID, err)
	}
	return nil
}

// applyDeferred folds every resolved deferred slot into the payload as a
// single-valued entity reference.
func applyDeferred(payload map[string]any, step *ingot.ExecutionStep) {
	for _, slot := range step.Deferred {
		if slot.Resolved {
			payload[slot.Field] = []map[string]any{{"target_id": slot.TargetID}}
		}
	}
}

var _ ingot.StepExecutor = (*Executor)(nil)
