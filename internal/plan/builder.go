// Package plan walks the validated forest in dependency order and emits
// the ordered sequence of abstract remote operations for one batch.
package plan

import (
	"context"

	"github.com/vknys/ingot/internal/graph"
	"github.com/vknys/ingot/pkg/ingot"
)

// MediaOfField is the field that links a media item to its node.
const MediaOfField = "field_media_of"

// Builder emits execution plans for one batch.
type Builder struct {
	config      ingot.BatchConfig
	mediaLookup ingot.MediaLookup
	logger      ingot.Logger
}

// NewBuilder creates a Builder. mediaLookup may be nil unless the config
// enables cascade media deletion. Panics if logger is nil.
func NewBuilder(config ingot.BatchConfig, mediaLookup ingot.MediaLookup, logger ingot.Logger) *Builder {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if config.CascadeDeleteMedia && config.Task == ingot.TaskDelete && mediaLookup == nil {
		panic("mediaLookup cannot be nil when cascade media deletion is enabled")
	}
	return &Builder{config: config, mediaLookup: mediaLookup, logger: logger}
}

// Build emits the ordered step sequence for the batch's task kind.
// Records that failed normalization or resolution are excluded from the
// plan but remain in the report; they never block sibling records.
func (b *Builder) Build(ctx context.Context, g *graph.Graph, records []*ingot.Record, rep *ingot.ValidationReport) *ingot.Plan {
	p := ingot.NewPlan()

	switch b.config.Task {
	case ingot.TaskCreate, ingot.TaskCreateFromFiles:
		// Depth-first, parent before children. Relative order among
		// roots follows original row order.
		for _, root := range g.Roots {
			b.emitCreate(p, root)
		}

	case ingot.TaskUpdate:
		// No graph ordering needed: no new parents are created.
		for _, rec := range b.included(records, rep) {
			p.Append(&ingot.ExecutionStep{Kind: ingot.StepUpdateNode, Record: rec, NodeID: rec.NodeID})
		}

	case ingot.TaskDelete:
		for _, rec := range b.included(records, rep) {
			b.emitDelete(ctx, p, rec, rep)
		}

	case ingot.TaskAddMedia:
		for _, rec := range b.included(records, rep) {
			p.Append(&ingot.ExecutionStep{Kind: ingot.StepCreateMedia, Record: rec, NodeID: rec.NodeID, File: rec.File})
		}

	case ingot.TaskDeleteMedia:
		for _, rec := range b.included(records, rep) {
			p.Append(&ingot.ExecutionStep{Kind: ingot.StepDeleteMedia, Record: rec, MediaID: rec.MediaID})
		}
	}

	return p
}

// emitCreate emits one CreateNode step for the node, immediately followed
// by zero or one CreateMedia step when a file reference exists, then
// recurses into children. A child's member-of slot stays deferred until
// the parent's CreateNode step reports a remote ID.
func (b *Builder) emitCreate(p *ingot.Plan, node *graph.Node) {
	rec := node.Record

	step := &ingot.ExecutionStep{
		Kind:   ingot.StepCreateNode,
		Record: rec,
		Weight: node.Weight,
	}
	if node.Page {
		step.Bundle = b.config.PageContentType
	}
	if rec.ParentID != "" {
		step.Deferred = append(step.Deferred, &ingot.DeferredSlot{
			Field:     ingot.MemberOfField,
			DependsOn: rec.ParentID,
		})
	}
	p.Append(step)

	if rec.File != "" {
		media := &ingot.ExecutionStep{
			Kind:   ingot.StepCreateMedia,
			Record: rec,
			File:   rec.File,
			Deferred: []*ingot.DeferredSlot{{
				Field:     MediaOfField,
				DependsOn: rec.ID,
			}},
		}
		p.Append(media)
	}

	for _, child := range node.Children {
		b.emitCreate(p, child)
	}
}

// emitDelete emits the DeleteNode step for one record, preceded by
// DeleteMedia steps for every attached media item when cascade deletion
// is enabled. Media discovery is a remote lookup against the live system.
func (b *Builder) emitDelete(ctx context.Context, p *ingot.Plan, rec *ingot.Record, rep *ingot.ValidationReport) {
	if b.config.CascadeDeleteMedia {
		mediaIDs, err := b.mediaLookup(ctx, rec.NodeID)
		if err != nil {
			rep.AddError(rec.RowNumber, "", "failed to enumerate media for node %d: %v", rec.NodeID, err)
			return
		}
		for _, mediaID := range mediaIDs {
			p.Append(&ingot.ExecutionStep{Kind: ingot.StepDeleteMedia, Record: rec, NodeID: rec.NodeID, MediaID: mediaID})
		}
	}
	p.Append(&ingot.ExecutionStep{Kind: ingot.StepDeleteNode, Record: rec, NodeID: rec.NodeID})
}

// included filters out records whose rows carry error-severity issues.
func (b *Builder) included(records []*ingot.Record, rep *ingot.ValidationReport) []*ingot.Record {
	var out []*ingot.Record
	for _, rec := range records {
		if rep.RowHasErrors(rec.RowNumber) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
