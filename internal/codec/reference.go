package codec

import (
	"context"
	"fmt"
	"strings"

	"github.com/vknys/ingot/internal/taxonomy"
	"github.com/vknys/ingot/pkg/ingot"
)

// referenceCodec parses entity-reference values: integer term IDs, term
// URIs, or term names (namespaced "vocabulary:name" when the field spans
// more than one vocabulary). Name and URI resolution is delegated to the
// taxonomy resolver.
type referenceCodec struct{ reg *Registry }

func (c *referenceCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.ReferenceValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		ref := taxonomy.ParseReference(v)
		id, ok := c.reg.resolver.Resolve(ctx, ref, def.Vocabularies, c.reg.allowCreate, row, def.Name, rep)
		if !ok {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("reference %q is unresolvable", v)
			continue
		}
		out.TargetIDs = append(out.TargetIDs, id)
	}
	return out
}

// typedRelationCodec parses "namespace:relationtype:targetid" triples.
// The target segment may contain further colons; only the first two colons
// delimit segments. Targets resolve like entity references, but creation
// is never permitted.
type typedRelationCodec struct{ reg *Registry }

func (c *typedRelationCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.TypedRelationValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		segments := strings.SplitN(v, ":", 3)
		if len(segments) != 3 || segments[0] == "" || segments[1] == "" || segments[2] == "" {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("typed relation %q must have the form namespace:relationtype:targetid", v)
			rep.AddError(row, def.Name, "typed relation %q must have the form namespace:relationtype:targetid", v)
			continue
		}

		rel := ingot.TypedRelation{
			Namespace: segments[0],
			RelType:   segments[1],
			RawTarget: segments[2],
		}

		ref := taxonomy.ParseReference(rel.RawTarget)
		id, ok := c.reg.resolver.Resolve(ctx, ref, def.Vocabularies, false, row, def.Name, rep)
		if !ok {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("typed relation target %q is unresolvable", rel.RawTarget)
			continue
		}
		rel.TargetID = id
		out.Relations = append(out.Relations, rel)
	}
	return out
}
