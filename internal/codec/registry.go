// Package codec converts raw CSV cell values into typed field values, one
// codec per remote field type. The codec is selected by the remote field's
// declared type, never by runtime shape-sniffing.
package codec

import (
	"context"
	"strings"
	"time"

	"github.com/vknys/ingot/internal/taxonomy"
	"github.com/vknys/ingot/pkg/ingot"
)

// Codec parses one raw CSV cell into a typed field value, appending any
// diagnostics to the report. Implementations never return Go errors:
// invalid values produce error-severity issues and a value with its
// Invalid flag set.
type Codec interface {
	Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue
}

// Options configures a codec registry for one batch run.
type Options struct {
	// Subdelimiter separates multiple values in one cell (default "|")
	Subdelimiter string

	// Clock supplies "now" for the creation-date past check.
	// Defaults to time.Now; injectable for tests.
	Clock func() time.Time

	// Resolver resolves entity-reference and typed-relation targets
	Resolver *taxonomy.Resolver

	// AllowTermCreation permits entity-reference codecs to create
	// unmatched terms. Never applies to typed-relation targets.
	AllowTermCreation bool
}

// Registry holds one codec per remote field type name.
type Registry struct {
	subdelimiter string
	clock        func() time.Time
	resolver     *taxonomy.Resolver
	allowCreate  bool
	codecs       map[string]Codec
}

// NewRegistry creates a registry with codecs for every supported field
// type. Panics if opts.Resolver is nil.
func NewRegistry(opts Options) *Registry {
	if opts.Resolver == nil {
		panic("resolver cannot be nil")
	}
	if opts.Subdelimiter == "" {
		opts.Subdelimiter = ingot.DefaultSubdelimiter
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	r := &Registry{
		subdelimiter: opts.Subdelimiter,
		clock:        opts.Clock,
		resolver:     opts.Resolver,
		allowCreate:  opts.AllowTermCreation,
	}
	r.codecs = map[string]Codec{
		ingot.FieldTypeText:            &textCodec{r},
		ingot.FieldTypeInteger:         &integerCodec{r},
		ingot.FieldTypeBoolean:         &booleanCodec{r},
		ingot.FieldTypeDate:            &dateCodec{r},
		ingot.FieldTypeEntityReference: &referenceCodec{r},
		ingot.FieldTypeTypedRelation:   &typedRelationCodec{r},
		ingot.FieldTypeGeolocation:     &geolocationCodec{r},
		ingot.FieldTypeLink:            &linkCodec{r},
	}
	return r
}

// Parse dispatches raw to the codec for the field's declared type.
// ok is false when no codec exists for the type, which is a per-row error.
func (r *Registry) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) (ingot.FieldValue, bool) {
	c, found := r.codecs[def.Type]
	if !found {
		rep.AddError(row, def.Name, "field type %q has no registered codec", def.Type)
		return nil, false
	}
	return c.Parse(ctx, raw, def, row, rep), true
}

// Supports reports whether the registry has a codec for the field type.
func (r *Registry) Supports(fieldType string) bool {
	_, found := r.codecs[fieldType]
	return found
}

// split applies the shared multivalue splitting rule: split on the
// subdelimiter, trim each segment, and drop empty segments (no field type
// gives empty segments meaning). Values beyond the field's cardinality are
// truncated with a warning, never rejected.
func (r *Registry) split(raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) []string {
	var values []string
	for _, segment := range strings.Split(raw, r.subdelimiter) {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			values = append(values, segment)
		}
	}

	if def.Cardinality > 0 && len(values) > def.Cardinality {
		rep.AddWarning(row, def.Name,
			"contains more values (%d) than the number allowed for that field (%d); only the first %d value(s) will be used",
			len(values), def.Cardinality, def.Cardinality)
		values = values[:def.Cardinality]
	}
	return values
}
