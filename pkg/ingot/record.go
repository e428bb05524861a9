package ingot

import (
	"fmt"
	"time"
)

// Record is the typed, in-memory representation of one input row.
//
// Records are created once per row during normalization and are immutable
// afterwards, except for remote-reference patch-ins applied by the plan as
// dependency IDs become known.
type Record struct {
	// ID is the record's unique identifier within the batch, taken from
	// the configured ID column
	ID string

	// ParentID, when non-empty, references another Record's ID in the
	// same batch
	ParentID string

	// RowNumber is the 1-based position of the source row, for diagnostics
	RowNumber int

	// Title is the node title (create tasks)
	Title string

	// NodeID is the existing remote node ID (update, delete and add_media
	// tasks)
	NodeID int64

	// MediaID is the existing remote media ID (delete_media tasks)
	MediaID int64

	// File is the raw file reference: a local path, a URL, or empty when
	// missing files are explicitly allowed
	File string

	// Fields maps field machine names to their typed values
	Fields map[string]FieldValue
}

// FieldValue is the typed representation of one CSV cell, polymorphic over
// the remote field's declared type. The concrete variant is selected by the
// field codec registry from the remote schema, never by shape-sniffing.
type FieldValue interface {
	// FieldType returns the remote field type machine name this value
	// was parsed as, e.g. "string" or "typed_relation".
	FieldType() string

	// RawValues returns the source subvalues as split from the CSV cell.
	RawValues() []string

	// Valid reports whether every subvalue parsed cleanly.
	Valid() bool
}

// ValueState carries the source strings and validity shared by all
// FieldValue variants.
type ValueState struct {
	// Raw holds the subdelimiter-split source strings
	Raw []string

	// Invalid is set when any subvalue failed to parse
	Invalid bool

	// Diagnostic describes the first parse failure, if any
	Diagnostic string
}

// RawValues returns the source subvalues as split from the CSV cell.
func (s ValueState) RawValues() []string { return s.Raw }

// Valid reports whether every subvalue parsed cleanly.
func (s ValueState) Valid() bool { return !s.Invalid }

// TextValue holds plain text subvalues.
type TextValue struct {
	ValueState
	Values []string
}

// FieldType returns the remote field type machine name.
func (TextValue) FieldType() string { return FieldTypeText }

// IntegerValue holds strictly-parsed integer subvalues.
type IntegerValue struct {
	ValueState
	Values []int64
}

// FieldType returns the remote field type machine name.
func (IntegerValue) FieldType() string { return FieldTypeInteger }

// BooleanValue holds boolean subvalues. Only the literal strings "1" and
// "0" parse; anything else is invalid.
type BooleanValue struct {
	ValueState
	Values []bool
}

// FieldType returns the remote field type machine name.
func (BooleanValue) FieldType() string { return FieldTypeBoolean }

// DateValue holds creation timestamps parsed from ISO 8601 strings with an
// explicit UTC offset, e.g. "2020-11-15T23:49:22+00:00".
type DateValue struct {
	ValueState
	Values []time.Time
}

// FieldType returns the remote field type machine name.
func (DateValue) FieldType() string { return FieldTypeDate }

// ReferenceValue holds resolved entity-reference targets.
type ReferenceValue struct {
	ValueState
	TargetIDs []int64
}

// FieldType returns the remote field type machine name.
func (ReferenceValue) FieldType() string { return FieldTypeEntityReference }

// TypedRelationValue holds typed-relation triples.
type TypedRelationValue struct {
	ValueState
	Relations []TypedRelation
}

// FieldType returns the remote field type machine name.
func (TypedRelationValue) FieldType() string { return FieldTypeTypedRelation }

// GeolocationValue holds latitude/longitude pairs.
type GeolocationValue struct {
	ValueState
	Points []GeoPoint
}

// FieldType returns the remote field type machine name.
func (GeolocationValue) FieldType() string { return FieldTypeGeolocation }

// LinkValue holds URI/title pairs.
type LinkValue struct {
	ValueState
	Links []Link
}

// FieldType returns the remote field type machine name.
func (LinkValue) FieldType() string { return FieldTypeLink }

// TypedRelation is a (namespace, relation type, target) triple encoded in
// the CSV as "namespace:relationtype:targetid", e.g. "relators:pht:5".
// The target segment may itself contain colons; only the first two colons
// delimit segments.
type TypedRelation struct {
	// Namespace is the relation namespace, e.g. "relators"
	Namespace string

	// RelType is the relation type within the namespace, e.g. "pht"
	RelType string

	// RawTarget is the unresolved target segment: a term ID, name, or URI
	RawTarget string

	// TargetID is the resolved remote term ID. Typed-relation targets are
	// never auto-created, so an unresolvable target invalidates the value.
	TargetID int64
}

// Encode returns the CSV wire form of the triple.
func (r TypedRelation) Encode() string {
	return r.Namespace + ":" + r.RelType + ":" + r.RawTarget
}

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// String returns the CSV wire form "lat,lng".
func (p GeoPoint) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lng)
}

// Link is a URI with an optional human-readable title. When the CSV value
// carries no title, the URI doubles as the title.
type Link struct {
	URI   string
	Title string
}

// TermReference is one unparsed taxonomy reference from the CSV: a numeric
// term ID, a term URI, or a (vocabulary, name) pair where the vocabulary
// namespace is optional for single-vocabulary fields.
type TermReference struct {
	// Raw is the original CSV subvalue
	Raw string

	// ID is non-zero when the reference is a bare numeric term ID
	ID int64

	// URI is non-empty when the reference is a term URI
	URI string

	// Vocabulary is the optional "vocabulary:" namespace prefix
	Vocabulary string

	// Name is the term name (empty for ID and URI references)
	Name string
}

// IsID reports whether the reference is a bare numeric term ID.
func (r TermReference) IsID() bool { return r.ID > 0 }

// IsURI reports whether the reference is a term URI.
func (r TermReference) IsURI() bool { return r.URI != "" }
