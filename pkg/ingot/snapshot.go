package ingot

import "context"

// FieldDefinition is the remote configuration of one field, as reported by
// the repository's schema endpoint.
type FieldDefinition struct {
	// Name is the field machine name, e.g. "field_subject"
	Name string

	// Type is the field type machine name, e.g. "string" or "geolocation"
	Type string

	// Cardinality is the maximum number of values; CardinalityUnlimited
	// means no limit
	Cardinality int

	// Required indicates the remote schema requires a value on create
	Required bool

	// MaxLength is the maximum value length in characters; zero means
	// unlimited
	MaxLength int

	// Vocabularies lists the vocabulary IDs an entity-reference or
	// typed-relation field may target
	Vocabularies []string
}

// CardinalityUnlimited marks a field with no value-count limit.
const CardinalityUnlimited = -1

// FieldSchema is the remote field configuration for one content type,
// keyed by field machine name.
type FieldSchema map[string]FieldDefinition

// Term is one taxonomy term from the remote snapshot.
type Term struct {
	ID         int64
	Vocabulary string
	Name       string
	URI        string
}

// TaxonomySnapshot provides read access to a previously-fetched copy of
// the remote taxonomy. Validation never issues remote calls; it only
// consults this snapshot.
type TaxonomySnapshot interface {
	// TermByID returns the term with the given ID, if present.
	TermByID(id int64) (Term, bool)

	// TermsByURI returns every term registered under the given URI.
	// More than one result is possible and triggers deterministic
	// tie-breaking in the resolver.
	TermsByURI(uri string) []Term

	// TermsInVocabulary returns all terms in the given vocabulary.
	TermsInVocabulary(vocabulary string) []Term

	// HasVocabulary reports whether the vocabulary exists remotely.
	HasVocabulary(vocabulary string) bool
}

// TermCreator creates a vocabulary term remotely, returning its new term
// ID. Term creation is the only remote mutation the resolver performs.
type TermCreator interface {
	CreateTerm(ctx context.Context, vocabulary, name string) (int64, error)
}

// EntityChecker reports existence of remote entities during validation.
type EntityChecker interface {
	// NodeExists reports whether a node with the given ID exists.
	NodeExists(ctx context.Context, id int64) (bool, error)

	// MediaExists reports whether a media item with the given ID exists.
	MediaExists(ctx context.Context, id int64) (bool, error)
}

// MediaLookup lists the media IDs attached to a node. Used by delete
// tasks when cascade deletion is enabled; media discovery is a remote
// collaborator responsibility.
type MediaLookup func(ctx context.Context, nodeID int64) ([]int64, error)

// FileChecker verifies that a file reference is accessible: a local path
// that exists, or a URL reachable without authentication.
type FileChecker interface {
	CheckFile(ctx context.Context, ref string) error
}

// StepExecutor performs one remote mutation. For create steps the
// returned ID is the created remote entity's ID; zero otherwise.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, step *ExecutionStep) (int64, error)
}
