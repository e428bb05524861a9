// Package taxonomy resolves vocabulary term references (IDs, URIs, or
// names) against a previously-fetched remote snapshot, optionally creating
// missing terms on the fly.
package taxonomy

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vknys/ingot/pkg/ingot"
)

// cacheKey identifies one term creation within a batch. Repeated
// occurrences of the same normalized name in the same vocabulary reuse the
// first creation instead of creating duplicates.
type cacheKey struct {
	vocabulary string
	name       string
}

// Resolver resolves term references for one batch run.
//
// Thread-Safety: NOT safe for concurrent use. The creation cache is
// batch-scoped, mutable state; the pipeline is single-threaded by design,
// so no locking is required.
type Resolver struct {
	snapshot ingot.TaxonomySnapshot
	creator  ingot.TermCreator
	logger   ingot.Logger

	created     map[cacheKey]int64
	placeholder int64
}

// NewResolver creates a Resolver for one batch run.
//
// creator may be nil for validate-only runs: unmatched names that would be
// created are then assigned batch-local placeholder IDs and reported as
// warnings, so validation surfaces everything without mutating remote
// state.
//
// Panics if snapshot or logger is nil.
func NewResolver(snapshot ingot.TaxonomySnapshot, creator ingot.TermCreator, logger ingot.Logger) *Resolver {
	if snapshot == nil {
		panic("snapshot cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Resolver{
		snapshot: snapshot,
		creator:  creator,
		logger:   logger,
		created:  make(map[cacheKey]int64),
	}
}

// ParseReference classifies one raw CSV subvalue as a term ID, a term URI,
// or a (vocabulary?, name) pair. Whether a colon prefix is actually a
// vocabulary namespace is decided at resolve time, against the field's
// configured vocabularies; both readings are carried in the result.
func ParseReference(raw string) ingot.TermReference {
	ref := ingot.TermReference{Raw: strings.TrimSpace(raw)}

	if id, err := strconv.ParseInt(ref.Raw, 10, 64); err == nil && id > 0 {
		ref.ID = id
		return ref
	}

	if strings.HasPrefix(ref.Raw, "http://") || strings.HasPrefix(ref.Raw, "https://") {
		ref.URI = ref.Raw
		return ref
	}

	if before, after, found := strings.Cut(ref.Raw, ":"); found {
		ref.Vocabulary = strings.TrimSpace(before)
		ref.Name = strings.TrimSpace(after)
	} else {
		ref.Name = ref.Raw
	}
	return ref
}

// Resolve resolves ref against the vocabularies configured for a field,
// returning the term ID. allowCreate permits creating an unmatched name at
// the vocabulary root; typed-relation targets always pass false.
//
// All diagnostics are appended to rep; ok is false when the reference is
// unresolvable, which excludes the row from the plan.
func (r *Resolver) Resolve(ctx context.Context, ref ingot.TermReference, vocabularies []string, allowCreate bool, row int, field string, rep *ingot.ValidationReport) (int64, bool) {
	switch {
	case ref.IsID():
		if _, found := r.snapshot.TermByID(ref.ID); !found {
			rep.AddError(row, field, "term ID %d does not exist in the remote taxonomy", ref.ID)
			return 0, false
		}
		return ref.ID, true

	case ref.IsURI():
		return r.resolveURI(ref.URI, row, field, rep)

	default:
		return r.resolveName(ctx, ref, vocabularies, allowCreate, row, field, rep)
	}
}

// resolveURI looks the URI up in the snapshot's URI index. When more than
// one term shares the URI the lowest term ID wins, deterministically, and
// a warning names the alternatives.
func (r *Resolver) resolveURI(uri string, row int, field string, rep *ingot.ValidationReport) (int64, bool) {
	terms := r.snapshot.TermsByURI(uri)
	if len(terms) == 0 {
		rep.AddError(row, field, "term URI %q does not match any term", uri)
		return 0, false
	}

	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	if len(terms) > 1 {
		var alternatives []string
		for _, t := range terms[1:] {
			alternatives = append(alternatives, strconv.FormatInt(t.ID, 10)+" ("+t.Vocabulary+")")
		}
		rep.AddWarning(row, field, "term URI %q is used by more than one term; choosing term ID %d, ignoring %s",
			uri, terms[0].ID, strings.Join(alternatives, ", "))
	}
	return terms[0].ID, true
}

func (r *Resolver) resolveName(ctx context.Context, ref ingot.TermReference, vocabularies []string, allowCreate bool, row int, field string, rep *ingot.ValidationReport) (int64, bool) {
	vocabulary, name, ok := r.pickVocabulary(ref, vocabularies, row, field, rep)
	if !ok {
		return 0, false
	}

	normalized := Normalize(name)

	if id, found := r.created[cacheKey{vocabulary, normalized}]; found {
		return id, true
	}

	// Lowest ID wins when several existing terms normalize identically.
	terms := r.snapshot.TermsInVocabulary(vocabulary)
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	for _, t := range terms {
		if Normalize(t.Name) == normalized {
			return t.ID, true
		}
	}

	if !allowCreate {
		rep.AddError(row, field, "term %q not found in vocabulary %q and term creation is not enabled", name, vocabulary)
		return 0, false
	}

	return r.createTerm(ctx, vocabulary, name, normalized, row, field, rep)
}

// pickVocabulary applies the namespacing rules: a field spanning more than
// one vocabulary requires a "vocabulary:name" namespace; a
// single-vocabulary field implies its vocabulary, and a colon prefix that
// does not match it is part of the term name.
func (r *Resolver) pickVocabulary(ref ingot.TermReference, vocabularies []string, row int, field string, rep *ingot.ValidationReport) (vocabulary, name string, ok bool) {
	switch len(vocabularies) {
	case 0:
		rep.AddError(row, field, "field references no vocabularies; cannot resolve term name %q", ref.Raw)
		return "", "", false

	case 1:
		vocabulary = vocabularies[0]
		if ref.Vocabulary == vocabulary {
			return vocabulary, ref.Name, true
		}
		return vocabulary, ref.Raw, true

	default:
		if ref.Vocabulary == "" {
			rep.AddError(row, field, "term name %q requires a vocabulary namespace because the field references %d vocabularies (%s)",
				ref.Raw, len(vocabularies), strings.Join(vocabularies, ", "))
			return "", "", false
		}
		for _, v := range vocabularies {
			if ref.Vocabulary == v {
				return v, ref.Name, true
			}
		}
		rep.AddError(row, field, "vocabulary namespace %q in term %q is not one of the field's vocabularies (%s)",
			ref.Vocabulary, ref.Raw, strings.Join(vocabularies, ", "))
		return "", "", false
	}
}

// createTerm creates the term at the vocabulary root, or assigns a
// batch-local placeholder ID in validate-only mode. Either way the result
// is cached so repeats of the same normalized name reuse it.
func (r *Resolver) createTerm(ctx context.Context, vocabulary, name, normalized string, row int, field string, rep *ingot.ValidationReport) (int64, bool) {
	if utf8.RuneCountInString(name) > ingot.MaxTermNameLength {
		rep.AddWarning(row, field, "term name %q exceeds the maximum length of %d characters and has been truncated", name, ingot.MaxTermNameLength)
		name = string([]rune(name)[:ingot.MaxTermNameLength])
	}

	if r.creator == nil {
		rep.AddWarning(row, field, "term %q not found in vocabulary %q; it will be created when the batch is executed", name, vocabulary)
		r.placeholder--
		r.created[cacheKey{vocabulary, normalized}] = r.placeholder
		return r.placeholder, true
	}

	id, err := r.creator.CreateTerm(ctx, vocabulary, name)
	if err != nil {
		rep.AddError(row, field, "failed to create term %q in vocabulary %q: %v", name, vocabulary, err)
		return 0, false
	}

	r.logger.Verbose("Created term %q (term ID %d) in vocabulary %q", name, id, vocabulary)
	r.created[cacheKey{vocabulary, normalized}] = id
	return id, true
}

// asciiPunctuation is the punctuation stripped from term names before
// comparison.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize prepares a term name for comparison: trim, lowercase, replace
// punctuation with spaces, collapse internal whitespace. Candidate names
// and existing names are normalized identically before matching.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return ' '
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}
