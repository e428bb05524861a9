package drupal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vknys/ingot/pkg/ingot"
)

// termRow is one taxonomy term as returned by the integration module's
// views and the term REST resource.
type termRow struct {
	TID []struct {
		Value int64 `json:"value"`
	} `json:"tid"`
	VID []struct {
		TargetID string `json:"target_id"`
	} `json:"vid"`
	Name []struct {
		Value string `json:"value"`
	} `json:"name"`
	AuthorityLink []struct {
		URI string `json:"uri"`
	} `json:"field_authority_link"`
	ExternalURI []struct {
		URI string `json:"uri"`
	} `json:"field_external_uri"`
}

// term converts the wire row into a Term. Vocabularies store term URIs in
// either field_authority_link or field_external_uri, so both are checked.
func (r termRow) term() ingot.Term {
	t := ingot.Term{}
	if len(r.TID) > 0 {
		t.ID = r.TID[0].Value
	}
	if len(r.VID) > 0 {
		t.Vocabulary = r.VID[0].TargetID
	}
	if len(r.Name) > 0 {
		t.Name = r.Name[0].Value
	}
	if len(r.AuthorityLink) > 0 {
		t.URI = r.AuthorityLink[0].URI
	} else if len(r.ExternalURI) > 0 {
		t.URI = r.ExternalURI[0].URI
	}
	return t
}

// Snapshot is an in-memory copy of the remote taxonomy, fetched once
// before validation so the resolver never issues per-reference requests.
type Snapshot struct {
	byID         map[int64]ingot.Term
	byURI        map[string][]ingot.Term
	byVocabulary map[string][]ingot.Term
	vocabularies map[string]bool
}

// TermByID returns the term with the given ID, if present.
func (s *Snapshot) TermByID(id int64) (ingot.Term, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// TermsByURI returns every term registered under the given URI.
func (s *Snapshot) TermsByURI(uri string) []ingot.Term {
	return s.byURI[uri]
}

// TermsInVocabulary returns all terms in the given vocabulary.
func (s *Snapshot) TermsInVocabulary(vocabulary string) []ingot.Term {
	return s.byVocabulary[vocabulary]
}

// HasVocabulary reports whether the vocabulary exists remotely.
func (s *Snapshot) HasVocabulary(vocabulary string) bool {
	return s.vocabularies[vocabulary]
}

// add indexes one term into the snapshot.
func (s *Snapshot) add(t ingot.Term) {
	if t.ID == 0 {
		return
	}
	s.byID[t.ID] = t
	s.byVocabulary[t.Vocabulary] = append(s.byVocabulary[t.Vocabulary], t)
	if t.URI != "" {
		s.byURI[t.URI] = append(s.byURI[t.URI], t)
	}
}

// NewSnapshot creates an empty snapshot. Tests populate it directly via
// AddTerm and AddVocabulary; production code uses Client.LoadTaxonomy.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		byID:         make(map[int64]ingot.Term),
		byURI:        make(map[string][]ingot.Term),
		byVocabulary: make(map[string][]ingot.Term),
		vocabularies: make(map[string]bool),
	}
}

// AddVocabulary registers a vocabulary as existing.
func (s *Snapshot) AddVocabulary(vocabulary string) {
	s.vocabularies[vocabulary] = true
}

// AddTerm registers a term and its vocabulary.
func (s *Snapshot) AddTerm(t ingot.Term) {
	s.AddVocabulary(t.Vocabulary)
	s.add(t)
}

// LoadTaxonomy fetches every term of the given vocabularies into a
// snapshot. Vocabularies that do not exist remotely are recorded as
// absent rather than failing the load; the resolver reports them per
// affected row.
func (c *Client) LoadTaxonomy(ctx context.Context, vocabularies []string) (*Snapshot, error) {
	snapshot := NewSnapshot()

	for _, vocabulary := range vocabularies {
		exists, err := c.head(ctx, "/entity/taxonomy_vocabulary/"+vocabulary+"?_format=json")
		if err != nil {
			return nil, fmt.Errorf("checking vocabulary %q: %w", vocabulary, err)
		}
		if !exists {
			c.logger.Verbose("Vocabulary %q does not exist on the remote host", vocabulary)
			continue
		}
		snapshot.AddVocabulary(vocabulary)

		count, err := c.loadVocabularyTerms(ctx, vocabulary, snapshot)
		if err != nil {
			return nil, err
		}
		c.logger.Verbose("Fetched %d terms from vocabulary %q", count, vocabulary)
	}

	return snapshot, nil
}

// loadVocabularyTerms pages through the vocabulary view until an empty
// page is returned.
func (c *Client) loadVocabularyTerms(ctx context.Context, vocabulary string, snapshot *Snapshot) (int, error) {
	count := 0
	for page := 0; ; page++ {
		var rows []termRow
		path := fmt.Sprintf("/vocabulary?_format=json&vid=%s&page=%d", url.QueryEscape(vocabulary), page)
		if err := c.getJSON(ctx, path, &rows); err != nil {
			return count, fmt.Errorf("fetching terms from vocabulary %q: %w", vocabulary, err)
		}
		if len(rows) == 0 {
			return count, nil
		}
		for _, row := range rows {
			t := row.term()
			t.Vocabulary = vocabulary
			snapshot.add(t)
			count++
		}
	}
}

// CreateTerm creates a vocabulary term remotely and returns its new term
// ID.
func (c *Client) CreateTerm(ctx context.Context, vocabulary, name string) (int64, error) {
	var created termRow
	if err := c.postJSON(ctx, "/taxonomy/term?_format=json", termPayload(vocabulary, name), &created); err != nil {
		return 0, fmt.Errorf("creating term %q in vocabulary %q: %w", name, vocabulary, err)
	}
	if len(created.TID) == 0 {
		return 0, fmt.Errorf("creating term %q in vocabulary %q: response carried no term ID", name, vocabulary)
	}
	return created.TID[0].Value, nil
}
