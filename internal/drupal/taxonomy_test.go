package drupal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/pkg/ingot"
)

func TestTermRow_Term(t *testing.T) {
	raw := `{
		"tid": [{"value": 10}],
		"vid": [{"target_id": "genre"}],
		"name": [{"value": "Postcard"}],
		"field_authority_link": [{"uri": "https://example.com/genre/postcard"}]
	}`

	var row termRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	term := row.term()
	assert.Equal(t, int64(10), term.ID)
	assert.Equal(t, "genre", term.Vocabulary)
	assert.Equal(t, "Postcard", term.Name)
	assert.Equal(t, "https://example.com/genre/postcard", term.URI)
}

func TestTermRow_Term_ExternalURIFallback(t *testing.T) {
	raw := `{
		"tid": [{"value": 11}],
		"name": [{"value": "Oral history"}],
		"field_external_uri": [{"uri": "https://example.com/genre/oral"}]
	}`

	var row termRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	term := row.term()
	assert.Equal(t, "https://example.com/genre/oral", term.URI)
}

func TestTermRow_Term_EmptyArrays(t *testing.T) {
	var row termRow
	require.NoError(t, json.Unmarshal([]byte(`{}`), &row))

	term := row.term()
	assert.Zero(t, term.ID)
	assert.Empty(t, term.Name)
	assert.Empty(t, term.URI)
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := NewSnapshot()
	snap.AddVocabulary("empty_vocab")
	snap.AddTerm(ingot.Term{ID: 10, Vocabulary: "genre", Name: "Postcard"})
	snap.AddTerm(ingot.Term{ID: 20, Vocabulary: "person", Name: "Jordan, Mark", URI: "https://example.com/person/1"})
	snap.AddTerm(ingot.Term{ID: 21, Vocabulary: "person", Name: "Jordan, M.", URI: "https://example.com/person/1"})

	term, found := snap.TermByID(10)
	require.True(t, found)
	assert.Equal(t, "Postcard", term.Name)

	_, found = snap.TermByID(999)
	assert.False(t, found)

	assert.Len(t, snap.TermsByURI("https://example.com/person/1"), 2)
	assert.Empty(t, snap.TermsByURI("https://example.com/nothing"))

	assert.Len(t, snap.TermsInVocabulary("person"), 2)
	assert.Empty(t, snap.TermsInVocabulary("empty_vocab"))

	assert.True(t, snap.HasVocabulary("genre"), "AddTerm registers the vocabulary")
	assert.True(t, snap.HasVocabulary("empty_vocab"))
	assert.False(t, snap.HasVocabulary("missing"))
}

func TestSnapshot_IgnoresZeroIDs(t *testing.T) {
	snap := NewSnapshot()
	snap.AddTerm(ingot.Term{Vocabulary: "genre", Name: "No ID"})

	assert.Empty(t, snap.TermsInVocabulary("genre"))
}
