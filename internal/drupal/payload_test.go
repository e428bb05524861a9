package drupal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vknys/ingot/pkg/ingot"
)

func TestFieldItems(t *testing.T) {
	tests := []struct {
		name  string
		value ingot.FieldValue
		want  []map[string]any
	}{
		{
			name:  "text",
			value: ingot.TextValue{Values: []string{"a", "b"}},
			want:  []map[string]any{{"value": "a"}, {"value": "b"}},
		},
		{
			name:  "integer",
			value: ingot.IntegerValue{Values: []int64{42}},
			want:  []map[string]any{{"value": int64(42)}},
		},
		{
			name:  "boolean",
			value: ingot.BooleanValue{Values: []bool{true, false}},
			want:  []map[string]any{{"value": true}, {"value": false}},
		},
		{
			name: "date",
			value: ingot.DateValue{Values: []time.Time{
				time.Date(2020, 11, 15, 23, 49, 22, 0, time.UTC),
			}},
			want: []map[string]any{{"value": "2020-11-15T23:49:22Z"}},
		},
		{
			name:  "entity reference",
			value: ingot.ReferenceValue{TargetIDs: []int64{5, 7}},
			want:  []map[string]any{{"target_id": int64(5)}, {"target_id": int64(7)}},
		},
		{
			name: "typed relation",
			value: ingot.TypedRelationValue{Relations: []ingot.TypedRelation{
				{Namespace: "relators", RelType: "pht", TargetID: 20},
			}},
			want: []map[string]any{{"target_id": int64(20), "rel_type": "relators:pht"}},
		},
		{
			name:  "geolocation",
			value: ingot.GeolocationValue{Points: []ingot.GeoPoint{{Lat: 49.25, Lng: -124.8}}},
			want:  []map[string]any{{"lat": 49.25, "lng": -124.8}},
		},
		{
			name:  "link",
			value: ingot.LinkValue{Links: []ingot.Link{{URI: "https://example.com", Title: "Example"}}},
			want:  []map[string]any{{"uri": "https://example.com", "title": "Example"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldItems(tt.value))
		})
	}
}

func TestNodePayload(t *testing.T) {
	rec := &ingot.Record{
		ID:    "001",
		Title: "First Object",
		Fields: map[string]ingot.FieldValue{
			"field_note":  ingot.TextValue{Values: []string{"a note"}},
			"field_model": ingot.ReferenceValue{TargetIDs: []int64{5}},
		},
	}

	payload := nodePayload(rec, "islandora_object")

	assert.Equal(t, []map[string]any{{"target_id": "islandora_object"}}, payload["type"])
	assert.Equal(t, []map[string]any{{"value": "First Object"}}, payload["title"])
	assert.Equal(t, []map[string]any{{"value": "a note"}}, payload["field_note"])
	assert.Equal(t, []map[string]any{{"target_id": int64(5)}}, payload["field_model"])
}

func TestUpdatePayload_Replace(t *testing.T) {
	rec := &ingot.Record{
		NodeID: 42,
		Fields: map[string]ingot.FieldValue{
			"field_note": ingot.TextValue{Values: []string{"new"}},
		},
	}

	payload := updatePayload(rec, "islandora_object", ingot.UpdateModeReplace, nil)

	assert.Equal(t, []map[string]any{{"value": "new"}}, payload["field_note"])
	_, hasTitle := payload["title"]
	assert.False(t, hasTitle, "empty title must not be sent")
}

func TestUpdatePayload_Append(t *testing.T) {
	rec := &ingot.Record{
		NodeID: 42,
		Fields: map[string]ingot.FieldValue{
			"field_note": ingot.TextValue{Values: []string{"new"}},
		},
	}
	existing := map[string][]map[string]any{
		"field_note": {{"value": "old"}},
	}

	payload := updatePayload(rec, "islandora_object", ingot.UpdateModeAppend, existing)

	require.Len(t, payload["field_note"], 2)
	assert.Equal(t, []map[string]any{{"value": "old"}, {"value": "new"}}, payload["field_note"])
}

func TestUpdatePayload_Delete(t *testing.T) {
	rec := &ingot.Record{
		NodeID: 42,
		Title:  "Renamed",
		Fields: map[string]ingot.FieldValue{
			"field_note": ingot.TextValue{Values: []string{"whatever"}},
		},
	}

	payload := updatePayload(rec, "islandora_object", ingot.UpdateModeDelete, nil)

	assert.Equal(t, []map[string]any{}, payload["field_note"], "delete mode empties named fields")
	assert.Equal(t, []map[string]any{{"value": "Renamed"}}, payload["title"])
}

func TestTermPayload(t *testing.T) {
	payload := termPayload("genre", "Postcard")

	assert.Equal(t, []map[string]any{{"target_id": "genre"}}, payload["vid"])
	assert.Equal(t, []map[string]any{{"value": "Postcard"}}, payload["name"])
}

func TestMediaPayload(t *testing.T) {
	payload := mediaPayload("image", "obj.jpg", 42, 7)

	assert.Equal(t, []map[string]any{{"target_id": "image"}}, payload["bundle"])
	assert.Equal(t, []map[string]any{{"value": "obj.jpg"}}, payload["name"])
	assert.Equal(t, []map[string]any{{"target_id": int64(42)}}, payload["field_media_of"])
	assert.Equal(t, []map[string]any{{"target_id": int64(7)}}, payload["field_media_image"])
}

func TestMediaTypeForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"scan.jpg", "image"},
		{"scan.JPG", "image"},
		{"scan.tiff", "image"},
		{"book.pdf", "document"},
		{"notes.txt", "document"},
		{"interview.mp3", "audio"},
		{"interview.flac", "audio"},
		{"clip.mp4", "video"},
		{"data.bin", "file"},
		{"noextension", "file"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mediaTypeForFile(tt.filename), "mediaTypeForFile(%q)", tt.filename)
	}
}

func TestFileField(t *testing.T) {
	tests := []struct {
		mediaType string
		want      string
	}{
		{"image", "field_media_image"},
		{"document", "field_media_document"},
		{"audio", "field_media_audio_file"},
		{"video", "field_media_video_file"},
		{"file", "field_media_file"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fileField(tt.mediaType))
	}
}
