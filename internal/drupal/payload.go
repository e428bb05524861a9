package drupal

import (
	"path"
	"strings"
	"time"

	"github.com/vknys/ingot/pkg/ingot"
)

// fieldItems converts one typed field value into the repository's REST
// wire form: a JSON array with one object per subvalue.
func fieldItems(value ingot.FieldValue) []map[string]any {
	var items []map[string]any

	switch v := value.(type) {
	case ingot.TextValue:
		for _, s := range v.Values {
			items = append(items, map[string]any{"value": s})
		}
	case ingot.IntegerValue:
		for _, n := range v.Values {
			items = append(items, map[string]any{"value": n})
		}
	case ingot.BooleanValue:
		for _, b := range v.Values {
			items = append(items, map[string]any{"value": b})
		}
	case ingot.DateValue:
		for _, t := range v.Values {
			items = append(items, map[string]any{"value": t.Format(time.RFC3339)})
		}
	case ingot.ReferenceValue:
		for _, id := range v.TargetIDs {
			items = append(items, map[string]any{"target_id": id})
		}
	case ingot.TypedRelationValue:
		for _, rel := range v.Relations {
			items = append(items, map[string]any{
				"target_id": rel.TargetID,
				"rel_type":  rel.Namespace + ":" + rel.RelType,
			})
		}
	case ingot.GeolocationValue:
		for _, p := range v.Points {
			items = append(items, map[string]any{"lat": p.Lat, "lng": p.Lng})
		}
	case ingot.LinkValue:
		for _, l := range v.Links {
			items = append(items, map[string]any{"uri": l.URI, "title": l.Title})
		}
	}

	return items
}

// nodePayload assembles the JSON body for creating a node from a record.
func nodePayload(record *ingot.Record, contentType string) map[string]any {
	payload := map[string]any{
		"type":  []map[string]any{{"target_id": contentType}},
		"title": []map[string]any{{"value": record.Title}},
	}
	for name, value := range record.Fields {
		if items := fieldItems(value); items != nil {
			payload[name] = items
		}
	}
	return payload
}

// updatePayload assembles the JSON body for a node update. In append mode
// the existing remote items are prepended so new values accumulate; in
// delete mode every named field is emptied; replace mode sends the CSV
// values as-is.
func updatePayload(record *ingot.Record, contentType string, mode ingot.UpdateMode, existing map[string][]map[string]any) map[string]any {
	payload := map[string]any{
		"type": []map[string]any{{"target_id": contentType}},
	}
	if record.Title != "" {
		payload["title"] = []map[string]any{{"value": record.Title}}
	}

	for name, value := range record.Fields {
		switch mode {
		case ingot.UpdateModeDelete:
			payload[name] = []map[string]any{}
		case ingot.UpdateModeAppend:
			payload[name] = append(existing[name], fieldItems(value)...)
		default:
			items := fieldItems(value)
			if items == nil {
				items = []map[string]any{}
			}
			payload[name] = items
		}
	}
	return payload
}

// termPayload assembles the JSON body for creating a taxonomy term.
func termPayload(vocabulary, name string) map[string]any {
	return map[string]any{
		"vid":  []map[string]any{{"target_id": vocabulary}},
		"name": []map[string]any{{"value": name}},
	}
}

// mediaPayload assembles the JSON body for creating a media entity that
// wraps an uploaded file and points back at its node.
func mediaPayload(mediaType, name string, nodeID, fileID int64) map[string]any {
	return map[string]any{
		"bundle":             []map[string]any{{"target_id": mediaType}},
		"name":               []map[string]any{{"value": name}},
		"field_media_of":     []map[string]any{{"target_id": nodeID}},
		fileField(mediaType): []map[string]any{{"target_id": fileID}},
	}
}

// mediaTypeForFile maps a filename to the repository media bundle by
// extension. Unrecognized extensions fall back to the generic "file"
// bundle.
func mediaTypeForFile(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "tif", "tiff", "jp2":
		return "image"
	case "pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx", "odt", "txt":
		return "document"
	case "mp3", "wav", "aac", "ogg", "flac", "m4a":
		return "audio"
	case "mp4", "mov", "avi", "mkv", "webm":
		return "video"
	default:
		return "file"
	}
}

// fileField returns the file reference field machine name for a media
// bundle.
func fileField(mediaType string) string {
	switch mediaType {
	case "image":
		return "field_media_image"
	case "document":
		return "field_media_document"
	case "audio":
		return "field_media_audio_file"
	case "video":
		return "field_media_video_file"
	default:
		return "field_media_file"
	}
}
