package drupal

import (
	"context"
	"fmt"
	"strings"

	"github.com/vknys/ingot/pkg/ingot"
)

// formDisplayResponse is the subset of the entity form display config the
// schema fetch needs: the config dependencies list, which names every
// field attached to the bundle.
type formDisplayResponse struct {
	Dependencies struct {
		Config []string `json:"config"`
	} `json:"dependencies"`
}

// fieldConfigResponse is the per-field configuration.
type fieldConfigResponse struct {
	Required     bool `json:"required"`
	Dependencies struct {
		Config []string `json:"config"`
	} `json:"dependencies"`
}

// fieldStorageResponse is the per-field storage configuration.
type fieldStorageResponse struct {
	Type        string `json:"type"`
	Cardinality int    `json:"cardinality"`
	Settings    struct {
		MaxLength int `json:"max_length"`
	} `json:"settings"`
}

// FetchFieldSchema retrieves the field configuration for a node bundle.
//
// The bundle's fields are discovered through the default entity form
// display, then each field's config and storage config are fetched to
// learn its type, cardinality, length limit and target vocabularies. The
// built-in title field is not reported by the endpoints and is
// synthesized locally.
func (c *Client) FetchFieldSchema(ctx context.Context, bundle string) (ingot.FieldSchema, error) {
	var display formDisplayResponse
	displayPath := fmt.Sprintf("/entity/entity_form_display/node.%s.default?_format=json", bundle)
	if err := c.getJSON(ctx, displayPath, &display); err != nil {
		return nil, fmt.Errorf("fetching field list for content type %q: %w", bundle, err)
	}

	schema := ingot.FieldSchema{
		ingot.TitleColumn: {
			Name:        ingot.TitleColumn,
			Type:        ingot.FieldTypeText,
			Cardinality: 1,
			Required:    true,
			MaxLength:   255,
		},
	}

	prefix := "field.field.node." + bundle + "."
	for _, dep := range display.Dependencies.Config {
		if !strings.HasPrefix(dep, prefix) {
			continue
		}
		name := strings.TrimPrefix(dep, prefix)
		def, err := c.fetchFieldDefinition(ctx, bundle, name)
		if err != nil {
			return nil, err
		}
		schema[name] = def
	}

	return schema, nil
}

// fetchFieldDefinition retrieves one field's config and storage config and
// merges them into a FieldDefinition.
func (c *Client) fetchFieldDefinition(ctx context.Context, bundle, name string) (ingot.FieldDefinition, error) {
	var config fieldConfigResponse
	configPath := fmt.Sprintf("/entity/field_config/node.%s.%s?_format=json", bundle, name)
	if err := c.getJSON(ctx, configPath, &config); err != nil {
		return ingot.FieldDefinition{}, fmt.Errorf("fetching config for field %q: %w", name, err)
	}

	var storage fieldStorageResponse
	storagePath := fmt.Sprintf("/entity/field_storage_config/node.%s?_format=json", name)
	if err := c.getJSON(ctx, storagePath, &storage); err != nil {
		return ingot.FieldDefinition{}, fmt.Errorf("fetching storage config for field %q: %w", name, err)
	}

	def := ingot.FieldDefinition{
		Name:        name,
		Type:        storage.Type,
		Cardinality: storage.Cardinality,
		Required:    config.Required,
		MaxLength:   storage.Settings.MaxLength,
	}

	// The vocabularies a reference field may target appear as config
	// dependencies of the form "taxonomy.vocabulary.<id>".
	for _, dep := range config.Dependencies.Config {
		if vocab, ok := strings.CutPrefix(dep, "taxonomy.vocabulary."); ok {
			def.Vocabularies = append(def.Vocabularies, vocab)
		}
	}

	return def, nil
}
