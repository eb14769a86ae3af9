package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/schemata/internal/fingerprint"
)

// Document renders the node as a generic map using the same keys Decode reads.
// Unknown keys from Extra are included, so Decode(Document()) round-trips.
func (s *Schema) Document() (map[string]any, error) {
	return s.document(make(map[*Schema]bool), false)
}

// JSONSchema renders the node as a JSON Schema (draft 2020-12) document.
// enum and oneOf nodes become the matching keywords; Extra is dropped.
func (s *Schema) JSONSchema() (map[string]any, error) {
	return s.document(make(map[*Schema]bool), true)
}

func (s *Schema) document(stack map[*Schema]bool, jsonSchema bool) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schema node")
	}
	if stack[s] {
		return nil, ErrCyclic
	}
	stack[s] = true
	defer delete(stack, s)

	doc := make(map[string]any)
	if !jsonSchema {
		maps.Copy(doc, s.Extra)
	}

	switch {
	case !jsonSchema:
		doc["type"] = string(s.Type)
	case s.Type == TypeEnum, s.Type == TypeOneOf:
		// expressed by the enum / oneOf keywords alone
	case s.Type.Known():
		doc["type"] = string(s.Type)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}

	if s.Description != "" {
		doc["description"] = s.Description
	}

	if s.Properties != nil {
		props := make(map[string]any, len(s.Properties))
		for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
			child, err := s.Properties[name].document(stack, jsonSchema)
			if err != nil {
				return nil, fmt.Errorf("properties.%s: %w", name, err)
			}
			props[name] = child
		}
		doc["properties"] = props
	}
	if len(s.Required) > 0 {
		doc["required"] = toAnySlice(s.Required)
	}
	if s.AdditionalProperties != nil {
		doc["additionalProperties"] = *s.AdditionalProperties
	}

	if s.Items != nil {
		items, err := s.Items.document(stack, jsonSchema)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		doc["items"] = items
	}
	setInt(doc, "minItems", s.MinItems)
	setInt(doc, "maxItems", s.MaxItems)

	if s.Pattern != "" {
		doc["pattern"] = s.Pattern
	}
	setInt(doc, "minLength", s.MinLength)
	setInt(doc, "maxLength", s.MaxLength)

	if s.Minimum != nil {
		doc["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		doc["maximum"] = *s.Maximum
	}

	if s.Enum != nil {
		doc["enum"] = slices.Clone(s.Enum)
	}

	if s.OneOf != nil {
		alts := make([]any, len(s.OneOf))
		for i, alt := range s.OneOf {
			child, err := alt.document(stack, jsonSchema)
			if err != nil {
				return nil, fmt.Errorf("oneOf[%d]: %w", i, err)
			}
			alts[i] = child
		}
		doc["oneOf"] = alts
	}

	return doc, nil
}

// Fingerprint returns a content hash of the whole subtree rooted at s.
// Equal documents hash equally regardless of pointer identity.
func (s *Schema) Fingerprint() (uint64, error) {
	doc, err := s.Document()
	if err != nil {
		return 0, err
	}
	return fingerprint.Of(doc)
}

// MarshalJSON serializes the node in document form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalJSON deserializes a document produced by MarshalJSON (or written by hand).
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := Decode(raw)
	if err != nil {
		return err
	}

	*s = *parsed
	return nil
}

func setInt(doc map[string]any, key string, v *int) {
	if v != nil {
		doc[key] = *v
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
