package jsonschema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
	js "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// mapper flattens a jsonschema error tree into domain errors.
type mapper struct {
	catalog catalog.Catalog
	root    *schema.Schema
	data    any
	errs    domain.Errors
}

func (m *mapper) collect(ve *js.ValidationError) {
	at := m.resolve(ve.InstanceLocation)

	switch k := ve.ErrorKind.(type) {
	case *kind.Type:
		expected := "value"
		if at.node != nil {
			expected = string(at.node.Type)
		}
		m.add(catalog.TypeMismatch, at.path, "type", expected, describe(at.value))
	case *kind.Required:
		for _, name := range k.Missing {
			m.add(catalog.MissingRequired, at.path.Append(domain.Key(name)), "required", name)
		}
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			m.add(catalog.UnexpectedProperty, at.path.Append(domain.Key(name)), "additionalProperties", name)
		}
	case *kind.OneOf:
		m.add(catalog.ConstraintViolation, at.path, "oneOf", display(at.value), "oneOf", len(k.Subschemas))
	case *kind.AnyOf:
		m.add(catalog.ConstraintViolation, at.path, "anyOf", display(at.value), "anyOf", 0)
	default:
		if len(ve.Causes) > 0 {
			for _, cause := range ve.Causes {
				m.collect(cause)
			}
			return
		}
		keyword := ""
		if kp := ve.ErrorKind.KeywordPath(); len(kp) > 0 {
			keyword = kp[len(kp)-1]
		}
		m.add(catalog.ConstraintViolation, at.path, keyword, measure(keyword, at.value), keyword, limit(at.node, keyword))
	}
}

func (m *mapper) add(code catalog.Code, path domain.Path, keyword string, args ...any) {
	e := domain.NewValidationError(m.catalog, code, path, args...)
	e.Keyword = keyword
	m.errs = append(m.errs, e)
}

type location struct {
	path  domain.Path
	value any
	node  *schema.Schema
}

// resolve turns an instance location into a path, telling array indices from
// object keys by looking at the data itself.
func (m *mapper) resolve(tokens []string) location {
	loc := location{path: domain.Path{}, value: m.data, node: m.root}
	for _, tok := range tokens {
		var seg domain.Segment
		switch cur := loc.value.(type) {
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(cur) {
				seg, loc.value = domain.Key(tok), nil
				break
			}
			seg, loc.value = domain.Index(i), cur[i]
		case map[string]any:
			seg, loc.value = domain.Key(tok), cur[tok]
		default:
			seg, loc.value = domain.Key(tok), nil
		}
		loc.path = loc.path.Append(seg)
		if loc.node != nil {
			loc.node, _ = loc.node.Child(seg)
		}
	}
	return loc
}

// limit returns the schema value a keyword failed against.
func limit(node *schema.Schema, keyword string) any {
	if node == nil {
		return nil
	}
	switch keyword {
	case "pattern":
		return node.Pattern
	case "minLength":
		return deref(node.MinLength)
	case "maxLength":
		return deref(node.MaxLength)
	case "minItems":
		return deref(node.MinItems)
	case "maxItems":
		return deref(node.MaxItems)
	case "minimum":
		return deref(node.Minimum)
	case "maximum":
		return deref(node.Maximum)
	case "enum":
		return node.Enum
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// measure returns the part of value a keyword looked at: lengths for length
// keywords, the number itself for bounds.
func measure(keyword string, value any) any {
	switch keyword {
	case "minLength", "maxLength":
		if s, ok := value.(string); ok {
			return utf8.RuneCountInString(s)
		}
	case "minItems", "maxItems":
		if a, ok := value.([]any); ok {
			return len(a)
		}
	case "minimum", "maximum":
		if n, ok := value.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return f
			}
		}
	}
	return display(value)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func display(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return describe(v)
	}
	return v
}
