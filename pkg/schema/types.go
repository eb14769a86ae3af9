package schema

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/aretw0/schemata/pkg/domain"
)

// Type is the kind of value a schema node accepts.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
	TypeEnum    Type = "enum"
	TypeOneOf   Type = "oneOf"
)

// Known reports whether t is one of the supported types.
func (t Type) Known() bool {
	switch t {
	case TypeObject, TypeArray, TypeString, TypeNumber, TypeInteger,
		TypeBoolean, TypeNull, TypeEnum, TypeOneOf:
		return true
	}
	return false
}

// Scalar reports whether t describes a single scalar value.
func (t Type) Scalar() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeNull:
		return true
	}
	return false
}

// Numeric reports whether t accepts numbers.
func (t Type) Numeric() bool {
	return t == TypeNumber || t == TypeInteger
}

// Schema is one node of a schema tree.
type Schema struct {
	Type        Type   `json:"type" mapstructure:"type"`
	Description string `json:"description,omitempty" mapstructure:"description"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty" mapstructure:"properties"`
	Required             []string           `json:"required,omitempty" mapstructure:"required"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty" mapstructure:"additionalProperties"`

	// Array
	Items    *Schema `json:"items,omitempty" mapstructure:"items"`
	MinItems *int    `json:"minItems,omitempty" mapstructure:"minItems"`
	MaxItems *int    `json:"maxItems,omitempty" mapstructure:"maxItems"`

	// String
	Pattern   string `json:"pattern,omitempty" mapstructure:"pattern"`
	MinLength *int   `json:"minLength,omitempty" mapstructure:"minLength"`
	MaxLength *int   `json:"maxLength,omitempty" mapstructure:"maxLength"`

	// Number / integer
	Minimum *float64 `json:"minimum,omitempty" mapstructure:"minimum"`
	Maximum *float64 `json:"maximum,omitempty" mapstructure:"maximum"`

	// Enum membership (type enum, or a constraint on scalar types)
	Enum []any `json:"enum,omitempty" mapstructure:"enum"`

	// Alternatives of a oneOf node
	OneOf []*Schema `json:"oneOf,omitempty" mapstructure:"oneOf"`

	// Extra holds keys that are not part of the schema language.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// AllowsAdditional reports whether keys not listed in Properties are accepted.
func (s *Schema) AllowsAdditional() bool {
	return s.AdditionalProperties == nil || *s.AdditionalProperties
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Child returns the schema of the value s holds under seg: Items for an index,
// the declared property for a key. declared is false for keys s does not list.
func (s *Schema) Child(seg domain.Segment) (child *Schema, declared bool) {
	if seg.IsIndex() {
		return s.Items, s.Items != nil
	}
	child, declared = s.Properties[seg.Name()]
	return child, declared
}

var patterns sync.Map // map[string]*regexp.Regexp

// Regexp returns the compiled Pattern. Compilations are shared process-wide.
func (s *Schema) Regexp() (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(s.Pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
	}
	patterns.Store(s.Pattern, re)
	return re, nil
}

// --- Factory Functions ---

// Option sets a constraint on a node created by a factory function.
type Option func(*Schema)

func newNode(t Type, opts []Option) *Schema {
	s := &Schema{Type: t}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// String creates a string node.
func String(opts ...Option) *Schema { return newNode(TypeString, opts) }

// Number creates a number node.
func Number(opts ...Option) *Schema { return newNode(TypeNumber, opts) }

// Integer creates an integer node.
func Integer(opts ...Option) *Schema { return newNode(TypeInteger, opts) }

// Boolean creates a boolean node.
func Boolean(opts ...Option) *Schema { return newNode(TypeBoolean, opts) }

// Null creates a node accepting only null.
func Null(opts ...Option) *Schema { return newNode(TypeNull, opts) }

// Object creates an object node with the given properties.
func Object(props map[string]*Schema, opts ...Option) *Schema {
	s := newNode(TypeObject, opts)
	s.Properties = props
	return s
}

// Array creates an array node whose elements must match items.
func Array(items *Schema, opts ...Option) *Schema {
	s := newNode(TypeArray, opts)
	s.Items = items
	return s
}

// Enum creates a node accepting any of values.
func Enum(values ...any) *Schema {
	return &Schema{Type: TypeEnum, Enum: values}
}

// OneOf creates a node accepting values that match exactly one alternative.
func OneOf(alternatives ...*Schema) *Schema {
	return &Schema{Type: TypeOneOf, OneOf: alternatives}
}

// Required marks object properties as required.
func Required(names ...string) Option {
	return func(s *Schema) { s.Required = append(s.Required, names...) }
}

// Closed rejects object keys that are not declared in Properties.
func Closed() Option {
	return func(s *Schema) {
		closed := false
		s.AdditionalProperties = &closed
	}
}

// Pattern constrains strings to match a regular expression.
func Pattern(expr string) Option {
	return func(s *Schema) { s.Pattern = expr }
}

// MinLength sets the minimum string length in characters.
func MinLength(n int) Option {
	return func(s *Schema) { s.MinLength = &n }
}

// MaxLength sets the maximum string length in characters.
func MaxLength(n int) Option {
	return func(s *Schema) { s.MaxLength = &n }
}

// Minimum sets the inclusive lower bound of a number.
func Minimum(v float64) Option {
	return func(s *Schema) { s.Minimum = &v }
}

// Maximum sets the inclusive upper bound of a number.
func Maximum(v float64) Option {
	return func(s *Schema) { s.Maximum = &v }
}

// MinItems sets the minimum array length.
func MinItems(n int) Option {
	return func(s *Schema) { s.MinItems = &n }
}

// MaxItems sets the maximum array length.
func MaxItems(n int) Option {
	return func(s *Schema) { s.MaxItems = &n }
}

// OneOfValues restricts a scalar node to a fixed set of values.
func OneOfValues(values ...any) Option {
	return func(s *Schema) { s.Enum = values }
}

// Describe attaches a human-readable description.
func Describe(text string) Option {
	return func(s *Schema) { s.Description = text }
}
