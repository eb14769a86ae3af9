package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
)

// Check reports every well-formedness problem in the tree rooted at s.
// Paths address the schema document (e.g. $.properties.name.pattern), prefixed
// by path. A nil s yields domain.ErrNilSchema; problems inside the tree are
// returned as errors, never as a failure.
func Check(s *Schema, path domain.Path, cat catalog.Catalog) (domain.Errors, error) {
	if s == nil {
		return nil, domain.ErrNilSchema
	}
	if cat == nil {
		return nil, domain.ErrNilCatalog
	}

	c := &checker{cat: cat, stack: make(map[*Schema]bool)}
	c.node(s, path)
	c.errs.Sort()
	return c.errs, nil
}

type checker struct {
	cat   catalog.Catalog
	stack map[*Schema]bool
	errs  domain.Errors
}

func (c *checker) malformed(path domain.Path, keyword, format string, args ...any) {
	e := domain.NewValidationError(c.cat, catalog.MalformedSchema, path, fmt.Sprintf(format, args...))
	e.Keyword = keyword
	c.errs = append(c.errs, e)
}

func (c *checker) node(s *Schema, path domain.Path) {
	if s == nil {
		c.malformed(path, "", "schema node is empty")
		return
	}
	if c.stack[s] {
		c.malformed(path, "", "cycle detected")
		return
	}
	c.stack[s] = true
	defer delete(c.stack, s)

	for _, key := range slices.Sorted(maps.Keys(s.Extra)) {
		c.malformed(path.Append(domain.Key(key)), key, "unknown keyword %q", key)
	}

	switch {
	case s.Type == "":
		c.malformed(path.Append(domain.Key("type")), "type", "type is missing")
	case !s.Type.Known():
		e := domain.NewValidationError(c.cat, catalog.UnknownType, path.Append(domain.Key("type")), string(s.Type))
		e.Keyword = "type"
		c.errs = append(c.errs, e)
	}

	c.objectKeywords(s, path)
	c.arrayKeywords(s, path)
	c.stringKeywords(s, path)
	c.numberKeywords(s, path)
	c.enumKeywords(s, path)
	c.oneOfKeywords(s, path)
}

func (c *checker) misplaced(s *Schema, path domain.Path, keyword string, allowed ...Type) {
	// unknown types are already reported, don't pile on
	if !s.Type.Known() || slices.Contains(allowed, s.Type) {
		return
	}
	c.malformed(path.Append(domain.Key(keyword)), keyword, "%s is not allowed on type %s", keyword, s.Type)
}

func (c *checker) objectKeywords(s *Schema, path domain.Path) {
	if s.Properties != nil {
		c.misplaced(s, path, "properties", TypeObject)
	}
	if len(s.Required) > 0 {
		c.misplaced(s, path, "required", TypeObject)
	}
	if s.AdditionalProperties != nil {
		c.misplaced(s, path, "additionalProperties", TypeObject)
	}

	seen := make(map[string]bool, len(s.Required))
	for i, name := range s.Required {
		at := path.Append(domain.Key("required"), domain.Index(i))
		if seen[name] {
			c.malformed(at, "required", "required property %q is listed twice", name)
		}
		seen[name] = true
		if !s.AllowsAdditional() {
			if _, declared := s.Properties[name]; !declared {
				c.malformed(at, "required", "required property %q can never be present", name)
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		c.node(s.Properties[name], path.Append(domain.Key("properties"), domain.Key(name)))
	}
}

func (c *checker) arrayKeywords(s *Schema, path domain.Path) {
	if s.Items != nil {
		c.misplaced(s, path, "items", TypeArray)
		c.node(s.Items, path.Append(domain.Key("items")))
	}
	if s.MinItems != nil {
		c.misplaced(s, path, "minItems", TypeArray)
	}
	if s.MaxItems != nil {
		c.misplaced(s, path, "maxItems", TypeArray)
	}
	c.bounds(path, "minItems", "maxItems", s.MinItems, s.MaxItems)
}

func (c *checker) stringKeywords(s *Schema, path domain.Path) {
	if s.Pattern != "" {
		c.misplaced(s, path, "pattern", TypeString)
		if _, err := s.Regexp(); err != nil {
			c.malformed(path.Append(domain.Key("pattern")), "pattern", "%v", err)
		}
	}
	if s.MinLength != nil {
		c.misplaced(s, path, "minLength", TypeString)
	}
	if s.MaxLength != nil {
		c.misplaced(s, path, "maxLength", TypeString)
	}
	c.bounds(path, "minLength", "maxLength", s.MinLength, s.MaxLength)
}

func (c *checker) bounds(path domain.Path, minKey, maxKey string, lo, hi *int) {
	if lo != nil && *lo < 0 {
		c.malformed(path.Append(domain.Key(minKey)), minKey, "%s must not be negative", minKey)
	}
	if hi != nil && *hi < 0 {
		c.malformed(path.Append(domain.Key(maxKey)), maxKey, "%s must not be negative", maxKey)
	}
	if lo != nil && hi != nil && *lo > *hi {
		c.malformed(path.Append(domain.Key(minKey)), minKey, "%s %d is greater than %s %d", minKey, *lo, maxKey, *hi)
	}
}

func (c *checker) numberKeywords(s *Schema, path domain.Path) {
	if s.Minimum != nil {
		c.misplaced(s, path, "minimum", TypeNumber, TypeInteger)
	}
	if s.Maximum != nil {
		c.misplaced(s, path, "maximum", TypeNumber, TypeInteger)
	}
	if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
		c.malformed(path.Append(domain.Key("minimum")), "minimum", "minimum %v is greater than maximum %v", *s.Minimum, *s.Maximum)
	}
}

func (c *checker) enumKeywords(s *Schema, path domain.Path) {
	if s.Type == TypeEnum && len(s.Enum) == 0 {
		c.malformed(path.Append(domain.Key("enum")), "enum", "enum needs at least one value")
	}
	if s.Enum != nil && s.Type != TypeEnum && !s.Type.Scalar() {
		c.misplaced(s, path, "enum", TypeEnum, TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeNull)
	}
}

func (c *checker) oneOfKeywords(s *Schema, path domain.Path) {
	if s.Type == TypeOneOf && len(s.OneOf) == 0 {
		c.malformed(path.Append(domain.Key("oneOf")), "oneOf", "oneOf needs at least one alternative")
	}
	if s.OneOf != nil {
		c.misplaced(s, path, "oneOf", TypeOneOf)
	}
	for i, alt := range s.OneOf {
		c.node(alt, path.Append(domain.Key("oneOf"), domain.Index(i)))
	}
}
