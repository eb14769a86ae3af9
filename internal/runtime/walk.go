package runtime

import (
	"context"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
)

// outcome is the result of validating one node. Paths in errs are relative to
// the node. height is how many levels below the node were visited.
type outcome struct {
	errs      domain.Errors
	height    int
	truncated bool // a depth limit cut the walk short
}

// absorb takes the height and truncation of a child evaluated one level down
// without adopting its errors.
func (o *outcome) absorb(child outcome) {
	o.height = max(o.height, child.height+1)
	o.truncated = o.truncated || child.truncated
}

// run is the state of one top-level call.
type run struct {
	*Engine
	ctx    context.Context
	id     string
	hits   int
	misses int
}

func (r *run) fail(out *outcome, code catalog.Code, path domain.Path, keyword string, args ...any) {
	e := domain.NewValidationError(r.catalog, code, path, args...)
	e.Keyword = keyword
	out.errs = append(out.errs, e)
}

// node validates data against s at the given depth, consulting the cache first.
func (r *run) node(s *schema.Schema, data any, depth int) (outcome, error) {
	if err := r.ctx.Err(); err != nil {
		return outcome{}, err
	}

	var out outcome
	if depth > r.maxDepth {
		r.logger.Warn("maximum depth exceeded", "run", r.id, "max_depth", r.maxDepth)
		r.fail(&out, catalog.DepthExceeded, nil, "", r.maxDepth)
		out.truncated = true
		return out, nil
	}
	if s == nil {
		r.fail(&out, catalog.MalformedSchema, nil, "", "schema node is empty")
		return out, nil
	}
	data = plain(data)

	key, cacheable := r.key(s, data)
	if cacheable {
		entry, ok, err := r.lookup(key)
		if err != nil {
			return outcome{}, err
		}
		if ok && depth+entry.Height <= r.maxDepth {
			r.hits++
			r.metrics.CacheLookup(true)
			return outcome{errs: entry.Errors, height: entry.Height}, nil
		}
		r.misses++
		r.metrics.CacheLookup(false)
	}

	out, err := r.dispatch(s, data, depth)
	if err != nil {
		return outcome{}, err
	}

	if cacheable && !out.truncated {
		if err := r.store(key, out); err != nil {
			return outcome{}, err
		}
	}
	return out, nil
}

func (r *run) dispatch(s *schema.Schema, data any, depth int) (outcome, error) {
	var out outcome
	switch s.Type {
	case schema.TypeString:
		r.checkString(&out, s, data)
	case schema.TypeNumber, schema.TypeInteger:
		r.checkNumber(&out, s, data)
	case schema.TypeBoolean:
		if kindOf(data) != kindBoolean {
			r.mismatch(&out, s.Type, data)
			break
		}
		r.checkEnum(&out, s, data)
	case schema.TypeNull:
		if kindOf(data) != kindNull {
			r.mismatch(&out, s.Type, data)
		}
	case schema.TypeObject:
		return r.checkObject(s, data, depth)
	case schema.TypeArray:
		return r.checkArray(s, data, depth)
	case schema.TypeEnum:
		if !r.member(s.Enum, data) {
			r.fail(&out, catalog.ConstraintViolation, nil, "enum", display(data), "enum", s.Enum)
		}
	case schema.TypeOneOf:
		return r.checkOneOf(s, data, depth)
	default:
		r.fail(&out, catalog.UnknownType, nil, "type", string(s.Type))
	}
	return out, nil
}

func (r *run) mismatch(out *outcome, expected schema.Type, data any) {
	r.fail(out, catalog.TypeMismatch, nil, "type", string(expected), describe(data))
}

func (r *run) violation(out *outcome, keyword string, value, limit any) {
	r.fail(out, catalog.ConstraintViolation, nil, keyword, value, keyword, limit)
}

func (r *run) member(values []any, data any) bool {
	return slices.ContainsFunc(values, func(v any) bool { return equal(v, data) })
}

func (r *run) checkEnum(out *outcome, s *schema.Schema, data any) {
	if len(s.Enum) > 0 && !r.member(s.Enum, data) {
		r.violation(out, "enum", display(data), s.Enum)
	}
}

func (r *run) checkString(out *outcome, s *schema.Schema, data any) {
	str, ok := asString(data)
	if !ok {
		r.mismatch(out, s.Type, data)
		return
	}

	if s.Pattern != "" {
		re, err := s.Regexp()
		switch {
		case err != nil:
			r.fail(out, catalog.MalformedSchema, nil, "pattern", err.Error())
		case !re.MatchString(str):
			r.violation(out, "pattern", str, s.Pattern)
		}
	}

	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		r.violation(out, "minLength", n, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		r.violation(out, "maxLength", n, *s.MaxLength)
	}
	r.checkEnum(out, s, data)
}

func (r *run) checkNumber(out *outcome, s *schema.Schema, data any) {
	f, ok := toFloat(data)
	if !ok || (s.Type == schema.TypeInteger && !isInteger(data)) {
		r.mismatch(out, s.Type, data)
		return
	}

	if s.Minimum != nil && f < *s.Minimum {
		r.violation(out, "minimum", f, *s.Minimum)
	}
	if s.Maximum != nil && f > *s.Maximum {
		r.violation(out, "maximum", f, *s.Maximum)
	}
	r.checkEnum(out, s, data)
}

func (r *run) checkObject(s *schema.Schema, data any, depth int) (outcome, error) {
	var out outcome
	obj, ok := asObject(data)
	if !ok {
		r.mismatch(&out, s.Type, data)
		return out, nil
	}

	seen := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, present := obj[name]; !present {
			r.fail(&out, catalog.MissingRequired, domain.Path{domain.Key(name)}, "required", name)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(obj)) {
		child, err := r.property(s, domain.Key(k), obj[k], depth+1)
		if err != nil {
			return outcome{}, err
		}
		out.errs = append(out.errs, child.errs...)
		out.absorb(child)
	}
	return out, nil
}

func (r *run) checkArray(s *schema.Schema, data any, depth int) (outcome, error) {
	var out outcome
	arr, ok := asArray(data)
	if !ok {
		r.mismatch(&out, s.Type, data)
		return out, nil
	}

	if s.MinItems != nil && len(arr) < *s.MinItems {
		r.violation(&out, "minItems", len(arr), *s.MinItems)
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		r.violation(&out, "maxItems", len(arr), *s.MaxItems)
	}

	if s.Items == nil {
		return out, nil
	}
	for i, item := range arr {
		child, err := r.property(s, domain.Index(i), item, depth+1)
		if err != nil {
			return outcome{}, err
		}
		out.errs = append(out.errs, child.errs...)
		out.absorb(child)
	}
	return out, nil
}

// checkOneOf accepts data when exactly one alternative validates cleanly.
// Alternatives are evaluated one level down so self-referencing schemas stay
// bounded by the depth guard.
func (r *run) checkOneOf(s *schema.Schema, data any, depth int) (outcome, error) {
	var out outcome
	matches := 0
	for _, alt := range s.OneOf {
		res, err := r.node(alt, data, depth+1)
		if err != nil {
			return outcome{}, err
		}
		out.absorb(res)
		if len(res.errs) == 0 {
			matches++
		}
	}
	if matches != 1 {
		r.fail(&out, catalog.ConstraintViolation, nil, "oneOf", display(data), "oneOf", matches)
	}
	return out, nil
}

// property validates the value held by parent under seg. Errors are relative
// to the parent, so they already carry seg as their first segment.
func (r *run) property(parent *schema.Schema, seg domain.Segment, data any, depth int) (outcome, error) {
	var out outcome

	child, declared := parent.Child(seg)
	switch {
	case declared:
	case seg.IsIndex():
		return out, nil
	default:
		if !parent.AllowsAdditional() {
			r.fail(&out, catalog.UnexpectedProperty, domain.Path{seg}, "additionalProperties", seg.Name())
		}
		return out, nil
	}

	res, err := r.node(child, data, depth)
	if err != nil {
		return outcome{}, err
	}
	res.errs = res.errs.Rebase(domain.Path{seg})
	return res, nil
}
