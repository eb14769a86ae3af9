package catalog

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultMessage is returned for codes that have no usable template.
const DefaultMessage = "This service is temporarily unavailable"

// Catalog resolves an error code and its arguments into a message.
// Implementations must be pure: the same inputs always give the same message.
type Catalog interface {
	Resolve(code Code, args ...any) string
}

// Table is a static code-to-template Catalog.
// Templates are fmt format strings whose verbs are filled positionally.
type Table map[Code]string

var defaultTable = Table{
	TypeMismatch:        "expected %s, got %s",
	ConstraintViolation: "value %v violates %s constraint %v",
	MissingRequired:     "required property %q is missing",
	UnexpectedProperty:  "property %q is not allowed",
	UnknownType:         "unknown schema type %q",
	DepthExceeded:       "maximum nesting depth of %d exceeded",
	MalformedSchema:     "malformed schema: %s",
}

// Default returns a copy of the built-in English table.
func Default() Table {
	return defaultTable.With(nil)
}

// With returns a copy of t with overrides layered on top.
func (t Table) With(overrides map[Code]string) Table {
	out := make(Table, len(t)+len(overrides))
	for code, tmpl := range t {
		out[code] = tmpl
	}
	for code, tmpl := range overrides {
		out[code] = tmpl
	}
	return out
}

// Resolve implements Catalog.
// Arguments beyond the number of verbs in the template are dropped. Missing
// arguments, an argument whose type does not suit its verb, or a malformed
// template fall back to DefaultMessage. Explicit argument indexes and "*"
// widths are not supported.
func (t Table) Resolve(code Code, args ...any) string {
	tmpl, ok := t[code]
	if !ok || tmpl == "" {
		return DefaultMessage
	}

	verbs, ok := parseVerbs(tmpl)
	if !ok || len(args) < len(verbs) {
		return DefaultMessage
	}
	for i, verb := range verbs {
		if !fits(verb, args[i]) {
			return DefaultMessage
		}
	}
	return fmt.Sprintf(tmpl, args[:len(verbs)]...)
}

// Args normalizes a scalar-or-slice argument into an ordered list, for callers
// that hold message arguments as a single value. A nil value yields an empty
// list. Validators pass arguments as variadic lists and do not call it.
func Args(v any) []any {
	if v == nil {
		return []any{}
	}
	if list, ok := v.([]any); ok {
		return list
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		// []byte is a scalar for message purposes
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return []any{v}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// parseVerbs returns the verb letter of every directive in tmpl, ignoring "%%".
// It reports false for directives fmt would render as an error.
func parseVerbs(tmpl string) ([]byte, bool) {
	var verbs []byte
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		i++
		for i < len(tmpl) && strings.IndexByte("+-# 0123456789.", tmpl[i]) >= 0 {
			i++
		}
		if i >= len(tmpl) {
			return nil, false
		}
		switch c := tmpl[i]; {
		case c == '%':
			continue
		case c == '[' || c == '*':
			return nil, false
		default:
			verbs = append(verbs, c)
		}
	}
	return verbs, true
}

// fits reports whether fmt renders arg under verb without a "%!" marker.
func fits(verb byte, arg any) bool {
	if verb == 'v' || verb == 'T' {
		return true
	}
	switch arg.(type) {
	case fmt.Formatter:
		return true
	case error, fmt.Stringer:
		if strings.IndexByte("sqxX", verb) >= 0 {
			return true
		}
	}

	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Bool:
		return verb == 't'
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strings.IndexByte("bcdoOqxXU", verb) >= 0
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return strings.IndexByte("beEfFgGxX", verb) >= 0
	case reflect.String:
		return strings.IndexByte("sqxX", verb) >= 0
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 && strings.IndexByte("sqxX", verb) >= 0 {
			return true
		}
		for i := 0; i < rv.Len(); i++ {
			if !fits(verb, rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !fits(verb, iter.Key().Interface()) || !fits(verb, iter.Value().Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Func:
		return strings.IndexByte("pbodxX", verb) >= 0
	}
	// nil and structs
	return false
}
