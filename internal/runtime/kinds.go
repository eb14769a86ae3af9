package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

type kind int

const (
	kindUnknown kind = iota
	kindNull
	kindBoolean
	kindString
	kindNumber
	kindObject
	kindArray
)

func (k kind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindBoolean:
		return "boolean"
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindObject:
		return "object"
	case kindArray:
		return "array"
	default:
		return "unknown"
	}
}

// plain unwraps pointers and interfaces and turns nil maps and slices into
// nil, matching how encoding/json and the fingerprint see the value.
func plain(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64, int, json.Number:
		return v
	case map[string]any:
		if t == nil {
			return nil
		}
		return v
	case []any:
		if t == nil {
			return nil
		}
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.IsNil() {
		return nil
	}
	return rv.Interface()
}

func kindOf(v any) kind {
	v = plain(v)
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBoolean
	case string:
		return kindString
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return kindNumber
	case map[string]any:
		return kindObject
	case []any:
		return kindArray
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return kindBoolean
	case reflect.String:
		return kindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return kindObject
		}
	case reflect.Slice, reflect.Array:
		return kindArray
	}
	return kindUnknown
}

// describe names the kind of v for messages, using the Go type for values
// outside the JSON data model.
func describe(v any) string {
	if k := kindOf(v); k != kindUnknown {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}

// display renders a value for a constraint message; containers are shown by kind.
func display(v any) any {
	switch kindOf(v) {
	case kindObject, kindArray, kindUnknown:
		return describe(v)
	}
	return v
}

func toFloat(v any) (float64, bool) {
	v = plain(v)
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func isInteger(v any) bool {
	f, ok := toFloat(v)
	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// asString accepts only values kindOf reports as strings, so json.Number is
// rejected even though its underlying type is string.
func asString(v any) (string, bool) {
	v = plain(v)
	if kindOf(v) != kindString {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return reflect.ValueOf(v).String(), true
}

// asObject returns v as a generic map, converting typed string-keyed maps.
func asObject(v any) (map[string]any, bool) {
	v = plain(v)
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asArray returns v as a generic slice, converting typed slices and arrays.
func asArray(v any) ([]any, bool) {
	v = plain(v)
	if a, ok := v.([]any); ok {
		return a, true
	}
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// equal compares two data values as JSON documents: numbers by value, objects
// by key set, arrays element-wise.
func equal(a, b any) bool {
	a, b = plain(a), plain(b)
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case kindNull:
		return true
	case kindNumber:
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		return okA && okB && fa == fb
	case kindString:
		sa, _ := asString(a)
		sb, _ := asString(b)
		return sa == sb
	case kindBoolean:
		return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
	case kindObject:
		oa, _ := asObject(a)
		ob, _ := asObject(b)
		if len(oa) != len(ob) {
			return false
		}
		for k, va := range oa {
			vb, ok := ob[k]
			if !ok || !equal(va, vb) {
				return false
			}
		}
		return true
	case kindArray:
		aa, _ := asArray(a)
		ab, _ := asArray(b)
		if len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !equal(aa[i], ab[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
