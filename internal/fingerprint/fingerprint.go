// Package fingerprint derives deterministic content hashes for data trees.
//
// Two values that are equal as JSON documents hash to the same fingerprint:
// map keys are visited in sorted order and every number is folded to float64,
// so 1, int64(1), 1.0 and json.Number("1") are indistinguishable. Pointers are
// followed and nil maps or slices hash as null, as encoding/json renders them.
package fingerprint

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ErrUnsupported is returned for values with no JSON-like shape (funcs, channels, structs...).
var ErrUnsupported = errors.New("fingerprint: unsupported value")

const (
	tagNull   = 'z'
	tagTrue   = 't'
	tagFalse  = 'f'
	tagString = 's'
	tagNumber = 'n'
	tagBigNum = 'N'
	tagObject = 'o'
	tagArray  = 'a'
)

// Of returns the fingerprint of v.
func Of(v any) (uint64, error) {
	d := xxhash.New()
	w := &writer{d: d}
	if err := w.value(v); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

type writer struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (w *writer) tag(t byte) {
	w.buf[0] = t
	_, _ = w.d.Write(w.buf[:1])
}

func (w *writer) uint(n uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], n)
	_, _ = w.d.Write(w.buf[:])
}

func (w *writer) str(s string) {
	w.tag(tagString)
	w.uint(uint64(len(s)))
	_, _ = w.d.WriteString(s)
}

func (w *writer) num(f float64) {
	if f == 0 {
		f = 0 // fold -0
	}
	w.tag(tagNumber)
	w.uint(math.Float64bits(f))
}

func (w *writer) value(v any) error {
	switch t := v.(type) {
	case nil:
		w.tag(tagNull)
	case bool:
		if t {
			w.tag(tagTrue)
		} else {
			w.tag(tagFalse)
		}
	case string:
		w.str(t)
	case float64:
		w.num(t)
	case float32:
		w.num(float64(t))
	case int:
		w.num(float64(t))
	case int8:
		w.num(float64(t))
	case int16:
		w.num(float64(t))
	case int32:
		w.num(float64(t))
	case int64:
		w.num(float64(t))
	case uint:
		w.num(float64(t))
	case uint8:
		w.num(float64(t))
	case uint16:
		w.num(float64(t))
	case uint32:
		w.num(float64(t))
	case uint64:
		w.num(float64(t))
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			w.tag(tagBigNum)
			w.str(t.String())
			return nil
		}
		w.num(f)
	case map[string]any:
		if t == nil {
			w.tag(tagNull)
			return nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		w.tag(tagObject)
		w.uint(uint64(len(keys)))
		for _, k := range keys {
			w.str(k)
			if err := w.value(t[k]); err != nil {
				return err
			}
		}
	case []any:
		if t == nil {
			w.tag(tagNull)
			return nil
		}
		w.tag(tagArray)
		w.uint(uint64(len(t)))
		for _, e := range t {
			if err := w.value(e); err != nil {
				return err
			}
		}
	default:
		return w.reflect(reflect.ValueOf(v))
	}
	return nil
}

// reflect handles typed maps, slices and pointers ([]string, map[string]int, ...).
func (w *writer) reflect(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			w.tag(tagNull)
			return nil
		}
		return w.value(rv.Elem().Interface())
	case reflect.String:
		w.str(rv.String())
	case reflect.Bool:
		return w.value(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.num(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		w.num(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		w.num(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			w.tag(tagNull)
			return nil
		}
		w.tag(tagArray)
		w.uint(uint64(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			if err := w.value(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s", ErrUnsupported, rv.Type().Key())
		}
		if rv.IsNil() {
			w.tag(tagNull)
			return nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		w.tag(tagObject)
		w.uint(uint64(len(keys)))
		for _, k := range keys {
			w.str(k)
			elem := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			if err := w.value(elem.Interface()); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
	}
	return nil
}
