package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key creates a segment addressing an object property.
func Key(name string) Segment { return Segment{key: name} }

// Index creates a segment addressing an array element.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// Name returns the property name of a key segment.
func (s Segment) Name() string { return s.key }

// Position returns the element index of an index segment.
func (s Segment) Position() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

func (s Segment) compare(o Segment) int {
	switch {
	case s.isIndex && o.isIndex:
		return s.index - o.index
	case s.isIndex:
		return -1
	case o.isIndex:
		return 1
	default:
		return strings.Compare(s.key, o.key)
	}
}

// Path locates a node inside a data tree. The empty path is the root.
type Path []Segment

// Append returns a new path with segs added. The receiver is never modified,
// so sibling branches can safely share a parent path.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, len(p), len(p)+len(segs))
	copy(out, p)
	return append(out, segs...)
}

// Join returns p followed by every segment of rel.
func (p Path) Join(rel Path) Path {
	return p.Append(rel...)
}

// Equal reports whether both paths address the same node.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Compare orders paths segment by segment; indices sort before keys and a
// prefix sorts before its extensions.
func (p Path) Compare(o Path) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		if c := p[i].compare(o[i]); c != 0 {
			return c
		}
	}
	return len(p) - len(o)
}

// String renders the path in JSONPath style, e.g. "$.items[0].name".
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range p {
		switch {
		case seg.isIndex:
			fmt.Fprintf(&b, "[%d]", seg.index)
		case isIdentifier(seg.key):
			b.WriteString(".")
			b.WriteString(seg.key)
		default:
			fmt.Fprintf(&b, "[%q]", seg.key)
		}
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON Pointer. The root is "".
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteString("/")
		if seg.isIndex {
			b.WriteString(strconv.Itoa(seg.index))
			continue
		}
		b.WriteString(pointerEscaper.Replace(seg.key))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// MarshalJSON encodes the path as an array of strings (keys) and numbers (indices).
func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(p))
	for i, seg := range p {
		if seg.isIndex {
			raw[i] = seg.index
		} else {
			raw[i] = seg.key
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes the array form produced by MarshalJSON.
func (p *Path) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("path: %w", err)
	}

	out := make(Path, 0, len(raw))
	for i, v := range raw {
		switch t := v.(type) {
		case string:
			out = append(out, Key(t))
		case json.Number:
			n, err := strconv.Atoi(t.String())
			if err != nil {
				return fmt.Errorf("path segment %d: invalid index %s", i, t)
			}
			out = append(out, Index(n))
		default:
			return fmt.Errorf("path segment %d: unexpected %T", i, v)
		}
	}
	*p = out
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
