package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/schemata/pkg/catalog"
)

// ValidationError is a single violation found while validating data or a schema.
// Message is always resolved by the time a ValidationError leaves a validator.
type ValidationError struct {
	Code    catalog.Code `json:"code"`
	Path    Path         `json:"path"`
	Keyword string       `json:"keyword,omitempty"` // Constraint that failed, e.g. "pattern"
	Args    []any        `json:"args,omitempty"`
	Message string       `json:"message"`
}

// NewValidationError builds an error and resolves its message through cat.
func NewValidationError(cat catalog.Catalog, code catalog.Code, path Path, args ...any) ValidationError {
	return ValidationError{
		Code:    code,
		Path:    path,
		Args:    args,
		Message: cat.Resolve(code, args...),
	}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Rebase returns a copy of e with prefix prepended to its path.
func (e ValidationError) Rebase(prefix Path) ValidationError {
	e.Path = prefix.Join(e.Path)
	return e
}

// Same reports whether two errors describe the same violation.
// Args are not compared since serialization may change their Go types.
func (e ValidationError) Same(o ValidationError) bool {
	return e.Code == o.Code &&
		e.Keyword == o.Keyword &&
		e.Message == o.Message &&
		e.Path.Equal(o.Path)
}

// Errors is the full set of violations of one validation run.
// An empty set means the data is valid.
type Errors []ValidationError

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no validation errors"
	case 1:
		return es[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(es))
	for i, e := range es {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e.Error())
	}
	return b.String()
}

// Err returns es as an error, or nil when there are no violations.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Codes lists the code of every error, in order.
func (es Errors) Codes() []catalog.Code {
	out := make([]catalog.Code, len(es))
	for i, e := range es {
		out[i] = e.Code
	}
	return out
}

// Has reports whether any error points at path.
func (es Errors) Has(path Path) bool {
	for _, e := range es {
		if e.Path.Equal(path) {
			return true
		}
	}
	return false
}

// Filter returns the errors carrying code.
func (es Errors) Filter(code catalog.Code) Errors {
	var out Errors
	for _, e := range es {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}

// Rebase returns a copy with prefix prepended to every path.
func (es Errors) Rebase(prefix Path) Errors {
	if len(es) == 0 {
		return nil
	}
	out := make(Errors, len(es))
	for i, e := range es {
		out[i] = e.Rebase(prefix)
	}
	return out
}

// Clone returns a copy that shares no paths or argument slices with es.
func (es Errors) Clone() Errors {
	if es == nil {
		return nil
	}
	out := make(Errors, len(es))
	for i, e := range es {
		e.Path = slices.Clone(e.Path)
		e.Args = slices.Clone(e.Args)
		out[i] = e
	}
	return out
}

// Sort orders errors by path, then code, then keyword.
func (es Errors) Sort() {
	slices.SortStableFunc(es, func(a, b ValidationError) int {
		if c := a.Path.Compare(b.Path); c != 0 {
			return c
		}
		if a.Code != b.Code {
			return int(a.Code) - int(b.Code)
		}
		return strings.Compare(a.Keyword, b.Keyword)
	})
}

// AsErrors extracts the violation set from err, if it is one.
func AsErrors(err error) (Errors, bool) {
	es, ok := err.(Errors)
	return es, ok
}
