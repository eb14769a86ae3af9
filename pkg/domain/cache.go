package domain

import "fmt"

// CacheKey identifies a validation outcome by content: the fingerprint of the
// schema subtree and the fingerprint of the data subtree. Paths never take part.
type CacheKey struct {
	Schema uint64
	Data   uint64
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%016x:%016x", k.Schema, k.Data)
}

// CacheEntry is a stored validation outcome. Paths inside Errors are relative
// to the node the entry was computed for.
type CacheEntry struct {
	Errors Errors `json:"errors,omitempty"`
	// Height is how many levels below the node validation descended. A hit is
	// only usable where the remaining depth budget covers it.
	Height int `json:"height,omitempty"`
}

// ValidEntry is the outcome of a subtree without violations.
func ValidEntry() CacheEntry { return CacheEntry{} }

// InvalidEntry wraps the violations found under a subtree.
func InvalidEntry(errs Errors) CacheEntry { return CacheEntry{Errors: errs} }

// Valid reports whether the entry records no violations.
func (e CacheEntry) Valid() bool { return len(e.Errors) == 0 }

// Equal reports whether both entries record the same outcome.
func (e CacheEntry) Equal(o CacheEntry) bool {
	if e.Height != o.Height || len(e.Errors) != len(o.Errors) {
		return false
	}
	for i := range e.Errors {
		if !e.Errors[i].Same(o.Errors[i]) {
			return false
		}
	}
	return true
}
