package ports

import (
	"context"

	"github.com/aretw0/schemata/pkg/domain"
)

// ValidationCache stores validation outcomes by content key.
// Implementations must serialize concurrent Get/Put calls.
type ValidationCache interface {
	// Get returns the stored outcome for key. A miss is reported as ok == false
	// with a nil error; err is reserved for backend failures.
	Get(ctx context.Context, key domain.CacheKey) (entry domain.CacheEntry, ok bool, err error)

	// Put stores the outcome for key. Storing the same entry twice is a no-op.
	// Callers must never store a different entry under an existing key.
	Put(ctx context.Context, key domain.CacheKey, entry domain.CacheEntry) error
}
