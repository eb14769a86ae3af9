package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunValidationCacheContract runs a suite of tests to verify that a
// ValidationCache implementation adheres to the interface contract.
func RunValidationCacheContract(t *testing.T, cache ValidationCache) {
	ctx := context.Background()
	seed := uint64(time.Now().UnixNano())
	cat := catalog.Default()

	invalid := domain.InvalidEntry(domain.Errors{
		domain.NewValidationError(cat, catalog.TypeMismatch, domain.Path{domain.Key("n"), domain.Index(1)}, "string", "number"),
		domain.NewValidationError(cat, catalog.MissingRequired, domain.Path{domain.Key("id")}, "id"),
	})
	invalid.Height = 3

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, domain.CacheKey{Schema: seed, Data: 1})
		require.NoError(t, err, "a miss is not an error")
		assert.False(t, ok)
	})

	t.Run("Put and Get Valid", func(t *testing.T) {
		key := domain.CacheKey{Schema: seed, Data: 2}
		require.NoError(t, cache.Put(ctx, key, domain.ValidEntry()))

		got, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Valid())
	})

	t.Run("Put and Get Invalid", func(t *testing.T) {
		key := domain.CacheKey{Schema: seed, Data: 3}
		require.NoError(t, cache.Put(ctx, key, invalid))

		got, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, invalid.Equal(got), "stored %v, got %v", invalid.Errors, got.Errors)
		assert.True(t, got.Errors[0].Path[1].IsIndex(), "index segments must survive storage")
	})

	t.Run("Idempotent Put", func(t *testing.T) {
		key := domain.CacheKey{Schema: seed, Data: 4}
		require.NoError(t, cache.Put(ctx, key, invalid))
		require.NoError(t, cache.Put(ctx, key, invalid))

		got, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, invalid.Equal(got))
	})

	t.Run("Stored Entry Is Isolated", func(t *testing.T) {
		key := domain.CacheKey{Schema: seed, Data: 5}
		entry := domain.InvalidEntry(invalid.Errors.Clone())
		entry.Height = invalid.Height
		require.NoError(t, cache.Put(ctx, key, entry))

		// mutating what we handed in or got back must not leak into the cache
		entry.Errors[0].Message = "mutated"
		got, _, err := cache.Get(ctx, key)
		require.NoError(t, err)
		got.Errors[1].Message = "mutated too"

		again, _, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, invalid.Equal(again))
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		for i := uint64(0); i < 5; i++ {
			key := domain.CacheKey{Schema: seed + 1, Data: i}
			require.NoError(t, cache.Put(ctx, key, domain.InvalidEntry(domain.Errors{
				domain.NewValidationError(cat, catalog.UnexpectedProperty, domain.Path{domain.Key(fmt.Sprint(i))}, fmt.Sprint(i)),
			})))
		}
		for i := uint64(0); i < 5; i++ {
			got, ok, err := cache.Get(ctx, domain.CacheKey{Schema: seed + 1, Data: i})
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, fmt.Sprint(i), got.Errors[0].Path[0].Name())
		}
	})
}
