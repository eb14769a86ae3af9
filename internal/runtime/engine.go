package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/schemata/internal/fingerprint"
	"github.com/aretw0/schemata/internal/logging"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/google/uuid"
)

// Name labels the native engine in metrics.
const Name = "native"

// DefaultMaxDepth bounds recursion when no depth is configured.
const DefaultMaxDepth = 64

// Engine validates data trees against schemas, memoizing every subtree outcome
// in a content-keyed cache.
type Engine struct {
	cache    ports.ValidationCache
	catalog  catalog.Catalog
	logger   *slog.Logger
	metrics  *observability.Metrics
	maxDepth int

	// schema node -> fingerprint; nodes are assumed immutable once validated
	fingerprints sync.Map
}

var _ ports.SchemaValidator = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the outcome cache. Defaults to a fresh memory.Cache.
func WithCache(c ports.ValidationCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithCatalog sets the catalog used to resolve messages.
func WithCatalog(c catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxDepth sets the deepest level validated before DEPTH_EXCEEDED is reported.
// Non-positive values keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// NewEngine creates an engine with an in-memory cache and the default catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:    memory.NewCache(),
		catalog:  catalog.Default(),
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxDepth returns the configured depth limit.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// ValidateSchema reports every well-formedness problem of s.
func (e *Engine) ValidateSchema(s *schema.Schema, path domain.Path) (domain.Errors, error) {
	return schema.Check(s, path, e.catalog)
}

// ValidateData validates data against s and returns every violation, sorted
// by path. Paths are prefixed by path.
func (e *Engine) ValidateData(ctx context.Context, data any, s *schema.Schema, path domain.Path) (domain.Errors, error) {
	if s == nil {
		return nil, domain.ErrNilSchema
	}
	return e.execute(ctx, path, func(r *run) (outcome, error) {
		return r.node(s, data, 0)
	})
}

// Validate validates the property of a node described by s, holding data.
// Violations are reported under path + property.
func (e *Engine) Validate(ctx context.Context, s *schema.Schema, property domain.Segment, data any, path domain.Path) (domain.Errors, error) {
	if s == nil {
		return nil, domain.ErrNilSchema
	}
	return e.execute(ctx, path, func(r *run) (outcome, error) {
		return r.property(s, property, data, 1)
	})
}

func (e *Engine) execute(ctx context.Context, path domain.Path, walk func(*run) (outcome, error)) (domain.Errors, error) {
	started := time.Now()
	r := &run{
		Engine: e,
		ctx:    ctx,
		id:     uuid.NewString(),
	}

	out, err := walk(r)
	if err != nil {
		e.metrics.ObserveRun(Name, started, nil, err)
		e.logger.Warn("validation aborted", "run", r.id, "error", err)
		return nil, err
	}

	errs := out.errs.Rebase(path)
	errs.Sort()

	e.metrics.ObserveRun(Name, started, errs, nil)
	e.logger.Debug("validation finished",
		"run", r.id,
		"violations", len(errs),
		"cache_hits", r.hits,
		"cache_misses", r.misses,
		"duration", time.Since(started),
	)
	return errs, nil
}

// key derives the cache key of a (schema, data) pair. ok is false when either
// side cannot be fingerprinted; such nodes are validated but never cached.
func (e *Engine) key(s *schema.Schema, data any) (domain.CacheKey, bool) {
	sfp, ok := e.schemaFingerprint(s)
	if !ok {
		return domain.CacheKey{}, false
	}
	dfp, err := fingerprint.Of(data)
	if err != nil {
		return domain.CacheKey{}, false
	}
	return domain.CacheKey{Schema: sfp, Data: dfp}, true
}

type fingerprintResult struct {
	sum uint64
	ok  bool
}

func (e *Engine) schemaFingerprint(s *schema.Schema) (uint64, bool) {
	if cached, ok := e.fingerprints.Load(s); ok {
		res := cached.(fingerprintResult)
		return res.sum, res.ok
	}
	sum, err := s.Fingerprint()
	if err != nil {
		e.logger.Debug("schema not cacheable", "error", err)
	}
	e.fingerprints.Store(s, fingerprintResult{sum: sum, ok: err == nil})
	return sum, err == nil
}

func (r *run) lookup(key domain.CacheKey) (domain.CacheEntry, bool, error) {
	entry, ok, err := r.cache.Get(r.ctx, key)
	if err != nil {
		r.logger.Warn("cache lookup failed", "run", r.id, "key", key.String(), "error", err)
		return domain.CacheEntry{}, false, fmt.Errorf("cache lookup %s: %w", key, err)
	}
	return entry, ok, nil
}

func (r *run) store(key domain.CacheKey, out outcome) error {
	entry := domain.CacheEntry{Errors: out.errs, Height: out.height}
	if err := r.cache.Put(r.ctx, key, entry); err != nil {
		r.logger.Warn("cache store failed", "run", r.id, "key", key.String(), "error", err)
		return fmt.Errorf("cache store %s: %w", key, err)
	}
	return nil
}
