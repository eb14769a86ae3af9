package schemata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/schemata/internal/logging"
	"github.com/aretw0/schemata/internal/runtime"
	"github.com/aretw0/schemata/pkg/adapters/jsonschema"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/schema"
)

// EngineKind selects the validation backend.
type EngineKind string

const (
	// EngineNative walks the schema tree itself and caches every subtree.
	EngineNative EngineKind = runtime.Name
	// EngineJSONSchema compiles the schema to JSON Schema and caches whole documents.
	EngineJSONSchema EngineKind = jsonschema.Name
)

// Validator is the high-level entry point of the library.
// It wires a validation engine to its cache, catalog, logger and metrics.
type Validator struct {
	engine   ports.SchemaValidator
	kind     EngineKind
	cache    ports.ValidationCache
	catalog  catalog.Catalog
	logger   *slog.Logger
	metrics  *observability.Metrics
	maxDepth int
	closers  []io.Closer
}

var _ ports.SchemaValidator = (*Validator)(nil)

// Option defines a functional option for configuring the Validator.
type Option func(*Validator)

// WithEngine selects the validation backend (default: EngineNative).
func WithEngine(kind EngineKind) Option {
	return func(v *Validator) {
		v.kind = kind
	}
}

// WithCache injects the outcome cache. Defaults to an in-memory cache.
// The caller keeps ownership of c.
func WithCache(c ports.ValidationCache) Option {
	return func(v *Validator) {
		v.cache = c
	}
}

// WithCatalog sets the message catalog. Defaults to catalog.Default().
func WithCatalog(c catalog.Catalog) Option {
	return func(v *Validator) {
		v.catalog = c
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMaxDepth bounds how deep data is validated.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		v.maxDepth = n
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// withCloser hands a resource opened on the caller's behalf to Close.
func withCloser(c io.Closer) Option {
	return func(v *Validator) {
		v.closers = append(v.closers, c)
	}
}

// New initializes a Validator.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{kind: EngineNative}
	for _, opt := range opts {
		opt(v)
	}

	if v.cache == nil {
		v.cache = memory.NewCache()
	}
	if v.catalog == nil {
		v.catalog = catalog.Default()
	}
	if v.logger == nil {
		v.logger = logging.NewNop()
	}
	v.logger = v.logger.With("engine", string(v.kind))

	switch v.kind {
	case EngineNative:
		v.engine = runtime.NewEngine(
			runtime.WithCache(v.cache),
			runtime.WithCatalog(v.catalog),
			runtime.WithLogger(v.logger),
			runtime.WithMetrics(v.metrics),
			runtime.WithMaxDepth(v.maxDepth),
		)
	case EngineJSONSchema:
		v.engine = jsonschema.New(
			jsonschema.WithCache(v.cache),
			jsonschema.WithCatalog(v.catalog),
			jsonschema.WithLogger(v.logger),
			jsonschema.WithMetrics(v.metrics),
			jsonschema.WithMaxDepth(v.maxDepth),
		)
	default:
		return nil, errors.Join(fmt.Errorf("unknown engine %q", v.kind), v.Close())
	}

	return v, nil
}

// Engine reports which backend the validator runs.
func (v *Validator) Engine() EngineKind { return v.kind }

// Catalog returns the catalog messages are resolved through.
func (v *Validator) Catalog() catalog.Catalog { return v.catalog }

// ValidateSchema reports every well-formedness problem of s.
func (v *Validator) ValidateSchema(s *schema.Schema, path domain.Path) (domain.Errors, error) {
	return v.engine.ValidateSchema(s, path)
}

// ValidateData validates data against s and returns every violation.
func (v *Validator) ValidateData(ctx context.Context, data any, s *schema.Schema, path domain.Path) (domain.Errors, error) {
	return v.engine.ValidateData(ctx, data, s, path)
}

// Validate validates the value s holds under property.
func (v *Validator) Validate(ctx context.Context, s *schema.Schema, property domain.Segment, data any, path domain.Path) (domain.Errors, error) {
	return v.engine.Validate(ctx, s, property, data, path)
}

// Check validates data from the document root and folds violations into a
// single error. The result is a domain.Errors when data is invalid.
func (v *Validator) Check(ctx context.Context, data any, s *schema.Schema) error {
	errs, err := v.engine.ValidateData(ctx, data, s, nil)
	if err != nil {
		return err
	}
	return errs.Err()
}

// Close releases resources opened by Config.Options, such as a Redis connection.
func (v *Validator) Close() error {
	var errs []error
	for _, c := range v.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	v.closers = nil
	return errors.Join(errs...)
}
