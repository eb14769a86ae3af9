// Package jsonschema validates data by compiling schema trees to JSON Schema
// (draft 2020-12) and running them through santhosh-tekuri/jsonschema.
// Results use the same error taxonomy as the native engine.
package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
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
	"github.com/cespare/xxhash/v2"
	js "github.com/santhosh-tekuri/jsonschema/v6"
)

// Name labels this engine in metrics.
const Name = "jsonschema"

// DefaultMaxDepth bounds data nesting when no depth is configured.
const DefaultMaxDepth = 64

// Validator implements ports.SchemaValidator on top of a JSON Schema compiler.
type Validator struct {
	cache    ports.ValidationCache
	catalog  catalog.Catalog
	logger   *slog.Logger
	metrics  *observability.Metrics
	maxDepth int

	compiled sync.Map // schema fingerprint -> *js.Schema
}

var _ ports.SchemaValidator = (*Validator)(nil)

// Option configures a Validator.
type Option func(*Validator)

// WithCache sets the outcome cache. Defaults to a fresh memory.Cache.
func WithCache(c ports.ValidationCache) Option {
	return func(v *Validator) {
		if c != nil {
			v.cache = c
		}
	}
}

// WithCatalog sets the catalog used to resolve messages.
func WithCatalog(c catalog.Catalog) Option {
	return func(v *Validator) {
		if c != nil {
			v.catalog = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// WithMaxDepth rejects data nested deeper than n levels.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		cache:    memory.NewCache(),
		catalog:  catalog.Default(),
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateSchema runs the structural checks and then compiles s. A schema the
// compiler rejects yields one MALFORMED_SCHEMA error at path.
func (v *Validator) ValidateSchema(s *schema.Schema, path domain.Path) (domain.Errors, error) {
	errs, err := schema.Check(s, path, v.catalog)
	if err != nil || len(errs) > 0 {
		return errs, err
	}

	if _, _, err := v.compile(s); err != nil {
		e := domain.NewValidationError(v.catalog, catalog.MalformedSchema, path, err.Error())
		return domain.Errors{e}, nil
	}
	return nil, nil
}

// ValidateData validates data against s. When s is malformed its problems are
// returned instead, since the compiled form cannot be trusted.
func (v *Validator) ValidateData(ctx context.Context, data any, s *schema.Schema, path domain.Path) (domain.Errors, error) {
	started := time.Now()
	errs, err := v.validate(ctx, data, s)
	if err != nil {
		v.metrics.ObserveRun(Name, started, nil, err)
		v.logger.Warn("validation aborted", "error", err)
		return nil, err
	}

	errs = errs.Rebase(path)
	errs.Sort()
	v.metrics.ObserveRun(Name, started, errs, nil)
	v.logger.Debug("validation finished", "violations", len(errs), "duration", time.Since(started))
	return errs, nil
}

// Validate validates the value parent holds under property.
func (v *Validator) Validate(ctx context.Context, parent *schema.Schema, property domain.Segment, data any, path domain.Path) (domain.Errors, error) {
	if parent == nil {
		return nil, domain.ErrNilSchema
	}

	child, declared := parent.Child(property)
	switch {
	case declared:
		return v.ValidateData(ctx, data, child, path.Append(property))
	case !property.IsIndex() && !parent.AllowsAdditional():
		e := domain.NewValidationError(v.catalog, catalog.UnexpectedProperty, path.Append(property), property.Name())
		e.Keyword = "additionalProperties"
		return domain.Errors{e}, nil
	}
	return nil, nil
}

func (v *Validator) validate(ctx context.Context, data any, s *schema.Schema) (domain.Errors, error) {
	if s == nil {
		return nil, domain.ErrNilSchema
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if problems, err := v.ValidateSchema(s, nil); err != nil || len(problems) > 0 {
		return problems, err
	}

	doc, err := normalize(data)
	if err != nil {
		// not representable as JSON, so it cannot match any schema node
		e := domain.NewValidationError(v.catalog, catalog.TypeMismatch, nil, string(s.Type), fmt.Sprintf("%T", data))
		e.Keyword = "type"
		return domain.Errors{e}, nil
	}

	if deep := v.depthErrors(doc, nil, 0); len(deep) > 0 {
		v.logger.Warn("maximum depth exceeded", "max_depth", v.maxDepth)
		return deep, nil
	}

	compiled, sfp, err := v.compile(s)
	if err != nil {
		return nil, err
	}

	key, cacheable := cacheKey(sfp, doc)
	if cacheable {
		entry, ok, err := v.cache.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("cache lookup %s: %w", key, err)
		}
		v.metrics.CacheLookup(ok)
		if ok {
			v.logger.Debug("cache hit", "key", key.String())
			return entry.Errors, nil
		}
	}

	var errs domain.Errors
	if err := compiled.Validate(doc); err != nil {
		var ve *js.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validate: %w", err)
		}
		m := &mapper{catalog: v.catalog, root: s, data: doc}
		m.collect(ve)
		errs = m.errs
	}

	if cacheable {
		entry := domain.CacheEntry{Errors: errs, Height: height(doc)}
		if err := v.cache.Put(ctx, key, entry); err != nil {
			return nil, fmt.Errorf("cache store %s: %w", key, err)
		}
	}
	return errs, nil
}

// compile returns the compiled form of s, shared by every structurally equal schema.
func (v *Validator) compile(s *schema.Schema) (*js.Schema, uint64, error) {
	sfp, err := s.Fingerprint()
	if err != nil {
		return nil, 0, fmt.Errorf("fingerprint schema: %w", err)
	}
	if cached, ok := v.compiled.Load(sfp); ok {
		return cached.(*js.Schema), sfp, nil
	}

	raw, err := s.JSONSchema()
	if err != nil {
		return nil, 0, err
	}
	doc, err := normalize(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("encode schema: %w", err)
	}

	url := fmt.Sprintf("schemata://%016x.json", sfp)
	c := js.NewCompiler()
	c.DefaultDraft(js.Draft2020)
	if err := c.AddResource(url, doc); err != nil {
		return nil, 0, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, 0, fmt.Errorf("compile: %w", err)
	}

	v.compiled.Store(sfp, compiled)
	return compiled, sfp, nil
}

// cacheKey salts the schema fingerprint so entries never collide with the
// native engine's when both share a cache.
func cacheKey(sfp uint64, doc any) (domain.CacheKey, bool) {
	dfp, err := fingerprint.Of(doc)
	if err != nil {
		return domain.CacheKey{}, false
	}
	salt := xxhash.Sum64String(Name + ":" + strconv.FormatUint(sfp, 16))
	return domain.CacheKey{Schema: salt, Data: dfp}, true
}

// normalize round-trips v through encoding/json so the validator only sees
// map[string]any, []any, string, bool, nil and json.Number.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// depthErrors reports one DEPTH_EXCEEDED per branch nested deeper than the limit.
func (v *Validator) depthErrors(doc any, path domain.Path, depth int) domain.Errors {
	if depth > v.maxDepth {
		e := domain.NewValidationError(v.catalog, catalog.DepthExceeded, path, v.maxDepth)
		return domain.Errors{e}
	}

	var errs domain.Errors
	switch t := doc.(type) {
	case map[string]any:
		for k, child := range t {
			errs = append(errs, v.depthErrors(child, path.Append(domain.Key(k)), depth+1)...)
		}
	case []any:
		for i, child := range t {
			errs = append(errs, v.depthErrors(child, path.Append(domain.Index(i)), depth+1)...)
		}
	}
	return errs
}

// height is the nesting depth below doc.
func height(doc any) int {
	h := 0
	switch t := doc.(type) {
	case map[string]any:
		for _, child := range t {
			h = max(h, height(child)+1)
		}
	case []any:
		for _, child := range t {
			h = max(h, height(child)+1)
		}
	}
	return h
}
