package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/schemata/internal/runtime"
	"github.com/aretw0/schemata/internal/testutils"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPerson() map[string]any {
	return map[string]any{
		"name":  "Ada",
		"age":   36,
		"email": "ada@example.com",
		"tags":  []any{"math"},
		"role":  "admin",
	}
}

func TestEngine_ValidData(t *testing.T) {
	engine := runtime.NewEngine()

	errs, err := engine.ValidateData(context.Background(), validPerson(), testutils.Person(), nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestEngine_ReportsEveryViolation(t *testing.T) {
	engine := runtime.NewEngine()
	data := map[string]any{
		"name":  "bob",
		"age":   200,
		"email": "nowhere",
		"tags":  []any{"a", "b", "c", "d"},
		"role":  "root",
		"extra": true,
	}

	errs, err := engine.ValidateData(context.Background(), data, testutils.Person(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"$.age", "$.email", "$.extra", "$.name", "$.role", "$.tags"}, testutils.Paths(errs))
	testutils.RequireCodes(t, errs,
		catalog.ConstraintViolation,
		catalog.ConstraintViolation,
		catalog.UnexpectedProperty,
		catalog.ConstraintViolation,
		catalog.ConstraintViolation,
		catalog.ConstraintViolation,
	)

	keywords := make([]string, len(errs))
	for i, e := range errs {
		keywords[i] = e.Keyword
	}
	assert.Equal(t, []string{"maximum", "pattern", "additionalProperties", "pattern", "enum", "maxItems"}, keywords)
	assert.Equal(t, "property \"extra\" is not allowed", errs[2].Message)
}

func TestEngine_ScalarTypes(t *testing.T) {
	tests := []struct {
		name   string
		schema *schema.Schema
		data   any
		codes  []catalog.Code
	}{
		{"string ok", schema.String(), "x", nil},
		{"string mismatch", schema.String(), 1, []catalog.Code{catalog.TypeMismatch}},
		{"integer accepts whole float", schema.Integer(), 3.0, nil},
		{"integer rejects fraction", schema.Integer(), 3.5, []catalog.Code{catalog.TypeMismatch}},
		{"number accepts int64", schema.Number(), int64(7), nil},
		{"number rejects string", schema.Number(), "7", []catalog.Code{catalog.TypeMismatch}},
		{"boolean ok", schema.Boolean(), false, nil},
		{"boolean mismatch", schema.Boolean(), "false", []catalog.Code{catalog.TypeMismatch}},
		{"null ok", schema.Null(), nil, nil},
		{"null mismatch", schema.Null(), 0, []catalog.Code{catalog.TypeMismatch}},
		{"length counts runes", schema.String(schema.MaxLength(3)), "héé", nil},
		{"min and max length", schema.String(schema.MinLength(2), schema.MaxLength(1)), "x", []catalog.Code{catalog.ConstraintViolation}},
		{"minimum", schema.Number(schema.Minimum(1)), 0.5, []catalog.Code{catalog.ConstraintViolation}},
		{"enum constraint on string", schema.String(schema.OneOfValues("a", "b")), "c", []catalog.Code{catalog.ConstraintViolation}},
		{"mismatch skips constraints", schema.String(schema.MinLength(5), schema.Pattern("^x")), 12, []catalog.Code{catalog.TypeMismatch}},
		{"invalid pattern", schema.String(schema.Pattern("(")), "x", []catalog.Code{catalog.MalformedSchema}},
	}

	engine := runtime.NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := engine.ValidateData(context.Background(), tt.data, tt.schema, nil)
			require.NoError(t, err)
			testutils.RequireCodes(t, errs, tt.codes...)
		})
	}
}

func TestEngine_TypeMismatchMessage(t *testing.T) {
	engine := runtime.NewEngine()

	errs, err := engine.ValidateData(context.Background(), []any{1}, schema.Object(nil), nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "expected object, got array", errs[0].Message)
	assert.Equal(t, "type", errs[0].Keyword)
	assert.Equal(t, "$", errs[0].Path.String())
}

func TestEngine_NestedPath(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{
		"a": schema.Object(map[string]*schema.Schema{
			"b": schema.String(),
		}),
	})

	errs, err := engine.ValidateData(context.Background(), map[string]any{"a": map[string]any{"b": 1}}, s, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, catalog.TypeMismatch, errs[0].Code)
	assert.Equal(t, domain.Path{domain.Key("a"), domain.Key("b")}, errs[0].Path)
	assert.Equal(t, "expected string, got number", errs[0].Message)
}

func TestEngine_MissingRequired(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{
		"x": schema.Integer(),
		"y": schema.Integer(),
	}, schema.Required("x", "y", "y"))

	errs, err := engine.ValidateData(context.Background(), map[string]any{"x": 1}, s, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, catalog.MissingRequired, errs[0].Code)
	assert.Equal(t, "$.y", errs[0].Path.String())
	assert.Equal(t, []any{"y"}, errs[0].Args)
	assert.Equal(t, `required property "y" is missing`, errs[0].Message)
}

func TestEngine_NullSatisfiesRequired(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{
		"x": schema.Null(),
	}, schema.Required("x"))

	errs, err := engine.ValidateData(context.Background(), map[string]any{"x": nil}, s, nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestEngine_OpenObjectIgnoresUnknownKeys(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{"a": schema.String()})

	errs, err := engine.ValidateData(context.Background(), map[string]any{"a": "x", "b": 1}, s, nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestEngine_Arrays(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Array(schema.Integer(), schema.MinItems(4))

	errs, err := engine.ValidateData(context.Background(), []any{1, "two", 3}, s, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"$", "$[1]"}, testutils.Paths(errs))
	testutils.RequireCodes(t, errs, catalog.ConstraintViolation, catalog.TypeMismatch)
	assert.Equal(t, "minItems", errs[0].Keyword)
}

func TestEngine_TypedGoValues(t *testing.T) {
	engine := runtime.NewEngine()
	data := map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
		"age":   uint8(36),
		"tags":  []string{"a", "b", "c", "d"},
	}

	errs, err := engine.ValidateData(context.Background(), data, testutils.Person(), nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "$.tags", errs[0].Path.String())

	type label string
	yes, word, n := true, "abc", 7
	var nilWord *string

	tests := []struct {
		name     string
		schema   *schema.Schema
		data     any
		wantCode []catalog.Code
		wantMsg  string
	}{
		{name: "Pointer Bool In Enum", schema: schema.Boolean(schema.OneOfValues(true)), data: &yes},
		{name: "Pointer String", schema: schema.String(), data: &word},
		{name: "Pointer String Enum", schema: schema.String(schema.OneOfValues("abc")), data: &word},
		{name: "Named String", schema: schema.String(schema.Pattern(`^[a-z]+$`)), data: label("abc")},
		{name: "Pointer Integer", schema: schema.Integer(schema.Maximum(10)), data: &n},
		{name: "Nil Pointer Is Null", schema: schema.Null(), data: nilWord},
		{
			name:     "Nil Pointer Is Not A String",
			schema:   schema.String(),
			data:     nilWord,
			wantCode: []catalog.Code{catalog.TypeMismatch},
			wantMsg:  "expected string, got null",
		},
		{
			name:     "Json Number Is Not A String",
			schema:   schema.String(),
			data:     json.Number("5"),
			wantCode: []catalog.Code{catalog.TypeMismatch},
			wantMsg:  "expected string, got number",
		},
		{name: "Nil Slice Is Null", schema: schema.Null(), data: []string(nil)},
		{name: "Nil Map Is Null", schema: schema.Null(), data: map[string]int(nil)},
		{
			name:     "Nil Slice Is Not An Array",
			schema:   schema.Array(schema.String()),
			data:     []string(nil),
			wantCode: []catalog.Code{catalog.TypeMismatch},
			wantMsg:  "expected array, got null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := runtime.NewEngine().ValidateData(context.Background(), tt.data, tt.schema, nil)
			require.NoError(t, err)
			testutils.RequireCodes(t, errs, tt.wantCode...)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errs[0].Message)
			}
		})
	}
}

func TestEngine_Enum(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Enum("a", 1, map[string]any{"k": []any{true}})

	for _, ok := range []any{"a", float64(1), int32(1), map[string]any{"k": []any{true}}} {
		errs, err := engine.ValidateData(context.Background(), ok, s, nil)
		require.NoError(t, err)
		assert.Empty(t, errs, "%v should be accepted", ok)
	}

	errs, err := engine.ValidateData(context.Background(), "b", s, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, catalog.ConstraintViolation, errs[0].Code)
	assert.Equal(t, "enum", errs[0].Keyword)
}

func TestEngine_OneOf(t *testing.T) {
	engine := runtime.NewEngine()

	t.Run("Exactly One", func(t *testing.T) {
		errs, err := engine.ValidateData(context.Background(), "x", schema.OneOf(schema.String(), schema.Integer()), nil)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("None Is One Aggregate Error", func(t *testing.T) {
		s := schema.OneOf(schema.String(), schema.Integer(), schema.Boolean())
		errs, err := engine.ValidateData(context.Background(), 1.5, s, nil)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "oneOf", errs[0].Keyword)
		assert.Equal(t, 0, errs[0].Args[2])
	})

	t.Run("Several Is One Aggregate Error", func(t *testing.T) {
		s := schema.OneOf(schema.Number(), schema.Integer())
		errs, err := engine.ValidateData(context.Background(), 1, s, nil)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, 2, errs[0].Args[2])
	})
}

func TestEngine_UnknownTypeKeepsSiblings(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{
		"a": {Type: "bogus"},
		"b": schema.Integer(),
	})

	errs, err := engine.ValidateData(context.Background(), map[string]any{"a": 1, "b": "x"}, s, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"$.a", "$.b"}, testutils.Paths(errs))
	testutils.RequireCodes(t, errs, catalog.UnknownType, catalog.TypeMismatch)
	assert.Equal(t, `unknown schema type "bogus"`, errs[0].Message)
}

func TestEngine_DefaultMessage(t *testing.T) {
	engine := runtime.NewEngine(runtime.WithCatalog(catalog.Table{
		catalog.TypeMismatch: "wrong type",
	}))
	s := schema.Object(map[string]*schema.Schema{"x": schema.String()}, schema.Required("x"))

	errs, err := engine.ValidateData(context.Background(), map[string]any{}, s, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, catalog.MissingRequired, errs[0].Code)
	assert.Equal(t, catalog.DefaultMessage, errs[0].Message)
}

func TestEngine_MessageKeepsPercentInData(t *testing.T) {
	engine := runtime.NewEngine()
	s := schema.Object(map[string]*schema.Schema{"c": schema.String(schema.Pattern(`^[a-z]+$`))})

	errs, err := engine.ValidateData(context.Background(), map[string]any{"c": "50%!"}, s, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "$.c", errs[0].Path.String())
	assert.Equal(t, "value 50%! violates pattern constraint ^[a-z]+$", errs[0].Message)
}

func TestEngine_PathPrefix(t *testing.T) {
	engine := runtime.NewEngine()
	prefix := domain.Path{domain.Key("body"), domain.Index(2)}

	errs, err := engine.ValidateData(context.Background(), map[string]any{"x": 1}, schema.Object(nil, schema.Closed()), prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"$.body[2].x"}, testutils.Paths(errs))
}

func TestEngine_Validate(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()

	t.Run("Declared Property", func(t *testing.T) {
		errs, err := engine.Validate(ctx, testutils.Person(), domain.Key("age"), 200, domain.Path{domain.Key("user")})
		require.NoError(t, err)
		assert.Equal(t, []string{"$.user.age"}, testutils.Paths(errs))
	})

	t.Run("Undeclared On Closed Object", func(t *testing.T) {
		errs, err := engine.Validate(ctx, testutils.Person(), domain.Key("nope"), 1, nil)
		require.NoError(t, err)
		testutils.RequireCodes(t, errs, catalog.UnexpectedProperty)
		assert.Equal(t, "$.nope", errs[0].Path.String())
	})

	t.Run("Undeclared On Open Object", func(t *testing.T) {
		errs, err := engine.Validate(ctx, schema.Object(nil), domain.Key("nope"), 1, nil)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("Array Element", func(t *testing.T) {
		errs, err := engine.Validate(ctx, schema.Array(schema.Integer()), domain.Index(2), "x", domain.Path{domain.Key("list")})
		require.NoError(t, err)
		assert.Equal(t, []string{"$.list[2]"}, testutils.Paths(errs))
	})
}

func TestEngine_NilSchema(t *testing.T) {
	engine := runtime.NewEngine()

	_, err := engine.ValidateData(context.Background(), 1, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNilSchema)

	_, err = engine.Validate(context.Background(), nil, domain.Key("a"), 1, nil)
	assert.ErrorIs(t, err, domain.ErrNilSchema)
}

func TestEngine_ValidateSchema(t *testing.T) {
	engine := runtime.NewEngine()

	errs, err := engine.ValidateSchema(&schema.Schema{Type: "bogus"}, nil)
	require.NoError(t, err)
	testutils.RequireCodes(t, errs, catalog.UnknownType)
	assert.Equal(t, "$.type", errs[0].Path.String())

	errs, err = engine.ValidateSchema(testutils.Person(), nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestEngine_Canceled(t *testing.T) {
	engine := runtime.NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ValidateData(ctx, validPerson(), testutils.Person(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	engine := runtime.NewEngine(runtime.WithMetrics(m))
	_, err = engine.ValidateData(context.Background(), map[string]any{"x": 1}, schema.Object(nil, schema.Closed()), nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues(runtime.Name, observability.OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("UNEXPECTED_PROPERTY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheHits))
}

type failingCache struct{ err error }

func (f failingCache) Get(context.Context, domain.CacheKey) (domain.CacheEntry, bool, error) {
	return domain.CacheEntry{}, false, f.err
}

func (f failingCache) Put(context.Context, domain.CacheKey, domain.CacheEntry) error {
	return f.err
}

func TestEngine_CacheFailure(t *testing.T) {
	boom := errors.New("backend down")
	engine := runtime.NewEngine(runtime.WithCache(failingCache{err: boom}))

	errs, err := engine.ValidateData(context.Background(), validPerson(), testutils.Person(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, errs)
}
