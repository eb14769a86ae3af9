package schemata_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/schemata"
	"github.com/aretw0/schemata/internal/logging"
	"github.com/aretw0/schemata/internal/testutils"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invalidPerson() map[string]any {
	return map[string]any{
		"name":  "bob",
		"age":   -3,
		"tags":  []any{"a", 1},
		"extra": "x",
	}
}

func TestValidator_Engines(t *testing.T) {
	for _, kind := range []schemata.EngineKind{schemata.EngineNative, schemata.EngineJSONSchema} {
		t.Run(string(kind), func(t *testing.T) {
			v, err := schemata.New(schemata.WithEngine(kind))
			require.NoError(t, err)
			assert.Equal(t, kind, v.Engine())

			errs, err := v.ValidateData(context.Background(), invalidPerson(), testutils.Person(), nil)
			require.NoError(t, err)

			assert.Equal(t, []string{"$.age", "$.email", "$.extra", "$.name", "$.tags[1]"}, testutils.Paths(errs))
			testutils.RequireCodes(t, errs,
				catalog.ConstraintViolation,
				catalog.MissingRequired,
				catalog.UnexpectedProperty,
				catalog.ConstraintViolation,
				catalog.TypeMismatch,
			)
		})
	}
}

func TestValidator_UnknownEngine(t *testing.T) {
	_, err := schemata.New(schemata.WithEngine("xml"))
	assert.ErrorContains(t, err, `unknown engine "xml"`)
}

func TestValidator_Check(t *testing.T) {
	v, err := schemata.New()
	require.NoError(t, err)

	err = v.Check(context.Background(), invalidPerson(), testutils.Person())
	require.Error(t, err)
	errs, ok := domain.AsErrors(err)
	require.True(t, ok)
	assert.Len(t, errs, 5)

	valid := map[string]any{"name": "Ada", "email": "ada@example.com"}
	assert.NoError(t, v.Check(context.Background(), valid, testutils.Person()))
}

func TestValidator_Options(t *testing.T) {
	cache := memory.NewCache()
	cat := catalog.Default().With(map[catalog.Code]string{
		catalog.MissingRequired: "falta %s",
	})

	v, err := schemata.New(
		schemata.WithCache(cache),
		schemata.WithCatalog(cat),
		schemata.WithMaxDepth(1),
	)
	require.NoError(t, err)

	errs, err := v.ValidateData(context.Background(), map[string]any{}, testutils.Person(), nil)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "falta email", errs[0].Message)
	assert.Positive(t, cache.Stats().Puts)

	deep := map[string]any{"name": "Ada", "email": "a@b", "tags": []any{"x"}}
	errs, err = v.ValidateData(context.Background(), deep, testutils.Person(), nil)
	require.NoError(t, err)
	testutils.RequireCodes(t, errs, catalog.DepthExceeded)
	assert.Equal(t, "$.tags[0]", errs[0].Path.String())
}

func TestValidator_ValidateProperty(t *testing.T) {
	v, err := schemata.New()
	require.NoError(t, err)

	errs, err := v.Validate(context.Background(), testutils.Person(), domain.Key("name"), "", domain.Path{domain.Key("people"), domain.Index(0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"$.people[0].name", "$.people[0].name"}, testutils.Paths(errs))
}

func TestValidator_ValidateSchema(t *testing.T) {
	v, err := schemata.New()
	require.NoError(t, err)

	s := schema.String(schema.MinLength(5), schema.MaxLength(2))
	errs, err := v.ValidateSchema(s, nil)
	require.NoError(t, err)
	testutils.RequireCodes(t, errs, catalog.MalformedSchema)
	assert.Equal(t, "$.minLength", errs[0].Path.String())
}

func TestValidator_CloseWithoutResources(t *testing.T) {
	v, err := schemata.New()
	require.NoError(t, err)
	assert.NoError(t, v.Close())
}

func TestValidator_LogsEngineOnce(t *testing.T) {
	for _, kind := range []schemata.EngineKind{schemata.EngineNative, schemata.EngineJSONSchema} {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			v, err := schemata.New(
				schemata.WithEngine(kind),
				schemata.WithLogger(logging.NewJSON(&buf, slog.LevelDebug)),
			)
			require.NoError(t, err)

			_, err = v.ValidateData(context.Background(), invalidPerson(), testutils.Person(), nil)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.NotEmpty(t, lines[0], "expected at least one debug record")
			for _, line := range lines {
				assert.Equal(t, 1, strings.Count(line, `"engine":`), line)

				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &rec))
				assert.Equal(t, string(kind), rec["engine"])
			}
		})
	}
}
