package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/require"
)

// WriteFile creates name with content inside a fresh temp dir and returns its
// absolute path. It fails the test immediately on error.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	absDir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	path := filepath.Join(absDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	return path
}

// Person is a small closed object schema used across validator tests:
//
//	name  string, required, 1..20 runes, capitalized
//	age   integer, 0..150
//	email string, required, must contain @
//	tags  array of strings, at most 3
//	role  enum admin|user
func Person() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name":  schema.String(schema.MinLength(1), schema.MaxLength(20), schema.Pattern(`^[A-Z]`)),
		"age":   schema.Integer(schema.Minimum(0), schema.Maximum(150)),
		"email": schema.String(schema.Pattern(`@`)),
		"tags":  schema.Array(schema.String(), schema.MaxItems(3)),
		"role":  schema.Enum("admin", "user"),
	}, schema.Required("name", "email"), schema.Closed())
}

// Paths renders the path of every error, in order.
func Paths(errs domain.Errors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Path.String()
	}
	return out
}

// RequireCodes asserts errs carries exactly codes, in order.
func RequireCodes(t *testing.T, errs domain.Errors, codes ...catalog.Code) {
	t.Helper()
	if len(codes) == 0 {
		require.Empty(t, errs, "expected no errors")
		return
	}
	require.Equal(t, codes, errs.Codes(), "unexpected error codes:\n%v", errs)
}
