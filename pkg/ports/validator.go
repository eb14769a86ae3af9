package ports

import (
	"context"

	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
)

// SchemaValidator checks schemas for well-formedness and data against schemas.
//
// Data mismatches are always reported through the returned domain.Errors, never
// through the error result. The error result is reserved for programmer errors
// (domain.ErrNilSchema) and infrastructure failures such as an unreachable
// cache backend.
type SchemaValidator interface {
	// ValidateSchema reports every well-formedness problem of s. Paths address
	// the schema document and are prefixed by path. Returns no errors for a
	// well-formed schema.
	ValidateSchema(s *schema.Schema, path domain.Path) (domain.Errors, error)

	// ValidateData validates data against s. Reported paths are prefixed by
	// path; a nil path means the data is the document root.
	ValidateData(ctx context.Context, data any, s *schema.Schema, path domain.Path) (domain.Errors, error)

	// Validate validates the value of one property of a parent node. s is the
	// parent schema and property identifies the child (an object key or an
	// array index); the child schema is looked up from s. Errors are reported
	// under path + property.
	Validate(ctx context.Context, s *schema.Schema, property domain.Segment, data any, path domain.Path) (domain.Errors, error)
}
