package schema

import "errors"

// ErrCyclic is returned when a schema tree references one of its own ancestors.
var ErrCyclic = errors.New("schema contains a cycle")

// ErrUnknownType is returned when a schema node cannot be exported because its type is unknown.
var ErrUnknownType = errors.New("unknown schema type")

// ErrUnsupportedFormat is returned by Parse for document formats other than YAML and JSON.
var ErrUnsupportedFormat = errors.New("unsupported schema format")
