package domain

import "errors"

// ErrNilSchema is returned when a validator is handed a nil schema.
var ErrNilSchema = errors.New("schema is nil")

// ErrNilCatalog is returned when a validator is built without a message catalog.
var ErrNilCatalog = errors.New("message catalog is nil")
