// Package registry keeps named schemas so callers can validate by name.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/schema"
)

// ErrNotFound is returned when no schema is registered under a name.
var ErrNotFound = errors.New("schema not found")

// Registry manages the available schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Schema
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds a schema to the registry.
// If a schema with the same name exists, it is overwritten.
func (r *Registry) Register(name string, s *schema.Schema) error {
	if s == nil {
		return fmt.Errorf("register %s: %w", name, domain.ErrNilSchema)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = s
	return nil
}

// Get looks up a schema by name.
func (r *Registry) Get(name string) (*schema.Schema, error) {
	r.mu.RLock()
	s, ok := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// Names lists the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadDir registers every .yaml, .yml and .json file in dir under its base
// name without extension. Subdirectories are not visited.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read schema dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		s, err := schema.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := r.Register(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())), s); err != nil {
			return err
		}
	}
	return nil
}

// Validate looks up name and validates data against it from the document root.
func (r *Registry) Validate(ctx context.Context, v ports.SchemaValidator, name string, data any) (domain.Errors, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return v.ValidateData(ctx, data, s, nil)
}
