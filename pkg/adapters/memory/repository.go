// Package memory implements core.Repository with a process-lifetime catalog.
// Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/manual/pkg/core"
)

// Repository keeps the catalog in memory.
type Repository struct {
	mu          sync.RWMutex
	catalog     core.Catalog
	initialized bool
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{catalog: core.NewCatalog()}
}

// Initialize copies seed into the repository the first time it is called.
func (r *Repository) Initialize(ctx context.Context, seed core.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	for _, section := range seed.Sections() {
		r.catalog.AddSection(section)
		for _, e := range seed.Entries(section) {
			if e.ID == "" {
				e.ID = core.NewEntryID()
			}
			r.catalog.Append(e)
		}
	}
	r.initialized = true
	return nil
}

// LoadAll returns a copy of the catalog.
func (r *Repository) LoadAll(ctx context.Context) (core.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Clone(), nil
}

// Section returns a copy of a section's entries.
func (r *Repository) Section(ctx context.Context, section core.Section) ([]core.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Entries(section), nil
}

// Insert appends an entry.
func (r *Repository) Insert(ctx context.Context, e core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// An insert before Initialize counts as the first write; no seed afterwards.
	r.initialized = true
	r.catalog.Append(e)
	return nil
}

// Update replaces an entry in place.
func (r *Repository) Update(ctx context.Context, e core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.catalog.Replace(e) {
		return core.NotFound(e.Section, e.ID)
	}
	return nil
}

// Delete removes an entry.
func (r *Repository) Delete(ctx context.Context, section core.Section, id core.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.catalog.Remove(section, id) {
		return core.NotFound(section, id)
	}
	return nil
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Sections int `json:"sections"`
	Entries  int `json:"entries"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{
		Sections: len(r.catalog.Sections()),
		Entries:  r.catalog.Len(),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
