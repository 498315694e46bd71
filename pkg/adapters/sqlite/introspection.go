package sqlite

import (
	"slices"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path       string   `json:"path"`
	Ready      bool     `json:"ready"`
	Migrations []string `json:"applied_migrations,omitempty"`
	OpenConns  int      `json:"open_connections"`
	InUse      int      `json:"in_use"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	stats := r.db.Stats()
	return RepositoryState{
		Path:       r.Path,
		Ready:      r.ready,
		Migrations: slices.Clone(r.migrations),
		OpenConns:  stats.OpenConnections,
		InUse:      stats.InUse,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
