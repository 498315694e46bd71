package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Ready          bool   `json:"ready"`
	RepositoryType string `json:"repository_type"`
	Repository     any    `json:"repository,omitempty"`
	SeedSections   int    `json:"seed_sections"`
	Metrics        bool   `json:"metrics"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ServiceState{
		Ready:          s.ready,
		RepositoryType: "unknown",
		SeedSections:   len(s.seed.order),
		Metrics:        s.metrics != nil,
	}
	if comp, ok := s.repo.(introspection.Component); ok {
		state.RepositoryType = comp.ComponentType()
	}
	if in, ok := s.repo.(introspection.Introspectable); ok {
		state.Repository = in.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
