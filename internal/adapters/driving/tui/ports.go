// Package tui provides an interactive terminal user interface for exploring
// playground maps. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Playgrounds lists playgrounds and serves their points and chunks.
	Playgrounds driving.PlaygroundService

	// Queries runs queries against a playground.
	Queries driving.QueryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(playgrounds driving.PlaygroundService, queries driving.QueryService) *Ports {
	return &Ports{
		Playgrounds: playgrounds,
		Queries:     queries,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Playgrounds == nil {
		return ErrMissingPlaygroundService
	}
	if p.Queries == nil {
		return ErrMissingQueryService
	}
	return nil
}
