package mcp

import (
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Playgrounds manages playgrounds and their points.
	Playgrounds driving.PlaygroundService

	// Queries runs similarity queries.
	Queries driving.QueryService

	// Documents manages uploaded documents.
	Documents driving.DocumentService

	// Models lists embedding services.
	Models driving.ModelCatalog
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Playgrounds == nil {
		return ErrMissingPlaygroundService
	}
	if p.Queries == nil {
		return ErrMissingQueryService
	}
	// Documents and Models are optional.
	return nil
}
