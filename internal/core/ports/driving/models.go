package driving

import "github.com/custodia-labs/playground/internal/core/domain"

// ModelInfo describes an embedding service offered to playgrounds.
type ModelInfo struct {
	Service        domain.Service
	DisplayName    string
	Model          string
	Dimensions     int
	RequiresAPIKey bool

	// Configured is true when the service has every required setting.
	Configured bool
}

// ModelCatalog lists the embedding services and their models.
type ModelCatalog interface {
	// Models returns every service in display order.
	Models() ([]ModelInfo, error)
}
