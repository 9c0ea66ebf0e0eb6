package services

import (
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// Ensure ModelCatalog implements the interface.
var _ driving.ModelCatalog = (*ModelCatalog)(nil)

// ModelCatalog lists the embedding services with their effective models.
type ModelCatalog struct {
	settings driving.SettingsService
}

// NewModelCatalog creates a model catalog.
func NewModelCatalog(settings driving.SettingsService) *ModelCatalog {
	return &ModelCatalog{settings: settings}
}

// Models returns every service in display order. A model override from
// settings replaces the service default.
func (c *ModelCatalog) Models() ([]driving.ModelInfo, error) {
	settings, err := c.settings.Get()
	if err != nil {
		return nil, err
	}

	services := domain.AllServices()
	models := make([]driving.ModelInfo, 0, len(services))
	for _, svc := range services {
		spec := svc.Spec()
		p := settings.Provider(svc)
		models = append(models, driving.ModelInfo{
			Service:        svc,
			DisplayName:    spec.DisplayName,
			Model:          svc.ResolveModel(p.Model),
			Dimensions:     spec.Dimensions,
			RequiresAPIKey: spec.RequiresAPIKey,
			Configured:     p.IsConfigured(),
		})
	}
	return models, nil
}
