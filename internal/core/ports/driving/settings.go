package driving

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, with environment fallbacks applied.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// SetProvider updates the settings of one service.
	// Empty fields leave the stored value unchanged.
	SetProvider(settings domain.ProviderSettings) error

	// SetPointStore selects the point store backend.
	SetPointStore(settings domain.PointStoreSettings) error

	// ValidateProvider pings a service with its current settings.
	ValidateProvider(ctx context.Context, service domain.Service) error
}
