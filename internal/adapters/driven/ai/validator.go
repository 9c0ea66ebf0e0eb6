package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.ProviderValidator = (*ConfigValidator)(nil)

// ConfigValidator validates embedding service configurations.
type ConfigValidator struct {
	factory driven.EmbeddingServiceFactory
}

// NewConfigValidator creates a validator using CreateEmbeddingService.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{factory: CreateEmbeddingService}
}

// NewConfigValidatorWithFactory creates a validator with a custom factory.
func NewConfigValidatorWithFactory(factory driven.EmbeddingServiceFactory) *ConfigValidator {
	return &ConfigValidator{factory: factory}
}

// ValidateProvider creates a client for settings and pings it.
func (v *ConfigValidator) ValidateProvider(ctx context.Context, settings domain.ProviderSettings) error {
	svc, err := v.factory(settings, settings.Model)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, settings.Service, err)
	}
	return nil
}
