// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/cohere"
	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/google"
	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/sentencetransformers"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure CreateEmbeddingService satisfies the factory type.
var _ driven.EmbeddingServiceFactory = CreateEmbeddingService

// CreateEmbeddingService creates a client for settings.Service using model.
// An empty model selects the service default.
func CreateEmbeddingService(settings domain.ProviderSettings, model string) (driven.EmbeddingService, error) {
	if !settings.Service.IsValid() {
		return nil, fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, settings.Service)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s is not configured. Run 'playground settings set-key %s' to fix",
			domain.ErrEmbeddingUnavailable, settings.Service, settings.Service)
	}

	model = settings.Service.ResolveModel(firstNonEmpty(model, settings.Model))
	baseURL := firstNonEmpty(settings.BaseURL, settings.Service.Spec().DefaultBaseURL)

	switch settings.Service {
	case domain.ServiceSentenceTransformers:
		return sentencetransformers.NewEmbeddingService(sentencetransformers.Config{
			BaseURL: baseURL,
			Model:   model,
		}), nil

	case domain.ServiceOpenAI:
		return nonNil(openai.NewEmbeddingService(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		}))

	case domain.ServiceCohere:
		return nonNil(cohere.NewEmbeddingService(cohere.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		}))

	case domain.ServiceGoogle:
		return nonNil(google.NewEmbeddingService(context.Background(), google.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
		}))

	case domain.ServiceOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    baseURL,
			Model:      model,
			Dimensions: settings.Service.Spec().Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, settings.Service)
	}
}

// nonNil converts a constructor result so a failed construction yields a
// nil interface rather than a typed nil pointer.
func nonNil[T driven.EmbeddingService](svc T, err error) (driven.EmbeddingService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
