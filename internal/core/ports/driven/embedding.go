// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text for one model.
//
// Implementations include:
//   - Sentence Transformers (via a text-embeddings-inference server)
//   - OpenAI (text-embedding-ada-002, text-embedding-3-small)
//   - Cohere (embed-english-v3.0)
//   - Google Generative AI (embedding-001)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Output order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Embedder embeds texts with any configured service and model.
// One vector per input text, order-preserving. Failures wrap
// domain.ErrProviderFailure.
type Embedder interface {
	Embed(ctx context.Context, texts []string, service domain.Service, model string) ([][]float32, error)
}

// EmbeddingServiceFactory creates a client for one service and model.
type EmbeddingServiceFactory func(settings domain.ProviderSettings, model string) (EmbeddingService, error)

// ProviderValidator checks that a service configuration works.
type ProviderValidator interface {
	// ValidateProvider creates a client and pings it.
	ValidateProvider(ctx context.Context, settings domain.ProviderSettings) error
}
