// Package google provides an embedding service adapter using the Google
// Generative Language API.
package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/apiclient"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel   = "models/embedding-001"
	DefaultTimeout = 60 * time.Second
)

// maxBatch is the number of texts sent per request.
var maxBatch = domain.ServiceGoogle.Spec().MaxBatch

var modelDimensions = map[string]int{
	"models/embedding-001":      768,
	"models/text-embedding-004": 768,
}

// Config holds configuration for the Google embedding service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model (default: models/embedding-001).
	// The "models/" prefix is added when missing.
	Model string

	// Timeout bounds each call (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using Google Generative AI.
type EmbeddingService struct {
	svc     *generativelanguage.Service
	model   string
	timeout time.Duration
}

// NewEmbeddingService creates a new Google embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: %w: API key is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if !strings.HasPrefix(cfg.Model, "models/") {
		cfg.Model = "models/" + cfg.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: %w: %w", domain.ErrProviderFailure, err)
	}

	return &EmbeddingService{svc: svc, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range apiclient.Batches(texts, maxBatch) {
		vecs, err := s.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reqs := make([]*generativelanguage.EmbedContentRequest, len(texts))
	for i, text := range texts {
		reqs[i] = &generativelanguage.EmbedContentRequest{
			Model:    s.model,
			TaskType: "RETRIEVAL_DOCUMENT",
			Content: &generativelanguage.Content{
				Parts: []*generativelanguage.Part{{Text: text}},
			},
		}
	}

	resp, err := s.svc.Models.BatchEmbedContents(s.model, &generativelanguage.BatchEmbedContentsRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: %w: %w", domain.ErrProviderFailure, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, apiclient.CountMismatch("google", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("google: %w: missing embedding %d", domain.ErrProviderFailure, i)
		}
		out[i] = apiclient.ToFloat32(e.Values)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	if d, ok := modelDimensions[s.model]; ok {
		return d
	}
	return domain.ServiceGoogle.Spec().Dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model description, which validates the key.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("google: %w: %w", domain.ErrProviderFailure, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
