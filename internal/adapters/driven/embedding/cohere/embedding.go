// Package cohere provides an embedding service adapter using the Cohere API.
package cohere

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/apiclient"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com/v1"
	DefaultModel   = "embed-english-v3.0"
	DefaultTimeout = 60 * time.Second

	// InputType tags texts for the v3 models.
	InputType = "search_document"
)

// maxBatch is the number of texts sent per request.
var maxBatch = domain.ServiceCohere.Spec().MaxBatch

var modelDimensions = map[string]int{
	"embed-english-v3.0":            1024,
	"embed-multilingual-v3.0":       1024,
	"embed-english-light-v3.0":      384,
	"embed-multilingual-light-v3.0": 384,
}

// Config holds configuration for the Cohere embedding service.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.com/v1).
	BaseURL string

	// Model is the embedding model (default: embed-english-v3.0).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using Cohere.
type EmbeddingService struct {
	api     *apiclient.Client
	baseURL string
	model   string
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
	Truncate  string   `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService creates a new Cohere embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: %w: API key is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EmbeddingService{
		api: apiclient.New("cohere", cfg.Timeout, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
			"Accept":        "application/json",
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}, nil
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
		req := embedRequest{Texts: batch, Model: s.model, InputType: InputType, Truncate: "END"}
		var resp embedResponse
		if err := s.api.PostJSON(ctx, s.baseURL+"/embed", req, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, apiclient.CountMismatch("cohere", len(batch), len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			out = append(out, apiclient.ToFloat32(e))
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	if d, ok := modelDimensions[s.model]; ok {
		return d
	}
	return domain.ServiceCohere.Spec().Dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key against the /models endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, s.baseURL+"/models?endpoint=embed")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
