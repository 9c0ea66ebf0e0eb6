// Package sentencetransformers provides an embedding service adapter for a
// sentence-transformers model served by text-embeddings-inference.
package sentencetransformers

import (
	"context"
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
	DefaultBaseURL = "http://localhost:8080"
	DefaultModel   = "all-MiniLM-L6-v2"
	DefaultTimeout = 30 * time.Second
)

// maxBatch is the number of texts sent per request.
var maxBatch = domain.ServiceSentenceTransformers.Spec().MaxBatch

var modelDimensions = map[string]int{
	"all-MiniLM-L6-v2":          384,
	"all-MiniLM-L12-v2":         384,
	"all-mpnet-base-v2":         768,
	"multi-qa-MiniLM-L6-cos-v1": 384,
}

// Config holds configuration for the sentence-transformers service.
type Config struct {
	// BaseURL is the inference server URL (default: http://localhost:8080).
	BaseURL string

	// Model is the model the server was started with. It is reported, not sent.
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings through a text-embeddings-inference server.
type EmbeddingService struct {
	api     *apiclient.Client
	baseURL string
	model   string
}

type embedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// NewEmbeddingService creates a new sentence-transformers embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
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
		api:     apiclient.New("sentence-transformers", cfg.Timeout, nil),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
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
		var resp [][]float32
		req := embedRequest{Inputs: batch, Normalize: true, Truncate: true}
		if err := s.api.PostJSON(ctx, s.baseURL+"/embed", req, &resp); err != nil {
			return nil, err
		}
		if len(resp) != len(batch) {
			return nil, apiclient.CountMismatch("sentence-transformers", len(batch), len(resp))
		}
		out = append(out, resp...)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	if d, ok := modelDimensions[s.model]; ok {
		return d
	}
	return domain.ServiceSentenceTransformers.Spec().Dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server's /health endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, s.baseURL+"/health")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
