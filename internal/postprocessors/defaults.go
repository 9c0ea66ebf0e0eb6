package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// NewChunkerPipeline returns the chunker-only pipeline for settings.
func NewChunkerPipeline(settings domain.ChunkerSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(domain.PipelineConfigFor(settings))
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): characters per chunk (default: 1000)
//   - overlap (int): characters shared by adjacent chunks (default: 0)
//   - separators ([]string): split priority, coarsest first
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	size := chunker.DefaultChunkSize
	if v, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		if v <= 0 {
			return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidInput, v)
		}
		size = v
		opts = append(opts, chunker.WithChunkSize(v))
	}
	if v, ok := getIntFromConfig(cfg, "overlap"); ok {
		if v < 0 || v >= size {
			return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, size, v)
		}
		opts = append(opts, chunker.WithOverlap(v))
	}
	if seps := getStringsFromConfig(cfg, "separators"); len(seps) > 0 {
		opts = append(opts, chunker.WithSeparators(seps...))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func getStringsFromConfig(cfg map[string]any, key string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
