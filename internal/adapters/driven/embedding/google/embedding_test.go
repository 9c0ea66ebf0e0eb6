package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestNewEmbeddingService_ModelPrefix(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", Model: "text-embedding-004"})
	require.NoError(t, err)
	assert.Equal(t, "models/text-embedding-004", svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/embedding-001:batchEmbedContents"), r.URL.Path)
		assert.Equal(t, "gk", r.URL.Query().Get("key"))

		var req struct {
			Requests []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type emb struct {
			Values []float64 `json:"values"`
		}
		var resp struct {
			Embeddings []emb `json:"embeddings"`
		}
		for _, rq := range req.Requests {
			resp.Embeddings = append(resp.Embeddings, emb{Values: []float64{float64(len(rq.Content.Parts[0].Text))}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "gk", BaseURL: server.URL})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"ab", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2}, {4}}, vecs)
}

func TestEmbedBatch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrProviderFailure)
}
