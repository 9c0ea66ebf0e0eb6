package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestTopK(t *testing.T) {
	entries := []domain.VectorEntry{
		{ID: "far", Embedding: []float32{-1, 0}},
		{ID: "near", Embedding: []float32{1, 0.1}},
		{ID: "mid", Embedding: []float32{0.5, 0.5}},
		{ID: "exact", Embedding: []float32{1, 0}},
	}

	hits := TopK([]float32{1, 0}, entries, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].ID)
	assert.Equal(t, "near", hits[1].ID)

	all := TopK([]float32{1, 0}, entries, 10)
	require.Len(t, all, 4)
	assert.Equal(t, "far", all[3].ID)

	assert.Nil(t, TopK([]float32{1, 0}, entries, 0))
	assert.Nil(t, TopK([]float32{1, 0}, nil, 3))
}

func TestTopK_TiesKeepOrder(t *testing.T) {
	entries := []domain.VectorEntry{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{2, 0}},
		{ID: "c", Embedding: []float32{3, 0}},
	}

	hits := TopK([]float32{1, 0}, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{hits[0].ID, hits[1].ID, hits[2].ID})
}
