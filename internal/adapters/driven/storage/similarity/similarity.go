// Package similarity ranks stored vectors against a query vector.
// It is shared by the embedded vector stores, which search by brute force.
package similarity

import (
	"sort"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero vectors and length mismatches score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	va := blas32.Vector{N: len(a), Inc: 1, Data: a}
	vb := blas32.Vector{N: len(b), Inc: 1, Data: b}

	na := blas32.Nrm2(va)
	nb := blas32.Nrm2(vb)
	if na == 0 || nb == 0 {
		return 0
	}
	return float64(blas32.Dot(va, vb)) / (float64(na) * float64(nb))
}

// TopK returns the k entries most similar to query, nearest first.
// Ties keep collection order. A k <= 0 returns nil.
func TopK(query []float32, entries []domain.VectorEntry, k int) []domain.VectorHit {
	if k <= 0 || len(entries) == 0 {
		return nil
	}

	hits := make([]domain.VectorHit, len(entries))
	for i, e := range entries {
		hits[i] = domain.VectorHit{ID: e.ID, Similarity: Cosine(query, e.Embedding)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
