package driven

import "github.com/custodia-labs/playground/internal/core/domain"

// Projector reduces embeddings to two dimensions.
type Projector interface {
	// Fit computes a transform from embeddings. Repeated fits on the same
	// ordered input return the same transform.
	// Fewer than two embeddings fail with domain.ErrProjectionFailure.
	Fit(embeddings [][]float32) (*domain.Transform, error)

	// Project maps each embedding through t, preserving order.
	Project(t *domain.Transform, embeddings [][]float32) ([][2]float64, error)
}
