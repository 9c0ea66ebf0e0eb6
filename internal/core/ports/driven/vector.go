package driven

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// VectorStore holds named vector collections.
// Backed by SQLite with brute-force cosine similarity.
type VectorStore interface {
	// CreateCollection creates a collection holding entries in one step.
	// Readers never observe the collection without its entries.
	// Returns domain.ErrAlreadyExists if the name is taken.
	CreateCollection(ctx context.Context, name string, entries []domain.VectorEntry) error

	// GetEntries returns entries in insertion order.
	// A nil ids slice returns every entry; otherwise entries follow ids order.
	// Returns domain.ErrNotFound if the collection does not exist.
	GetEntries(ctx context.Context, name string, ids []string, include domain.VectorInclude) ([]domain.VectorEntry, error)

	// QuerySimilar returns the k entries nearest to query, nearest first.
	QuerySimilar(ctx context.Context, name string, query []float32, k int) ([]domain.VectorHit, error)

	// DeleteCollection removes a collection and its entries.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error
}

// PointStore holds namespaced sets of 2-D points.
type PointStore interface {
	// HasCollection reports whether a point set exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// InsertPoints creates a point set.
	// Returns domain.ErrAlreadyExists if the set exists.
	InsertPoints(ctx context.Context, name string, points []domain.Point) error

	// GetPoints returns a point set in insertion order.
	// Returns domain.ErrNotFound if the set does not exist.
	GetPoints(ctx context.Context, name string) ([]domain.Point, error)

	// DeleteCollection removes a point set.
	DeleteCollection(ctx context.Context, name string) error

	// UpsertPoint stores a single point under a namespace.
	UpsertPoint(ctx context.Context, namespace string, point domain.Point) error

	// GetPoint retrieves a single point.
	// Returns domain.ErrNotFound if it does not exist.
	GetPoint(ctx context.Context, namespace, id string) (*domain.Point, error)

	// DeletePoint removes a single point.
	DeletePoint(ctx context.Context, namespace, id string) error

	// Close releases resources.
	Close() error
}
