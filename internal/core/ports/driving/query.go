package driving

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// QueryService runs similarity queries against playgrounds.
type QueryService interface {
	// Run searches a playground for the chunks nearest to text and places
	// the query on the playground map.
	// Returns domain.ErrNoContent if the playground has no chunks.
	Run(ctx context.Context, playgroundID, text string) (*domain.QueryResult, error)

	// List returns the queries of a playground, oldest first.
	List(ctx context.Context, playgroundID string) ([]domain.QueryResult, error)

	// Get retrieves a query with its point.
	Get(ctx context.Context, queryID string) (*domain.QueryResult, error)
}
