package driving

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// CreatePlaygroundRequest holds the parameters of a new playground.
type CreatePlaygroundRequest struct {
	// Title defaults to domain.DefaultPlaygroundTitle.
	Title string

	// Service must be one of domain.AllServices.
	Service domain.Service

	// Model defaults to the service default model.
	Model string

	// DocumentIDs lists the member documents. At least one is required.
	DocumentIDs []string
}

// PlaygroundService manages playgrounds and their 2-D maps.
type PlaygroundService interface {
	// Create validates and stores a playground. Embedding happens lazily.
	Create(ctx context.Context, req CreatePlaygroundRequest) (*domain.Playground, error)

	// List returns all playgrounds, newest first.
	List(ctx context.Context) ([]domain.Playground, error)

	// Get retrieves a playground by ID.
	Get(ctx context.Context, playgroundID string) (*domain.Playground, error)

	// Rename changes a playground title.
	Rename(ctx context.Context, playgroundID, title string) (*domain.Playground, error)

	// Delete removes a playground with its collection, points and queries.
	Delete(ctx context.Context, playgroundID string) (*domain.Playground, error)

	// Documents returns the member documents in membership order.
	Documents(ctx context.Context, playgroundID string) ([]domain.Document, error)

	// Points returns one point per chunk, computing them on first request.
	// Returns domain.ErrNoContent if the playground has no chunks.
	Points(ctx context.Context, playgroundID string) ([]domain.Point, error)

	// Chunk returns the text of one chunk of the playground.
	Chunk(ctx context.Context, playgroundID, chunkID string) (string, error)
}
