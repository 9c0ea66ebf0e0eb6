package driven

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// DocumentStore persists uploaded document records.
type DocumentStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocuments retrieves documents by ID in the order given.
	// Returns domain.ErrNotFound if any ID is unknown.
	GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error
}

// PlaygroundStore persists playgrounds and their document membership.
type PlaygroundStore interface {
	// SavePlayground stores a playground with its document membership.
	SavePlayground(ctx context.Context, p *domain.Playground) error

	// GetPlayground retrieves a playground by ID, including DocumentIDs.
	// Returns domain.ErrNotFound if it does not exist.
	GetPlayground(ctx context.Context, id string) (*domain.Playground, error)

	// ListPlaygrounds returns all playgrounds, newest first.
	ListPlaygrounds(ctx context.Context) ([]domain.Playground, error)

	// RenamePlayground updates a playground title.
	RenamePlayground(ctx context.Context, id, title string) error

	// DeletePlayground removes a playground and its membership rows.
	DeletePlayground(ctx context.Context, id string) error

	// ListPlaygroundsByDocument returns IDs of playgrounds containing a document.
	ListPlaygroundsByDocument(ctx context.Context, documentID string) ([]string, error)
}

// EmbeddedDocumentStore maps (document, service, model) to a cache collection.
type EmbeddedDocumentStore interface {
	// GetEmbeddedDocument looks up a cache entry by key.
	// Returns domain.ErrNotFound on a miss.
	GetEmbeddedDocument(ctx context.Context, key domain.EmbeddingKey) (*domain.EmbeddedDocument, error)

	// CreateEmbeddedDocument inserts a cache entry.
	// Returns domain.ErrAlreadyExists if the key is taken.
	CreateEmbeddedDocument(ctx context.Context, e *domain.EmbeddedDocument) error

	// ListEmbeddedDocuments returns every cache entry for a document.
	ListEmbeddedDocuments(ctx context.Context, documentID string) ([]domain.EmbeddedDocument, error)

	// DeleteEmbeddedDocument removes a cache entry by ID.
	DeleteEmbeddedDocument(ctx context.Context, id string) error
}

// QueryStore persists queries.
type QueryStore interface {
	// SaveQuery stores a query.
	SaveQuery(ctx context.Context, q *domain.Query) error

	// GetQuery retrieves a query by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetQuery(ctx context.Context, id string) (*domain.Query, error)

	// ListQueries returns the queries of a playground, oldest first.
	ListQueries(ctx context.Context, playgroundID string) ([]domain.Query, error)

	// DeleteQueries removes every query of a playground.
	DeleteQueries(ctx context.Context, playgroundID string) error
}

// TransformStore persists the projection fitted for a playground.
type TransformStore interface {
	// SaveTransform stores or replaces a playground transform.
	SaveTransform(ctx context.Context, playgroundID string, t *domain.Transform) error

	// GetTransform retrieves a playground transform.
	// Returns domain.ErrNotFound if none is stored.
	GetTransform(ctx context.Context, playgroundID string) (*domain.Transform, error)

	// DeleteTransform removes a playground transform.
	DeleteTransform(ctx context.Context, playgroundID string) error
}
