package domain

import "time"

// DefaultPlaygroundTitle is used when a playground is created without a title.
const DefaultPlaygroundTitle = "New Playground"

// Playground is a named workspace of documents sharing one embedding configuration.
// Its vector collection and point set are both named by its ID.
type Playground struct {
	// ID is the unique identifier for the playground.
	ID string

	// Title is the human-readable title.
	Title string

	// CreatedAt is when the playground was created.
	CreatedAt time.Time

	// Service is the embedding service chosen for the playground.
	Service Service

	// Model is the embedding model chosen for the playground.
	Model string

	// DocumentIDs lists the member documents in insertion order.
	DocumentIDs []string
}

// EmbeddingKey returns the cache key for one member document
// under this playground's configuration.
func (p Playground) EmbeddingKey(documentID string) EmbeddingKey {
	return EmbeddingKey{DocumentID: documentID, Service: p.Service, Model: p.Model}
}

// CollectionName returns the name of the playground's vector collection.
func (p Playground) CollectionName() string {
	return p.ID
}

// HasDocument reports whether documentID is a member.
func (p Playground) HasDocument(documentID string) bool {
	for _, id := range p.DocumentIDs {
		if id == documentID {
			return true
		}
	}
	return false
}
