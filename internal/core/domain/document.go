package domain

import "time"

// Document represents an uploaded file.
// Documents are immutable once created and are removed only explicitly.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the original file name shown to users.
	Name string

	// MIMEType is the detected content type (e.g., "application/pdf").
	MIMEType string

	// Size is the file size in bytes.
	Size int64

	// Path is the file store reference for the original bytes.
	Path string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// EmbeddingKey identifies a reusable embedded-chunk collection.
type EmbeddingKey struct {
	DocumentID string
	Service    Service
	Model      string
}

// String returns the key in "document:service:model" form.
func (k EmbeddingKey) String() string {
	return k.DocumentID + ":" + string(k.Service) + ":" + k.Model
}

// EmbeddedDocument is a cache entry recording that a document has been
// chunked and embedded under one service and model.
// Its ID names the vector collection holding the chunk vectors.
type EmbeddedDocument struct {
	// ID is the synthetic identifier, distinct from DocumentID.
	ID string

	// DocumentID links to the embedded Document.
	DocumentID string

	// Service is the embedding service used.
	Service Service

	// Model is the embedding model used.
	Model string

	// ChunkCount is the number of chunks in the collection.
	ChunkCount int

	// CreatedAt is when the entry was created.
	CreatedAt time.Time
}

// Key returns the cache key of the entry.
func (e EmbeddedDocument) Key() EmbeddingKey {
	return EmbeddingKey{DocumentID: e.DocumentID, Service: e.Service, Model: e.Model}
}

// CollectionName returns the vector collection holding this entry's chunks.
func (e EmbeddedDocument) CollectionName() string {
	return e.ID
}

// Chunk represents a bounded-length text fragment within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation of Content.
	Embedding []float32
}
