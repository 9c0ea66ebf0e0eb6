package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// embeddingNamespace seeds the name-based UUIDs of cache entries.
var embeddingNamespace = uuid.MustParse("6f1c3b8e-2f4d-4a7e-9c1b-3d8e4f2a6b10")

// EmbeddedDocumentID returns the cache entry ID for key. The same key
// always yields the same ID, so concurrent creators collide in the store.
func EmbeddedDocumentID(key domain.EmbeddingKey) string {
	return uuid.NewSHA1(embeddingNamespace, []byte(key.String())).String()
}

// EmbeddingCache maps (document, service, model) to a vector collection of
// the document's chunks. Chunks are embedded once per key and reused by
// every playground that asks for the same key.
type EmbeddingCache struct {
	embedded  driven.EmbeddedDocumentStore
	vectors   driven.VectorStore
	extractor *TextExtractor
	embedder  driven.Embedder
	locks     *KeyedMutex
}

// NewEmbeddingCache creates an embedding cache.
func NewEmbeddingCache(
	embedded driven.EmbeddedDocumentStore,
	vectors driven.VectorStore,
	extractor *TextExtractor,
	embedder driven.Embedder,
	locks *KeyedMutex,
) *EmbeddingCache {
	return &EmbeddingCache{
		embedded:  embedded,
		vectors:   vectors,
		extractor: extractor,
		embedder:  embedder,
		locks:     locks,
	}
}

// GetOrCreate returns the cached collection for a document under a service
// and model, embedding the document on a miss. The returned collection
// carries vectors and chunk text, in chunk order.
func (c *EmbeddingCache) GetOrCreate(
	ctx context.Context, documentID string, service domain.Service, model string,
) (*domain.VectorCollection, error) {
	if !service.IsValid() {
		return nil, fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, service)
	}
	key := domain.EmbeddingKey{DocumentID: documentID, Service: service, Model: service.ResolveModel(model)}

	if coll, err := c.lookup(ctx, key); err == nil {
		logger.Debug("Embedding cache hit: %s", key)
		return coll, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	unlock, err := c.locks.Lock(ctx, embedLockPrefix+key.String())
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	// Another caller may have filled the entry while we waited.
	if coll, err := c.lookup(ctx, key); err == nil {
		logger.Debug("Embedding cache hit after wait: %s", key)
		return coll, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	logger.Debug("Embedding cache miss: %s", key)
	return c.create(ctx, key)
}

// lookup returns the collection of a cache entry, or ErrNotFound on a miss.
// An entry whose collection has vanished is dropped and reported as a miss.
func (c *EmbeddingCache) lookup(ctx context.Context, key domain.EmbeddingKey) (*domain.VectorCollection, error) {
	entry, err := c.embedded.GetEmbeddedDocument(ctx, key)
	if err != nil {
		return nil, err
	}

	entries, err := c.vectors.GetEntries(ctx, entry.CollectionName(), nil, domain.IncludeAll)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Cache entry %s has no collection, rebuilding", entry.ID)
		if err := c.embedded.DeleteEmbeddedDocument(ctx, entry.ID); err != nil {
			return nil, fmt.Errorf("drop stale cache entry: %w", err)
		}
		return nil, fmt.Errorf("collection %s: %w", entry.ID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read collection %s: %w", domain.ErrProviderFailure, entry.ID, err)
	}

	return &domain.VectorCollection{Name: entry.CollectionName(), Entries: entries}, nil
}

// create chunks and embeds the document, then publishes the collection
// before the cache row so readers never see a row without vectors.
func (c *EmbeddingCache) create(ctx context.Context, key domain.EmbeddingKey) (*domain.VectorCollection, error) {
	chunks, err := c.extractor.Chunks(ctx, key.DocumentID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	start := time.Now()
	vectors, err := c.embedder.Embed(ctx, texts, key.Service, key.Model)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", key, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embed %s: expected %d vectors, got %d",
			domain.ErrProviderFailure, key, len(chunks), len(vectors))
	}
	logger.Debug("Embedded %d chunks for %s in %s", len(chunks), key, time.Since(start).Round(time.Millisecond))

	entry := &domain.EmbeddedDocument{
		ID:         EmbeddedDocumentID(key),
		DocumentID: key.DocumentID,
		Service:    key.Service,
		Model:      key.Model,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now(),
	}

	entries := make([]domain.VectorEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = domain.VectorEntry{ID: ch.ID, Embedding: vectors[i], Content: ch.Content}
	}

	coll := &domain.VectorCollection{Name: entry.CollectionName(), Entries: entries}
	err = c.vectors.CreateCollection(ctx, coll.Name, entries)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		// A previous attempt published the collection but not the row.
		logger.Debug("Collection %s already exists, adopting it", coll.Name)
		existing, err := c.vectors.GetEntries(ctx, coll.Name, nil, domain.IncludeAll)
		if err != nil {
			return nil, fmt.Errorf("%w: read collection %s: %w", domain.ErrProviderFailure, coll.Name, err)
		}
		coll.Entries = existing
		entry.ChunkCount = len(existing)
	case err != nil:
		return nil, fmt.Errorf("%w: create collection %s: %w", domain.ErrProviderFailure, coll.Name, err)
	}

	err = c.embedded.CreateEmbeddedDocument(ctx, entry)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Debug("Cache entry %s created concurrently, re-reading", key)
		return c.lookup(ctx, key)
	case err != nil:
		if delErr := c.vectors.DeleteCollection(ctx, coll.Name); delErr != nil {
			logger.Warn("Failed to remove unpublished collection %s: %v", coll.Name, delErr)
		}
		return nil, fmt.Errorf("record cache entry %s: %w", key, err)
	}

	logger.Info("Cached %d chunks for %s", entry.ChunkCount, key)
	return coll, nil
}
