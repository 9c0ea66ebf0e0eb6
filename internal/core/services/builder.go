package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// CollectionBuilder assembles a playground's vector collection from the
// cached collections of its member documents.
type CollectionBuilder struct {
	vectors driven.VectorStore
	cache   *EmbeddingCache
	locks   *KeyedMutex
}

// NewCollectionBuilder creates a collection builder.
func NewCollectionBuilder(vectors driven.VectorStore, cache *EmbeddingCache, locks *KeyedMutex) *CollectionBuilder {
	return &CollectionBuilder{vectors: vectors, cache: cache, locks: locks}
}

// Build returns the playground's collection, creating it on first use.
// Entries follow document order, then chunk order, and each carries the
// name of the per-document collection holding its text. An existing
// collection is returned as is.
func (b *CollectionBuilder) Build(ctx context.Context, p *domain.Playground) (*domain.VectorCollection, error) {
	if coll, err := b.existing(ctx, p); err == nil || !errors.Is(err, domain.ErrNotFound) {
		return coll, err
	}

	unlock, err := b.locks.Lock(ctx, collectionLockPrefix+p.ID)
	if err != nil {
		return nil, fmt.Errorf("lock playground %s: %w", p.ID, err)
	}
	defer unlock()

	if coll, err := b.existing(ctx, p); err == nil || !errors.Is(err, domain.ErrNotFound) {
		return coll, err
	}

	var entries []domain.VectorEntry
	for _, docID := range p.DocumentIDs {
		cached, err := b.cache.GetOrCreate(ctx, docID, p.Service, p.Model)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docID, err)
		}
		for _, e := range cached.Entries {
			entries = append(entries, domain.VectorEntry{
				ID:        e.ID,
				Embedding: e.Embedding,
				Source:    cached.Name,
			})
		}
	}
	if entries == nil {
		entries = []domain.VectorEntry{}
	}

	err = b.vectors.CreateCollection(ctx, p.CollectionName(), entries)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return b.existing(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create collection %s: %w", domain.ErrProviderFailure, p.ID, err)
	}

	logger.Info("Built collection for playground %s: %d chunks from %d documents",
		p.ID, len(entries), len(p.DocumentIDs))
	return &domain.VectorCollection{Name: p.CollectionName(), Entries: entries}, nil
}

func (b *CollectionBuilder) existing(ctx context.Context, p *domain.Playground) (*domain.VectorCollection, error) {
	entries, err := b.vectors.GetEntries(ctx, p.CollectionName(), nil, domain.IncludeAll)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read collection %s: %w", domain.ErrProviderFailure, p.ID, err)
	}
	return &domain.VectorCollection{Name: p.CollectionName(), Entries: entries}, nil
}
