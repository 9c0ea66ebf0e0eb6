package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/playground/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string][]domain.VectorEntry
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string][]domain.VectorEntry),
	}
}

// CreateCollection creates a collection holding entries.
func (s *VectorStore) CreateCollection(_ context.Context, name string, entries []domain.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	}
	s.collections[name] = upsertEntries(nil, entries)
	return nil
}

// GetEntries returns entries in insertion order, or in ids order when ids is set.
func (s *VectorStore) GetEntries(
	_ context.Context,
	name string,
	ids []string,
	include domain.VectorInclude,
) ([]domain.VectorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	selected := stored
	if ids != nil {
		byID := make(map[string]domain.VectorEntry, len(stored))
		for _, e := range stored {
			byID[e.ID] = e
		}
		selected = make([]domain.VectorEntry, 0, len(ids))
		for _, id := range ids {
			if e, ok := byID[id]; ok {
				selected = append(selected, e)
			}
		}
	}

	out := make([]domain.VectorEntry, len(selected))
	for i, e := range selected {
		out[i].ID = e.ID
		if include.Has(domain.IncludeEmbeddings) {
			out[i].Embedding = append([]float32(nil), e.Embedding...)
		}
		if include.Has(domain.IncludeContent) {
			out[i].Content = e.Content
			out[i].Source = e.Source
		}
	}
	return out, nil
}

// QuerySimilar ranks every entry of the collection against query.
func (s *VectorStore) QuerySimilar(_ context.Context, name string, query []float32, k int) ([]domain.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return similarity.TopK(query, stored, k), nil
}

// DeleteCollection removes a collection and its entries.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// upsertEntries appends entries to stored, replacing entries with the same ID in place.
func upsertEntries(stored, entries []domain.VectorEntry) []domain.VectorEntry {
	index := make(map[string]int, len(stored))
	for i, e := range stored {
		index[e.ID] = i
	}
	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		if i, ok := index[e.ID]; ok {
			stored[i] = e
			continue
		}
		index[e.ID] = len(stored)
		stored = append(stored, e)
	}
	if stored == nil {
		stored = []domain.VectorEntry{}
	}
	return stored
}
