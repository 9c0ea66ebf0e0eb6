package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure stores implement the interfaces.
var (
	_ driven.DocumentStore         = (*DocumentStore)(nil)
	_ driven.PlaygroundStore       = (*PlaygroundStore)(nil)
	_ driven.EmbeddedDocumentStore = (*EmbeddedDocumentStore)(nil)
	_ driven.QueryStore            = (*QueryStore)(nil)
	_ driven.TransformStore        = (*TransformStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocument stores a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocuments retrieves documents by ID in the order given.
func (s *DocumentStore) GetDocuments(_ context.Context, ids []string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := s.documents[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document record.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// PlaygroundStore is an in-memory implementation of driven.PlaygroundStore.
type PlaygroundStore struct {
	mu          sync.RWMutex
	playgrounds map[string]domain.Playground
}

// NewPlaygroundStore creates a new in-memory playground store.
func NewPlaygroundStore() *PlaygroundStore {
	return &PlaygroundStore{
		playgrounds: make(map[string]domain.Playground),
	}
}

// SavePlayground stores a playground.
func (s *PlaygroundStore) SavePlayground(_ context.Context, p *domain.Playground) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.DocumentIDs = append([]string(nil), p.DocumentIDs...)
	s.playgrounds[p.ID] = cp
	return nil
}

// GetPlayground retrieves a playground by ID.
func (s *PlaygroundStore) GetPlayground(_ context.Context, id string) (*domain.Playground, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.playgrounds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.DocumentIDs = append([]string(nil), p.DocumentIDs...)
	return &p, nil
}

// ListPlaygrounds returns all playgrounds, newest first.
func (s *PlaygroundStore) ListPlaygrounds(_ context.Context) ([]domain.Playground, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.Playground, 0, len(s.playgrounds))
	for _, p := range s.playgrounds {
		p.DocumentIDs = append([]string(nil), p.DocumentIDs...)
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// RenamePlayground updates a playground title.
func (s *PlaygroundStore) RenamePlayground(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playgrounds[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Title = title
	s.playgrounds[id] = p
	return nil
}

// DeletePlayground removes a playground.
func (s *PlaygroundStore) DeletePlayground(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playgrounds, id)
	return nil
}

// ListPlaygroundsByDocument returns IDs of playgrounds containing a document.
func (s *PlaygroundStore) ListPlaygroundsByDocument(_ context.Context, documentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, p := range s.playgrounds {
		if p.HasDocument(documentID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// EmbeddedDocumentStore is an in-memory implementation of driven.EmbeddedDocumentStore.
type EmbeddedDocumentStore struct {
	mu      sync.RWMutex
	entries map[domain.EmbeddingKey]domain.EmbeddedDocument
}

// NewEmbeddedDocumentStore creates a new in-memory embedding cache index.
func NewEmbeddedDocumentStore() *EmbeddedDocumentStore {
	return &EmbeddedDocumentStore{
		entries: make(map[domain.EmbeddingKey]domain.EmbeddedDocument),
	}
}

// GetEmbeddedDocument looks up a cache entry by key.
func (s *EmbeddedDocumentStore) GetEmbeddedDocument(
	_ context.Context,
	key domain.EmbeddingKey,
) (*domain.EmbeddedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// CreateEmbeddedDocument inserts a cache entry.
func (s *EmbeddedDocumentStore) CreateEmbeddedDocument(_ context.Context, e *domain.EmbeddedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := e.Key()
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("embedded document %s: %w", key, domain.ErrAlreadyExists)
	}
	s.entries[key] = *e
	return nil
}

// ListEmbeddedDocuments returns every cache entry for a document.
func (s *EmbeddedDocumentStore) ListEmbeddedDocuments(
	_ context.Context,
	documentID string,
) ([]domain.EmbeddedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []domain.EmbeddedDocument
	for key, e := range s.entries {
		if key.DocumentID == documentID {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// DeleteEmbeddedDocument removes a cache entry by ID.
func (s *EmbeddedDocumentStore) DeleteEmbeddedDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if e.ID == id {
			delete(s.entries, key)
		}
	}
	return nil
}

// QueryStore is an in-memory implementation of driven.QueryStore.
type QueryStore struct {
	mu      sync.RWMutex
	queries map[string]domain.Query
}

// NewQueryStore creates a new in-memory query store.
func NewQueryStore() *QueryStore {
	return &QueryStore{
		queries: make(map[string]domain.Query),
	}
}

// SaveQuery stores a query.
func (s *QueryStore) SaveQuery(_ context.Context, q *domain.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	cp.ResultIDs = append([]string(nil), q.ResultIDs...)
	s.queries[q.ID] = cp
	return nil
}

// GetQuery retrieves a query by ID.
func (s *QueryStore) GetQuery(_ context.Context, id string) (*domain.Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.queries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &q, nil
}

// ListQueries returns the queries of a playground, oldest first.
func (s *QueryStore) ListQueries(_ context.Context, playgroundID string) ([]domain.Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []domain.Query
	for _, q := range s.queries {
		if q.PlaygroundID == playgroundID {
			list = append(list, q)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// DeleteQueries removes every query of a playground.
func (s *QueryStore) DeleteQueries(_ context.Context, playgroundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.queries {
		if q.PlaygroundID == playgroundID {
			delete(s.queries, id)
		}
	}
	return nil
}

// TransformStore is an in-memory implementation of driven.TransformStore.
type TransformStore struct {
	mu         sync.RWMutex
	transforms map[string]domain.Transform
}

// NewTransformStore creates a new in-memory transform store.
func NewTransformStore() *TransformStore {
	return &TransformStore{
		transforms: make(map[string]domain.Transform),
	}
}

// SaveTransform stores or replaces a playground transform.
func (s *TransformStore) SaveTransform(_ context.Context, playgroundID string, t *domain.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transforms[playgroundID] = *t
	return nil
}

// GetTransform retrieves a playground transform.
func (s *TransformStore) GetTransform(_ context.Context, playgroundID string) (*domain.Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transforms[playgroundID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

// DeleteTransform removes a playground transform.
func (s *TransformStore) DeleteTransform(_ context.Context, playgroundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transforms, playgroundID)
	return nil
}
