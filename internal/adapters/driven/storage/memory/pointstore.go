package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure PointStore implements the interface.
var _ driven.PointStore = (*PointStore)(nil)

// PointStore is an in-memory implementation of driven.PointStore.
type PointStore struct {
	mu     sync.RWMutex
	sets   map[string][]domain.Point
	single map[string]map[string]domain.Point
}

// NewPointStore creates a new in-memory point store.
func NewPointStore() *PointStore {
	return &PointStore{
		sets:   make(map[string][]domain.Point),
		single: make(map[string]map[string]domain.Point),
	}
}

// HasCollection reports whether a point set exists.
func (s *PointStore) HasCollection(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[name]
	return ok, nil
}

// InsertPoints creates a point set.
func (s *PointStore) InsertPoints(_ context.Context, name string, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[name]; ok {
		return fmt.Errorf("point set %s: %w", name, domain.ErrAlreadyExists)
	}
	s.sets[name] = append([]domain.Point{}, points...)
	return nil
}

// GetPoints returns a point set in insertion order.
func (s *PointStore) GetPoints(_ context.Context, name string) ([]domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points, ok := s.sets[name]
	if !ok {
		return nil, fmt.Errorf("point set %s: %w", name, domain.ErrNotFound)
	}
	return append([]domain.Point{}, points...), nil
}

// DeleteCollection removes a point set.
func (s *PointStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, name)
	return nil
}

// UpsertPoint stores a single point under a namespace.
func (s *PointStore) UpsertPoint(_ context.Context, namespace string, p domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.single[namespace]
	if !ok {
		ns = make(map[string]domain.Point)
		s.single[namespace] = ns
	}
	ns[p.ID] = p
	return nil
}

// GetPoint retrieves a single point.
func (s *PointStore) GetPoint(_ context.Context, namespace, id string) (*domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.single[namespace][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// DeletePoint removes a single point.
func (s *PointStore) DeletePoint(_ context.Context, namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.single[namespace], id)
	return nil
}

// Close is a no-op.
func (s *PointStore) Close() error {
	return nil
}
