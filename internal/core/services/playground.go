package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
	"github.com/custodia-labs/playground/internal/logger"
)

// Ensure PlaygroundService implements the interface.
var _ driving.PlaygroundService = (*PlaygroundService)(nil)

// PlaygroundService manages playgrounds. Creation only records the
// playground; chunks are embedded when points or queries first need them.
type PlaygroundService struct {
	stores Stores
	points *PointSync
	locks  *KeyedMutex
}

// NewPlaygroundService creates a playground service.
func NewPlaygroundService(stores Stores, points *PointSync, locks *KeyedMutex) *PlaygroundService {
	return &PlaygroundService{stores: stores, points: points, locks: locks}
}

// Create validates and stores a new playground.
func (s *PlaygroundService) Create(ctx context.Context, req driving.CreatePlaygroundRequest) (*domain.Playground, error) {
	if !req.Service.IsValid() {
		return nil, fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, req.Service)
	}

	docIDs := dedupe(req.DocumentIDs)
	if len(docIDs) == 0 {
		return nil, fmt.Errorf("%w: a playground needs at least one document", domain.ErrInvalidInput)
	}
	if _, err := s.stores.Documents.GetDocuments(ctx, docIDs); err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = domain.DefaultPlaygroundTitle
	}

	p := &domain.Playground{
		ID:          uuid.New().String(),
		Title:       title,
		CreatedAt:   time.Now(),
		Service:     req.Service,
		Model:       req.Service.ResolveModel(req.Model),
		DocumentIDs: docIDs,
	}
	if err := s.stores.Playgrounds.SavePlayground(ctx, p); err != nil {
		return nil, fmt.Errorf("save playground: %w", err)
	}

	logger.Info("Created playground %s (%s/%s, %d documents)", p.ID, p.Service, p.Model, len(docIDs))
	return p, nil
}

// List returns all playgrounds.
func (s *PlaygroundService) List(ctx context.Context) ([]domain.Playground, error) {
	list, err := s.stores.Playgrounds.ListPlaygrounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playgrounds: %w", err)
	}
	return list, nil
}

// Get retrieves a playground by ID.
func (s *PlaygroundService) Get(ctx context.Context, playgroundID string) (*domain.Playground, error) {
	p, err := s.stores.Playgrounds.GetPlayground(ctx, playgroundID)
	if err != nil {
		return nil, fmt.Errorf("get playground %s: %w", playgroundID, err)
	}
	return p, nil
}

// Rename changes a playground title.
func (s *PlaygroundService) Rename(ctx context.Context, playgroundID, title string) (*domain.Playground, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if err := s.stores.Playgrounds.RenamePlayground(ctx, playgroundID, title); err != nil {
		return nil, fmt.Errorf("rename playground %s: %w", playgroundID, err)
	}
	return s.Get(ctx, playgroundID)
}

// Delete removes a playground with everything derived from it.
func (s *PlaygroundService) Delete(ctx context.Context, playgroundID string) (*domain.Playground, error) {
	p, err := s.Get(ctx, playgroundID)
	if err != nil {
		return nil, err
	}
	if err := s.stores.deletePlaygroundLocked(ctx, s.locks, p.ID); err != nil {
		return nil, fmt.Errorf("delete playground %s: %w", p.ID, err)
	}
	logger.Info("Deleted playground %s", p.ID)
	return p, nil
}

// Documents returns the member documents in membership order.
func (s *PlaygroundService) Documents(ctx context.Context, playgroundID string) ([]domain.Document, error) {
	p, err := s.Get(ctx, playgroundID)
	if err != nil {
		return nil, err
	}
	docs, err := s.stores.Documents.GetDocuments(ctx, p.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	return docs, nil
}

// Points returns the playground map.
func (s *PlaygroundService) Points(ctx context.Context, playgroundID string) ([]domain.Point, error) {
	p, err := s.Get(ctx, playgroundID)
	if err != nil {
		return nil, err
	}
	return s.points.WorkspacePoints(ctx, p)
}

// Chunk returns the text of one chunk by following the playground entry
// back to the per-document collection it was copied from.
func (s *PlaygroundService) Chunk(ctx context.Context, playgroundID, chunkID string) (string, error) {
	p, err := s.Get(ctx, playgroundID)
	if err != nil {
		return "", err
	}

	refs, err := s.stores.Vectors.GetEntries(ctx, p.CollectionName(), []string{chunkID}, domain.IncludeContent)
	if err != nil {
		return "", fmt.Errorf("get chunk %s: %w", chunkID, err)
	}
	if len(refs) == 0 || refs[0].Source == "" {
		return "", fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}

	entries, err := s.stores.Vectors.GetEntries(ctx, refs[0].Source, []string{chunkID}, domain.IncludeContent)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(entries) == 0) {
		return "", fmt.Errorf("chunk %s in %s: %w", chunkID, refs[0].Source, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get chunk %s: %w", chunkID, err)
	}
	return entries[0].Content, nil
}

// dedupe trims IDs and drops blanks and repeats, keeping first occurrences.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
