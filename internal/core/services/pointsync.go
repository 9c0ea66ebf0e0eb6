package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// PointSync keeps the point store in step with playground collections.
// Playground points are computed once and then served from the store,
// even if the collection has changed since.
type PointSync struct {
	points        driven.PointStore
	transforms    driven.TransformStore
	builder       *CollectionBuilder
	projector     driven.Projector
	locks         *KeyedMutex
	refitPerQuery bool
}

// PointSyncOption configures a PointSync.
type PointSyncOption func(*PointSync)

// WithRefitPerQuery fits a fresh transform for every query projection
// instead of reusing the playground's stored transform.
func WithRefitPerQuery(refit bool) PointSyncOption {
	return func(s *PointSync) {
		s.refitPerQuery = refit
	}
}

// NewPointSync creates a point sync.
func NewPointSync(
	points driven.PointStore,
	transforms driven.TransformStore,
	builder *CollectionBuilder,
	projector driven.Projector,
	locks *KeyedMutex,
	opts ...PointSyncOption,
) *PointSync {
	s := &PointSync{
		points:     points,
		transforms: transforms,
		builder:    builder,
		projector:  projector,
		locks:      locks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkspacePoints returns one point per chunk of the playground, keyed by
// chunk ID and in collection order. The first call builds the collection,
// fits the transform and stores both points and transform.
func (s *PointSync) WorkspacePoints(ctx context.Context, p *domain.Playground) ([]domain.Point, error) {
	if points, err := s.stored(ctx, p.ID); err == nil || !errors.Is(err, domain.ErrNotFound) {
		return points, err
	}

	unlock, err := s.locks.Lock(ctx, pointsLockPrefix+p.ID)
	if err != nil {
		return nil, fmt.Errorf("lock playground %s: %w", p.ID, err)
	}
	defer unlock()

	if points, err := s.stored(ctx, p.ID); err == nil || !errors.Is(err, domain.ErrNotFound) {
		return points, err
	}

	coll, err := s.builder.Build(ctx, p)
	if err != nil {
		return nil, err
	}
	if coll.Len() == 0 {
		return nil, fmt.Errorf("playground %s: %w", p.ID, domain.ErrNoContent)
	}

	t, coords, err := s.fitProject(coll.Embeddings())
	if err != nil {
		return nil, fmt.Errorf("playground %s: %w", p.ID, err)
	}
	if err := s.transforms.SaveTransform(ctx, p.ID, t); err != nil {
		return nil, fmt.Errorf("save transform: %w", err)
	}

	points := make([]domain.Point, len(coords))
	for i, c := range coords {
		points[i] = domain.Point{ID: coll.Entries[i].ID, X: c[0], Y: c[1]}
	}

	err = s.points.InsertPoints(ctx, p.ID, points)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return s.stored(ctx, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: store points %s: %w", domain.ErrProviderFailure, p.ID, err)
	}

	logger.Info("Projected %d points for playground %s", len(points), p.ID)
	return points, nil
}

// RecordQueryPoint stores a query's point under the query namespace.
func (s *PointSync) RecordQueryPoint(ctx context.Context, queryID string, pt domain.Point) error {
	pt.ID = queryID
	if err := s.points.UpsertPoint(ctx, domain.QueryNamespace, pt); err != nil {
		return fmt.Errorf("%w: store query point %s: %w", domain.ErrProviderFailure, queryID, err)
	}
	return nil
}

// DeleteQueryPoint removes a query's point. A missing point is not an error.
func (s *PointSync) DeleteQueryPoint(ctx context.Context, queryID string) error {
	err := s.points.DeletePoint(ctx, domain.QueryNamespace, queryID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete query point %s: %w", queryID, err)
	}
	return nil
}

// GetQueryPoint returns a query's point.
func (s *PointSync) GetQueryPoint(ctx context.Context, queryID string) (*domain.Point, error) {
	pt, err := s.points.GetPoint(ctx, domain.QueryNamespace, queryID)
	if err != nil {
		return nil, fmt.Errorf("query point %s: %w", queryID, err)
	}
	return pt, nil
}

// QueryTransform returns the transform query embeddings are projected
// through. By default this is the transform stored with the playground's
// points; with refit per query it is fitted anew on coll.
func (s *PointSync) QueryTransform(
	ctx context.Context, p *domain.Playground, coll *domain.VectorCollection,
) (*domain.Transform, error) {
	if s.refitPerQuery {
		return s.fit(coll.Embeddings())
	}

	t, err := s.transforms.GetTransform(ctx, p.ID)
	switch {
	case err == nil && t.Dimensions() == dimensionsOf(coll):
		return t, nil
	case err == nil:
		logger.Warn("Transform for playground %s expects %d dimensions, collection has %d, refitting",
			p.ID, t.Dimensions(), dimensionsOf(coll))
	case errors.Is(err, domain.ErrNotFound):
		if _, perr := s.WorkspacePoints(ctx, p); perr != nil {
			return nil, perr
		}
		if t, err = s.transforms.GetTransform(ctx, p.ID); err == nil {
			return t, nil
		}
		logger.Warn("Transform for playground %s missing, refitting", p.ID)
	default:
		return nil, fmt.Errorf("get transform: %w", err)
	}

	t, err = s.fit(coll.Embeddings())
	if err != nil {
		return nil, err
	}
	if err := s.transforms.SaveTransform(ctx, p.ID, t); err != nil {
		return nil, fmt.Errorf("save transform: %w", err)
	}
	return t, nil
}

// Project maps embeddings through t.
func (s *PointSync) Project(t *domain.Transform, embeddings [][]float32) ([][2]float64, error) {
	return s.projector.Project(t, embeddings)
}

func (s *PointSync) stored(ctx context.Context, id string) ([]domain.Point, error) {
	ok, err := s.points.HasCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: check points %s: %w", domain.ErrProviderFailure, id, err)
	}
	if !ok {
		return nil, fmt.Errorf("points %s: %w", id, domain.ErrNotFound)
	}
	points, err := s.points.GetPoints(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get points %s: %w", id, err)
	}
	logger.Debug("Serving %d stored points for playground %s", len(points), id)
	return points, nil
}

func (s *PointSync) fit(embeddings [][]float32) (*domain.Transform, error) {
	t, err := s.projector.Fit(embeddings)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fitted transform on %d embeddings", len(embeddings))
	return t, nil
}

func (s *PointSync) fitProject(embeddings [][]float32) (*domain.Transform, [][2]float64, error) {
	t, err := s.fit(embeddings)
	if err != nil {
		return nil, nil, err
	}
	coords, err := s.projector.Project(t, embeddings)
	if err != nil {
		return nil, nil, err
	}
	return t, coords, nil
}

func dimensionsOf(coll *domain.VectorCollection) int {
	if coll.Len() == 0 {
		return 0
	}
	return len(coll.Entries[0].Embedding)
}
