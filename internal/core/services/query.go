package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
	"github.com/custodia-labs/playground/internal/logger"
)

// Ensure QueryPipeline implements the interface.
var _ driving.QueryService = (*QueryPipeline)(nil)

// QueryPipeline runs similarity queries and places them on the playground map.
type QueryPipeline struct {
	playgrounds driven.PlaygroundStore
	queries     driven.QueryStore
	vectors     driven.VectorStore
	embedder    driven.Embedder
	builder     *CollectionBuilder
	points      *PointSync
	topK        int
}

// NewQueryPipeline creates a query pipeline returning topK matches per query.
func NewQueryPipeline(
	playgrounds driven.PlaygroundStore,
	queries driven.QueryStore,
	vectors driven.VectorStore,
	embedder driven.Embedder,
	builder *CollectionBuilder,
	points *PointSync,
	topK int,
) *QueryPipeline {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryPipeline{
		playgrounds: playgrounds,
		queries:     queries,
		vectors:     vectors,
		embedder:    embedder,
		builder:     builder,
		points:      points,
		topK:        topK,
	}
}

// Run embeds text with the playground's service and model, finds the
// nearest chunks and projects the query into the playground's map.
func (q *QueryPipeline) Run(ctx context.Context, playgroundID, text string) (*domain.QueryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}

	p, err := q.playgrounds.GetPlayground(ctx, playgroundID)
	if err != nil {
		return nil, fmt.Errorf("get playground %s: %w", playgroundID, err)
	}

	coll, err := q.builder.Build(ctx, p)
	if err != nil {
		return nil, err
	}
	if coll.Len() == 0 {
		return nil, fmt.Errorf("playground %s: %w", p.ID, domain.ErrNoContent)
	}

	start := time.Now()
	vecs, err := q.embedder.Embed(ctx, []string{text}, p.Service, p.Model)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: embed query: expected 1 vector, got %d", domain.ErrProviderFailure, len(vecs))
	}

	hits, err := q.vectors.QuerySimilar(ctx, coll.Name, vecs[0], q.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %w", domain.ErrProviderFailure, err)
	}
	resultIDs := make([]string, len(hits))
	for i, h := range hits {
		resultIDs[i] = h.ID
	}

	t, err := q.points.QueryTransform(ctx, p, coll)
	if err != nil {
		return nil, err
	}
	coords, err := q.points.Project(t, vecs)
	if err != nil {
		return nil, fmt.Errorf("project query: %w", err)
	}

	query := domain.Query{
		ID:           uuid.New().String(),
		PlaygroundID: p.ID,
		Text:         text,
		ResultIDs:    resultIDs,
		CreatedAt:    time.Now(),
	}
	// The point goes first: a query row is never visible without its point.
	pt := domain.Point{ID: query.ID, X: coords[0][0], Y: coords[0][1]}
	if err := q.points.RecordQueryPoint(ctx, query.ID, pt); err != nil {
		return nil, err
	}
	if err := q.queries.SaveQuery(ctx, &query); err != nil {
		if derr := q.points.DeleteQueryPoint(ctx, query.ID); derr != nil {
			logger.Warn("Removing point of unsaved query %s: %v", query.ID, derr)
		}
		return nil, fmt.Errorf("save query: %w", err)
	}

	logger.Info("Query %s on playground %s matched %d chunks in %s",
		query.ID, p.ID, len(resultIDs), time.Since(start).Round(time.Millisecond))
	return &domain.QueryResult{Query: query, Point: &pt}, nil
}

// List returns the queries of a playground with their points.
func (q *QueryPipeline) List(ctx context.Context, playgroundID string) ([]domain.QueryResult, error) {
	if _, err := q.playgrounds.GetPlayground(ctx, playgroundID); err != nil {
		return nil, fmt.Errorf("get playground %s: %w", playgroundID, err)
	}

	queries, err := q.queries.ListQueries(ctx, playgroundID)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}

	results := make([]domain.QueryResult, 0, len(queries))
	for _, query := range queries {
		pt, err := q.point(ctx, query.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.QueryResult{Query: query, Point: pt})
	}
	return results, nil
}

// Get retrieves a query with its point.
func (q *QueryPipeline) Get(ctx context.Context, queryID string) (*domain.QueryResult, error) {
	query, err := q.queries.GetQuery(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("get query %s: %w", queryID, err)
	}
	pt, err := q.point(ctx, queryID)
	if err != nil {
		return nil, err
	}
	return &domain.QueryResult{Query: *query, Point: pt}, nil
}

// point returns a query's point, or nil if the point store has lost it.
func (q *QueryPipeline) point(ctx context.Context, queryID string) (*domain.Point, error) {
	pt, err := q.points.GetQueryPoint(ctx, queryID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return pt, err
}
