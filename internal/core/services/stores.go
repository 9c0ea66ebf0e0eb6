package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// Stores bundles the persistence ports shared by the services.
type Stores struct {
	Documents   driven.DocumentStore
	Playgrounds driven.PlaygroundStore
	Embedded    driven.EmbeddedDocumentStore
	Queries     driven.QueryStore
	Transforms  driven.TransformStore
	Vectors     driven.VectorStore
	Points      driven.PointStore
	Files       driven.FileStore
}

// deletePlaygroundLocked deletes a playground while holding its point and
// collection keys, in the order PointSync takes them.
func (st Stores) deletePlaygroundLocked(ctx context.Context, locks *KeyedMutex, id string) error {
	unlockPoints, err := locks.Lock(ctx, pointsLockPrefix+id)
	if err != nil {
		return fmt.Errorf("lock playground %s: %w", id, err)
	}
	defer unlockPoints()

	unlockCollection, err := locks.Lock(ctx, collectionLockPrefix+id)
	if err != nil {
		return fmt.Errorf("lock playground %s: %w", id, err)
	}
	defer unlockCollection()

	return st.deletePlayground(ctx, id)
}

// deletePlayground removes a playground and everything derived from it:
// query points, queries, the transform, the point set and the collection.
// The playground row goes last so a failed cleanup can be retried.
func (st Stores) deletePlayground(ctx context.Context, id string) error {
	queries, err := st.Queries.ListQueries(ctx, id)
	if err != nil {
		return fmt.Errorf("list queries: %w", err)
	}
	for _, q := range queries {
		if err := st.Points.DeletePoint(ctx, domain.QueryNamespace, q.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete query point %s: %w", q.ID, err)
		}
	}
	if err := st.Queries.DeleteQueries(ctx, id); err != nil {
		return fmt.Errorf("delete queries: %w", err)
	}
	if err := st.Transforms.DeleteTransform(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete transform: %w", err)
	}
	if err := st.Points.DeleteCollection(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete points: %w", err)
	}
	if err := st.Vectors.DeleteCollection(ctx, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if err := st.Playgrounds.DeletePlayground(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete playground: %w", err)
	}

	logger.Debug("Deleted playground %s with %d queries", id, len(queries))
	return nil
}
