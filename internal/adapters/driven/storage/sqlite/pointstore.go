package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// pointStore implements driven.PointStore.
type pointStore struct {
	store *Store
}

var _ driven.PointStore = (*pointStore)(nil)

// HasCollection reports whether a point set exists.
func (s *pointStore) HasCollection(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.store.db.QueryRowContext(ctx, "SELECT name FROM point_sets WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking point set: %w", err)
	}
	return true, nil
}

// InsertPoints creates a point set in one transaction.
func (s *pointStore) InsertPoints(ctx context.Context, name string, points []domain.Point) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, "INSERT INTO point_sets (name, created_at) VALUES (?, ?)", name, time.Now())
	if isUniqueViolation(err) {
		return fmt.Errorf("point set %s: %w", name, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating point set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (namespace, id, position, x, y) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			position = excluded.position,
			x = excluded.x,
			y = excluded.y
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, name, p.ID, i, p.X, p.Y); err != nil {
			return fmt.Errorf("saving point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPoints returns a point set in insertion order.
func (s *pointStore) GetPoints(ctx context.Context, name string) ([]domain.Point, error) {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("point set %s: %w", name, domain.ErrNotFound)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, x, y FROM points WHERE namespace = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	points := []domain.Point{}
	for rows.Next() {
		var p domain.Point
		if err := rows.Scan(&p.ID, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scanning point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points: %w", err)
	}
	return points, nil
}

// DeleteCollection removes a point set.
func (s *pointStore) DeleteCollection(ctx context.Context, name string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM points WHERE namespace = ?", name); err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM point_sets WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting point set: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpsertPoint stores a single point under a namespace.
func (s *pointStore) UpsertPoint(ctx context.Context, namespace string, p domain.Point) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO points (namespace, id, x, y) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			x = excluded.x,
			y = excluded.y
	`, namespace, p.ID, p.X, p.Y)
	if err != nil {
		return fmt.Errorf("saving point: %w", err)
	}
	return nil
}

// GetPoint retrieves a single point.
func (s *pointStore) GetPoint(ctx context.Context, namespace, id string) (*domain.Point, error) {
	var p domain.Point
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, x, y FROM points WHERE namespace = ? AND id = ?
	`, namespace, id).Scan(&p.ID, &p.X, &p.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning point: %w", err)
	}
	return &p, nil
}

// DeletePoint removes a single point.
func (s *pointStore) DeletePoint(ctx context.Context, namespace, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM points WHERE namespace = ? AND id = ?", namespace, id)
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// Close is a no-op; the database belongs to the Store.
func (s *pointStore) Close() error {
	return nil
}
