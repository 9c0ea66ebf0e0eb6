package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/playground/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// CreateCollection creates a collection holding entries in one transaction.
func (s *vectorStore) CreateCollection(ctx context.Context, name string, entries []domain.VectorEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		"INSERT INTO vector_collections (name, created_at) VALUES (?, ?)", name, time.Now())
	if isUniqueViolation(err) {
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	if err := insertEntries(ctx, tx, name, 0, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetEntries returns entries in insertion order, or in ids order when ids is set.
func (s *vectorStore) GetEntries(
	ctx context.Context,
	name string,
	ids []string,
	include domain.VectorInclude,
) ([]domain.VectorEntry, error) {
	ok, err := s.exists(ctx, s.store.db, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	if ids != nil && len(ids) == 0 {
		return []domain.VectorEntry{}, nil
	}

	cols := []string{"id"}
	if include.Has(domain.IncludeEmbeddings) {
		cols = append(cols, "embedding")
	}
	if include.Has(domain.IncludeContent) {
		cols = append(cols, "content", "source")
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM vector_entries WHERE collection = ?"
	args := []any{name}
	if ids != nil {
		query += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY position"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.VectorEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.VectorEntry
		var blob []byte
		dest := []any{&e.ID}
		if include.Has(domain.IncludeEmbeddings) {
			dest = append(dest, &blob)
		}
		if include.Has(domain.IncludeContent) {
			dest = append(dest, &e.Content, &e.Source)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	if ids != nil {
		entries = orderByIDs(entries, ids)
	}
	return entries, nil
}

// QuerySimilar ranks every entry of the collection against query.
func (s *vectorStore) QuerySimilar(ctx context.Context, name string, query []float32, k int) ([]domain.VectorHit, error) {
	entries, err := s.GetEntries(ctx, name, nil, domain.IncludeEmbeddings)
	if err != nil {
		return nil, err
	}
	return similarity.TopK(query, entries, k), nil
}

// DeleteCollection removes a collection and its entries.
func (s *vectorStore) DeleteCollection(ctx context.Context, name string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM vector_collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *vectorStore) exists(ctx context.Context, q querier, name string) (bool, error) {
	var found string
	err := q.QueryRowContext(ctx, "SELECT name FROM vector_collections WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return true, nil
}

// insertEntries writes entries starting at position start.
func insertEntries(ctx context.Context, tx *sql.Tx, name string, start int, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_entries (collection, id, position, embedding, content, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			content = excluded.content,
			source = excluded.source
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, name, e.ID, start+i,
			float32SliceToBytes(e.Embedding), e.Content, e.Source); err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// orderByIDs returns entries arranged in ids order, skipping unknown IDs.
func orderByIDs(entries []domain.VectorEntry, ids []string) []domain.VectorEntry {
	byID := make(map[string]domain.VectorEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]domain.VectorEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}
