package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, mime_type, size, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			mime_type = excluded.mime_type,
			size = excluded.size,
			path = excluded.path
	`, doc.ID, doc.Name, doc.MIMEType, doc.Size, doc.Path, doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, mime_type, size, path, created_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetDocuments retrieves documents by ID in the order given.
func (s *documentStore) GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, mime_type, size, path, created_at
		FROM documents WHERE id IN (`+placeholders(len(ids))+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byID[doc.ID] = *doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, mime_type, size, path, created_at
		FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document. Membership rows and embedding cache
// rows go with it through foreign keys.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Playground Store ====================

// playgroundStore implements driven.PlaygroundStore.
type playgroundStore struct {
	store *Store
}

var _ driven.PlaygroundStore = (*playgroundStore)(nil)

// SavePlayground stores a playground and replaces its document membership.
func (s *playgroundStore) SavePlayground(ctx context.Context, p *domain.Playground) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO playgrounds (id, title, service, model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			service = excluded.service,
			model = excluded.model
	`, p.ID, p.Title, string(p.Service), p.Model, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving playground: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playground_documents WHERE playground_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing playground documents: %w", err)
	}

	for i, docID := range p.DocumentIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playground_documents (playground_id, document_id, position)
			VALUES (?, ?, ?)
		`, p.ID, docID, i)
		if err != nil {
			return fmt.Errorf("saving playground document %s: %w", docID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPlayground retrieves a playground by ID.
func (s *playgroundStore) GetPlayground(ctx context.Context, id string) (*domain.Playground, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, service, model, created_at
		FROM playgrounds WHERE id = ?
	`, id)

	p, err := scanPlayground(row)
	if err != nil {
		return nil, err
	}

	p.DocumentIDs, err = s.documentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlaygrounds returns all playgrounds, newest first.
func (s *playgroundStore) ListPlaygrounds(ctx context.Context) ([]domain.Playground, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, service, model, created_at
		FROM playgrounds ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying playgrounds: %w", err)
	}
	defer rows.Close()

	var playgrounds []domain.Playground //nolint:prealloc // size unknown from query
	for rows.Next() {
		p, err := scanPlayground(rows)
		if err != nil {
			return nil, err
		}
		playgrounds = append(playgrounds, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating playgrounds: %w", err)
	}

	for i := range playgrounds {
		ids, err := s.documentIDs(ctx, playgrounds[i].ID)
		if err != nil {
			return nil, err
		}
		playgrounds[i].DocumentIDs = ids
	}

	return playgrounds, nil
}

// RenamePlayground updates a playground title.
func (s *playgroundStore) RenamePlayground(ctx context.Context, id, title string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE playgrounds SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("renaming playground: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renaming playground: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePlayground removes a playground with its membership, queries and transform.
func (s *playgroundStore) DeletePlayground(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM playgrounds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting playground: %w", err)
	}
	return nil
}

// ListPlaygroundsByDocument returns IDs of playgrounds containing a document.
func (s *playgroundStore) ListPlaygroundsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT playground_id FROM playground_documents
		WHERE document_id = ? ORDER BY playground_id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying playground documents: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func (s *playgroundStore) documentIDs(ctx context.Context, playgroundID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id FROM playground_documents
		WHERE playground_id = ? ORDER BY position
	`, playgroundID)
	if err != nil {
		return nil, fmt.Errorf("querying playground documents: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// ==================== Embedded Document Store ====================

// embeddedDocumentStore implements driven.EmbeddedDocumentStore.
type embeddedDocumentStore struct {
	store *Store
}

var _ driven.EmbeddedDocumentStore = (*embeddedDocumentStore)(nil)

// GetEmbeddedDocument looks up a cache entry by key.
func (s *embeddedDocumentStore) GetEmbeddedDocument(
	ctx context.Context,
	key domain.EmbeddingKey,
) (*domain.EmbeddedDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, service, model, chunk_count, created_at
		FROM embedded_documents
		WHERE document_id = ? AND service = ? AND model = ?
	`, key.DocumentID, string(key.Service), key.Model)

	return scanEmbeddedDocument(row)
}

// CreateEmbeddedDocument inserts a cache entry.
func (s *embeddedDocumentStore) CreateEmbeddedDocument(ctx context.Context, e *domain.EmbeddedDocument) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO embedded_documents (id, document_id, service, model, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.DocumentID, string(e.Service), e.Model, e.ChunkCount, e.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("embedded document %s: %w", e.Key(), domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating embedded document: %w", err)
	}
	return nil
}

// ListEmbeddedDocuments returns every cache entry for a document.
func (s *embeddedDocumentStore) ListEmbeddedDocuments(
	ctx context.Context,
	documentID string,
) ([]domain.EmbeddedDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, service, model, chunk_count, created_at
		FROM embedded_documents WHERE document_id = ?
		ORDER BY created_at, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying embedded documents: %w", err)
	}
	defer rows.Close()

	var entries []domain.EmbeddedDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		e, err := scanEmbeddedDocument(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded documents: %w", err)
	}
	return entries, nil
}

// DeleteEmbeddedDocument removes a cache entry by ID.
func (s *embeddedDocumentStore) DeleteEmbeddedDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM embedded_documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting embedded document: %w", err)
	}
	return nil
}

// ==================== Query Store ====================

// queryStore implements driven.QueryStore.
type queryStore struct {
	store *Store
}

var _ driven.QueryStore = (*queryStore)(nil)

// SaveQuery stores a query.
func (s *queryStore) SaveQuery(ctx context.Context, q *domain.Query) error {
	resultsJSON, err := json.Marshal(q.ResultIDs)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO queries (id, playground_id, text, results, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			results = excluded.results
	`, q.ID, q.PlaygroundID, q.Text, string(resultsJSON), q.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving query: %w", err)
	}
	return nil
}

// GetQuery retrieves a query by ID.
func (s *queryStore) GetQuery(ctx context.Context, id string) (*domain.Query, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, playground_id, text, results, created_at
		FROM queries WHERE id = ?
	`, id)

	return scanQuery(row)
}

// ListQueries returns the queries of a playground, oldest first.
func (s *queryStore) ListQueries(ctx context.Context, playgroundID string) ([]domain.Query, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, playground_id, text, results, created_at
		FROM queries WHERE playground_id = ?
		ORDER BY created_at, id
	`, playgroundID)
	if err != nil {
		return nil, fmt.Errorf("querying queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.Query //nolint:prealloc // size unknown from query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queries: %w", err)
	}
	return queries, nil
}

// DeleteQueries removes every query of a playground.
func (s *queryStore) DeleteQueries(ctx context.Context, playgroundID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM queries WHERE playground_id = ?", playgroundID)
	if err != nil {
		return fmt.Errorf("deleting queries: %w", err)
	}
	return nil
}

// ==================== Transform Store ====================

// transformStore implements driven.TransformStore.
type transformStore struct {
	store *Store
}

var _ driven.TransformStore = (*transformStore)(nil)

// SaveTransform stores or replaces a playground transform.
func (s *transformStore) SaveTransform(ctx context.Context, playgroundID string, t *domain.Transform) error {
	dims := t.Dimensions()
	components := make([]float64, 0, dims*len(t.Components))
	for _, c := range t.Components {
		if len(c) != dims {
			return fmt.Errorf("%w: component has %d dimensions, expected %d", domain.ErrInvalidInput, len(c), dims)
		}
		components = append(components, c...)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO transforms (playground_id, dims, mean, components, samples)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(playground_id) DO UPDATE SET
			dims = excluded.dims,
			mean = excluded.mean,
			components = excluded.components,
			samples = excluded.samples
	`, playgroundID, dims, float64SliceToBytes(t.Mean), float64SliceToBytes(components), t.Samples)
	if err != nil {
		return fmt.Errorf("saving transform: %w", err)
	}
	return nil
}

// GetTransform retrieves a playground transform.
func (s *transformStore) GetTransform(ctx context.Context, playgroundID string) (*domain.Transform, error) {
	var dims, samples int
	var meanBlob, componentsBlob []byte

	err := s.store.db.QueryRowContext(ctx, `
		SELECT dims, mean, components, samples FROM transforms WHERE playground_id = ?
	`, playgroundID).Scan(&dims, &meanBlob, &componentsBlob, &samples)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transform: %w", err)
	}

	flat := bytesToFloat64Slice(componentsBlob)
	var components [][]float64
	for start := 0; dims > 0 && start+dims <= len(flat); start += dims {
		components = append(components, flat[start:start+dims])
	}

	return &domain.Transform{
		Mean:       bytesToFloat64Slice(meanBlob),
		Components: components,
		Samples:    samples,
	}, nil
}

// DeleteTransform removes a playground transform.
func (s *transformStore) DeleteTransform(ctx context.Context, playgroundID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM transforms WHERE playground_id = ?", playgroundID)
	if err != nil {
		return fmt.Errorf("deleting transform: %w", err)
	}
	return nil
}

// ==================== Scanners ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row.
func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Name, &doc.MIMEType, &doc.Size, &doc.Path, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// scanPlayground scans a playground row without its documents.
func scanPlayground(row scanner) (*domain.Playground, error) {
	var p domain.Playground
	var service string
	if err := row.Scan(&p.ID, &p.Title, &service, &p.Model, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning playground: %w", err)
	}
	p.Service = domain.Service(service)
	return &p, nil
}

// scanEmbeddedDocument scans a single cache entry row.
func scanEmbeddedDocument(row scanner) (*domain.EmbeddedDocument, error) {
	var e domain.EmbeddedDocument
	var service string
	if err := row.Scan(&e.ID, &e.DocumentID, &service, &e.Model, &e.ChunkCount, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning embedded document: %w", err)
	}
	e.Service = domain.Service(service)
	return &e, nil
}

// scanQuery scans a single query row.
func scanQuery(row scanner) (*domain.Query, error) {
	var q domain.Query
	var resultsJSON string
	if err := row.Scan(&q.ID, &q.PlaygroundID, &q.Text, &resultsJSON, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning query: %w", err)
	}
	if resultsJSON != "" {
		if err := json.Unmarshal([]byte(resultsJSON), &q.ResultIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling results: %w", err)
		}
	}
	return &q, nil
}

// scanStrings collects a single string column.
func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
