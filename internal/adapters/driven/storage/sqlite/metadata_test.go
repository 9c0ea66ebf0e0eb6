package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// ==================== Document Store Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1")

	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "doc-1.txt", doc.Name)
	assert.Equal(t, "text/plain", doc.MIMEType)
	assert.Equal(t, int64(12), doc.Size)
	assert.Equal(t, "doc-1/doc-1.txt", doc.Path)
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetDocuments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "a")
	createTestDocument(t, store, "b")
	createTestDocument(t, store, "c")

	docs, err := store.DocumentStore().GetDocuments(ctx, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)

	_, err = store.DocumentStore().GetDocuments(ctx, []string{"a", "zzz"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err = store.DocumentStore().GetDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ListAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "a")
	createTestDocument(t, store, "b")

	docs, err := store.DocumentStore().ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "a"))

	docs, err = store.DocumentStore().ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)
}

// ==================== Playground Store Tests ====================

func TestPlaygroundStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "d1")
	createTestDocument(t, store, "d2")
	createTestPlayground(t, store, "pg-1", "d2", "d1")

	p, err := store.PlaygroundStore().GetPlayground(ctx, "pg-1")
	require.NoError(t, err)
	assert.Equal(t, "Playground pg-1", p.Title)
	assert.Equal(t, domain.ServiceSentenceTransformers, p.Service)
	assert.Equal(t, "all-MiniLM-L6-v2", p.Model)
	assert.Equal(t, []string{"d2", "d1"}, p.DocumentIDs)
}

func TestPlaygroundStore_RejectsUnknownDocument(t *testing.T) {
	store := setupTestStore(t)

	p := &domain.Playground{
		ID:          "pg-1",
		Title:       "x",
		CreatedAt:   time.Now(),
		Service:     domain.ServiceOpenAI,
		Model:       "m",
		DocumentIDs: []string{"ghost"},
	}
	assert.Error(t, store.PlaygroundStore().SavePlayground(context.Background(), p))

	_, err := store.PlaygroundStore().GetPlayground(context.Background(), "pg-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaygroundStore_Rename(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestPlayground(t, store, "pg-1")

	require.NoError(t, store.PlaygroundStore().RenamePlayground(ctx, "pg-1", "Renamed"))
	p, err := store.PlaygroundStore().GetPlayground(ctx, "pg-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)

	err = store.PlaygroundStore().RenamePlayground(ctx, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaygroundStore_ListAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "d1")
	createTestPlayground(t, store, "pg-1", "d1")
	createTestPlayground(t, store, "pg-2", "d1")

	list, err := store.PlaygroundStore().ListPlaygrounds(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, p := range list {
		assert.Equal(t, []string{"d1"}, p.DocumentIDs)
	}

	require.NoError(t, store.QueryStore().SaveQuery(ctx, &domain.Query{
		ID: "q-1", PlaygroundID: "pg-1", Text: "hello", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.PlaygroundStore().DeletePlayground(ctx, "pg-1"))

	_, err = store.PlaygroundStore().GetPlayground(ctx, "pg-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.QueryStore().GetQuery(ctx, "q-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaygroundStore_ListPlaygroundsByDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "d1")
	createTestDocument(t, store, "d2")
	createTestPlayground(t, store, "pg-a", "d1", "d2")
	createTestPlayground(t, store, "pg-b", "d2")

	ids, err := store.PlaygroundStore().ListPlaygroundsByDocument(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, []string{"pg-a", "pg-b"}, ids)

	ids, err = store.PlaygroundStore().ListPlaygroundsByDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pg-a"}, ids)

	// Deleting a document drops its membership rows.
	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "d2"))
	p, err := store.PlaygroundStore().GetPlayground(ctx, "pg-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, p.DocumentIDs)
}

// ==================== Embedded Document Store Tests ====================

func TestEmbeddedDocumentStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "d1")
	eds := store.EmbeddedDocumentStore()

	key := domain.EmbeddingKey{DocumentID: "d1", Service: domain.ServiceOpenAI, Model: "ada"}
	_, err := eds.GetEmbeddedDocument(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entry := &domain.EmbeddedDocument{
		ID: "emb-1", DocumentID: "d1", Service: domain.ServiceOpenAI, Model: "ada",
		ChunkCount: 3, CreatedAt: time.Now(),
	}
	require.NoError(t, eds.CreateEmbeddedDocument(ctx, entry))

	got, err := eds.GetEmbeddedDocument(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "emb-1", got.ID)
	assert.Equal(t, 3, got.ChunkCount)

	// Same key again is a conflict, even with a different ID.
	dup := *entry
	dup.ID = "emb-2"
	err = eds.CreateEmbeddedDocument(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// A different model is a different key.
	other := *entry
	other.ID = "emb-3"
	other.Model = "text-embedding-3-small"
	require.NoError(t, eds.CreateEmbeddedDocument(ctx, &other))

	list, err := eds.ListEmbeddedDocuments(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, eds.DeleteEmbeddedDocument(ctx, "emb-1"))
	_, err = eds.GetEmbeddedDocument(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Query Store Tests ====================

func TestQueryStore_SaveGetList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestPlayground(t, store, "pg-1")
	qs := store.QueryStore()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, qs.SaveQuery(ctx, &domain.Query{
		ID: "q-2", PlaygroundID: "pg-1", Text: "second", ResultIDs: []string{"c3"}, CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, qs.SaveQuery(ctx, &domain.Query{
		ID: "q-1", PlaygroundID: "pg-1", Text: "first", ResultIDs: []string{"c1", "c2"}, CreatedAt: base,
	}))

	q, err := qs.GetQuery(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, "first", q.Text)
	assert.Equal(t, []string{"c1", "c2"}, q.ResultIDs)

	list, err := qs.ListQueries(ctx, "pg-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "q-1", list[0].ID)
	assert.Equal(t, "q-2", list[1].ID)

	require.NoError(t, qs.DeleteQueries(ctx, "pg-1"))
	list, err = qs.ListQueries(ctx, "pg-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ==================== Transform Store Tests ====================

func TestTransformStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestPlayground(t, store, "pg-1")
	ts := store.TransformStore()

	_, err := ts.GetTransform(ctx, "pg-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tr := &domain.Transform{
		Mean:       []float64{0.5, 1.5, -2},
		Components: [][]float64{{1, 0, 0}, {0, 0.6, 0.8}},
		Samples:    7,
	}
	require.NoError(t, ts.SaveTransform(ctx, "pg-1", tr))

	got, err := ts.GetTransform(ctx, "pg-1")
	require.NoError(t, err)
	assert.Equal(t, tr.Mean, got.Mean)
	assert.Equal(t, tr.Components, got.Components)
	assert.Equal(t, 7, got.Samples)

	bad := &domain.Transform{Mean: []float64{1, 2}, Components: [][]float64{{1}, {0, 1}}}
	assert.ErrorIs(t, ts.SaveTransform(ctx, "pg-1", bad), domain.ErrInvalidInput)

	require.NoError(t, ts.DeleteTransform(ctx, "pg-1"))
	_, err = ts.GetTransform(ctx, "pg-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
