package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

func testEntries() []domain.VectorEntry {
	return []domain.VectorEntry{
		{ID: "c1", Embedding: []float32{1, 0, 0}, Content: "alpha"},
		{ID: "c2", Embedding: []float32{0, 1, 0}, Content: "beta"},
		{ID: "c3", Embedding: []float32{0.9, 0.1, 0}, Content: "gamma"},
	}
}

// hasCollection reports whether vs holds a collection called name.
func hasCollection(t *testing.T, vs driven.VectorStore, name string) bool {
	t.Helper()
	_, err := vs.GetEntries(context.Background(), name, nil, domain.IncludeEmbeddings)
	if errors.Is(err, domain.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestVectorStore_CreateAndExists(t *testing.T) {
	store := setupTestStore(t)
	vs := store.VectorStore()
	ctx := context.Background()

	assert.False(t, hasCollection(t, vs, "emb-1"))

	require.NoError(t, vs.CreateCollection(ctx, "emb-1", testEntries()))

	assert.True(t, hasCollection(t, vs, "emb-1"))

	err := vs.CreateCollection(ctx, "emb-1", nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestVectorStore_CreateIsAtomic(t *testing.T) {
	store := setupTestStore(t)
	vs := store.VectorStore()
	ctx := context.Background()

	// A repeated entry ID overwrites the earlier one.
	entries := append(testEntries(), domain.VectorEntry{ID: "c1", Embedding: []float32{0, 0, 1}})
	require.NoError(t, vs.CreateCollection(ctx, "ok", entries))

	got, err := vs.GetEntries(ctx, "ok", nil, domain.IncludeEmbeddings)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, vs.CreateCollection(cancelled, "never", testEntries()))

	assert.False(t, hasCollection(t, vs, "never"))
}

func TestVectorStore_GetEntries(t *testing.T) {
	store := setupTestStore(t)
	vs := store.VectorStore()
	ctx := context.Background()
	require.NoError(t, vs.CreateCollection(ctx, "emb-1", testEntries()))

	all, err := vs.GetEntries(ctx, "emb-1", nil, domain.IncludeAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "beta", all[1].Content)
	assert.Equal(t, []float32{0, 1, 0}, all[1].Embedding)

	vecsOnly, err := vs.GetEntries(ctx, "emb-1", nil, domain.IncludeEmbeddings)
	require.NoError(t, err)
	assert.Empty(t, vecsOnly[0].Content)
	assert.NotEmpty(t, vecsOnly[0].Embedding)

	textOnly, err := vs.GetEntries(ctx, "emb-1", []string{"c3", "missing", "c1"}, domain.IncludeContent)
	require.NoError(t, err)
	require.Len(t, textOnly, 2)
	assert.Equal(t, "gamma", textOnly[0].Content)
	assert.Equal(t, "alpha", textOnly[1].Content)
	assert.Nil(t, textOnly[0].Embedding)

	_, err = vs.GetEntries(ctx, "nope", nil, domain.IncludeAll)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVectorStore_QuerySimilar(t *testing.T) {
	store := setupTestStore(t)
	vs := store.VectorStore()
	ctx := context.Background()
	require.NoError(t, vs.CreateCollection(ctx, "emb-1", testEntries()))

	hits, err := vs.QuerySimilar(ctx, "emb-1", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ID)
	assert.Equal(t, "c3", hits[1].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

	hits, err = vs.QuerySimilar(ctx, "emb-1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	_, err = vs.QuerySimilar(ctx, "missing", []float32{1}, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVectorStore_DeleteCollection(t *testing.T) {
	store := setupTestStore(t)
	vs := store.VectorStore()
	ctx := context.Background()
	require.NoError(t, vs.CreateCollection(ctx, "emb-1", testEntries()))

	require.NoError(t, vs.DeleteCollection(ctx, "emb-1"))
	require.NoError(t, vs.DeleteCollection(ctx, "emb-1"))

	assert.False(t, hasCollection(t, vs, "emb-1"))

	// The name can be reused with fresh entries.
	require.NoError(t, vs.CreateCollection(ctx, "emb-1", testEntries()[:1]))
	got, err := vs.GetEntries(ctx, "emb-1", nil, domain.IncludeAll)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
