package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// createTestDocument creates a test document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID string) {
	t.Helper()
	doc := &domain.Document{
		ID:        docID,
		Name:      docID + ".txt",
		MIMEType:  "text/plain",
		Size:      12,
		Path:      docID + "/" + docID + ".txt",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), doc))
}

// createTestPlayground creates a playground over the given documents.
func createTestPlayground(t *testing.T, store *Store, id string, docIDs ...string) *domain.Playground {
	t.Helper()
	p := &domain.Playground{
		ID:          id,
		Title:       "Playground " + id,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Service:     domain.ServiceSentenceTransformers,
		Model:       "all-MiniLM-L6-v2",
		DocumentIDs: docIDs,
	}
	require.NoError(t, store.PlaygroundStore().SavePlayground(context.Background(), p))
	return p
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "playground.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	createTestDocument(t, first, "doc-1")
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 3, version)

	doc, err := second.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.txt", doc.Name)
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.125}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
