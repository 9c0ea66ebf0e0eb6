package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/adapters/driven/config/file"
	"github.com/custodia-labs/playground/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/normalisers"
	"github.com/custodia-labs/playground/internal/postprocessors"
	"github.com/custodia-labs/playground/internal/projection"
)

const embedDims = 8

// fakeEmbedder derives a vector from the letters of each text and the model.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls map[string]int
	texts int
	err   error
	hook  func()
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{calls: make(map[string]int)}
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string, service domain.Service, model string) ([][]float32, error) {
	if f.hook != nil {
		f.hook()
	}
	f.mu.Lock()
	f.calls[string(service)+"/"+model]++
	f.texts += len(texts)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, embedDims)
		for j, r := range strings.ToLower(text) {
			v[int(r)%embedDims] += 1 + float32(j%3)
		}
		v[len(model)%embedDims] += 3
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// testEnv wires every service over memory stores and a temp file store.
type testEnv struct {
	stores      Stores
	locks       *KeyedMutex
	embedder    *fakeEmbedder
	cache       *EmbeddingCache
	builder     *CollectionBuilder
	points      *PointSync
	documents   *DocumentService
	playgrounds *PlaygroundService
	queries     *QueryPipeline
	vectors     *memory.VectorStore
	pointStore  *memory.PointStore
}

func newTestEnv(t *testing.T, opts ...PointSyncOption) *testEnv {
	t.Helper()

	files, err := file.NewFileStore(t.TempDir())
	require.NoError(t, err)

	vectors := memory.NewVectorStore()
	pointStore := memory.NewPointStore()
	stores := Stores{
		Documents:   memory.NewDocumentStore(),
		Playgrounds: memory.NewPlaygroundStore(),
		Embedded:    memory.NewEmbeddedDocumentStore(),
		Queries:     memory.NewQueryStore(),
		Transforms:  memory.NewTransformStore(),
		Vectors:     vectors,
		Points:      pointStore,
		Files:       files,
	}

	pipeline, err := postprocessors.NewChunkerPipeline(domain.ChunkerSettings{ChunkSize: 60})
	require.NoError(t, err)
	registry := normalisers.NewDefaultRegistry()

	locks := NewKeyedMutex()
	embedder := newFakeEmbedder()
	extractor := NewTextExtractor(stores.Documents, stores.Files, registry, pipeline)
	cache := NewEmbeddingCache(stores.Embedded, stores.Vectors, extractor, embedder, locks)
	builder := NewCollectionBuilder(stores.Vectors, cache, locks)
	points := NewPointSync(stores.Points, stores.Transforms, builder, projection.New(), locks, opts...)

	return &testEnv{
		stores:      stores,
		locks:       locks,
		embedder:    embedder,
		cache:       cache,
		builder:     builder,
		points:      points,
		documents:   NewDocumentService(stores, registry, locks),
		playgrounds: NewPlaygroundService(stores, points, locks),
		queries:     NewQueryPipeline(stores.Playgrounds, stores.Queries, stores.Vectors, embedder, builder, points, 0),
		vectors:     vectors,
		pointStore:  pointStore,
	}
}

// threePages is plain text with three page-sized sections.
const threePages = `Cats are small carnivorous mammals. They sleep most of the day.

Dogs were domesticated from wolves. They are loyal companions.

Rivers carry water to the sea. Bridges let people cross them.`

func (e *testEnv) upload(t *testing.T, name, content string) *domain.Document {
	t.Helper()
	doc, err := e.documents.Upload(context.Background(), name, strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func (e *testEnv) playground(t *testing.T, service domain.Service, docIDs ...string) *domain.Playground {
	t.Helper()
	p, err := e.playgrounds.Create(context.Background(), createRequest(service, docIDs...))
	require.NoError(t, err)
	return p
}

// hasVectors reports whether the vector store holds a collection called name.
func (e *testEnv) hasVectors(t *testing.T, name string) bool {
	t.Helper()
	_, err := e.vectors.GetEntries(context.Background(), name, nil, domain.IncludeEmbeddings)
	if errors.Is(err, domain.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}
