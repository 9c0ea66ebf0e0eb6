package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type mockDocumentService struct {
	docs     []domain.Document
	content  string
	deleted  []string
	err      error
	uploaded []string
}

func (m *mockDocumentService) Upload(_ context.Context, name string, r io.Reader) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.uploaded = append(m.uploaded, name)
	return &domain.Document{
		ID: "doc-" + name, Name: name, MIMEType: "text/plain",
		Size: int64(len(data)), CreatedAt: testTime,
	}, nil
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Open(ctx context.Context, id string) (io.ReadCloser, *domain.Document, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return io.NopCloser(strings.NewReader(m.content)), doc, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) ([]string, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.deleted, nil
}

type mockPlaygroundService struct {
	playgrounds []domain.Playground
	docs        []domain.Document
	points      []domain.Point
	chunks      map[string]string
	err         error
	lastCreate  driving.CreatePlaygroundRequest
}

func (m *mockPlaygroundService) Create(_ context.Context, req driving.CreatePlaygroundRequest) (*domain.Playground, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	title := req.Title
	if title == "" {
		title = domain.DefaultPlaygroundTitle
	}
	return &domain.Playground{
		ID: "pg-new", Title: title, Service: req.Service,
		Model: req.Service.ResolveModel(req.Model), DocumentIDs: req.DocumentIDs, CreatedAt: testTime,
	}, nil
}

func (m *mockPlaygroundService) List(context.Context) ([]domain.Playground, error) {
	return m.playgrounds, m.err
}

func (m *mockPlaygroundService) Get(_ context.Context, id string) (*domain.Playground, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.playgrounds {
		if m.playgrounds[i].ID == id {
			return &m.playgrounds[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPlaygroundService) Rename(ctx context.Context, id, title string) (*domain.Playground, error) {
	pg, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	renamed := *pg
	renamed.Title = title
	return &renamed, nil
}

func (m *mockPlaygroundService) Delete(ctx context.Context, id string) (*domain.Playground, error) {
	return m.Get(ctx, id)
}

func (m *mockPlaygroundService) Documents(ctx context.Context, id string) ([]domain.Document, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.docs, nil
}

func (m *mockPlaygroundService) Points(ctx context.Context, id string) ([]domain.Point, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.points, nil
}

func (m *mockPlaygroundService) Chunk(_ context.Context, _, chunkID string) (string, error) {
	text, ok := m.chunks[chunkID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

type mockQueryService struct {
	result   *domain.QueryResult
	results  []domain.QueryResult
	err      error
	lastText string
}

func (m *mockQueryService) Run(_ context.Context, _, text string) (*domain.QueryResult, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	r.Query.Text = text
	return &r, nil
}

func (m *mockQueryService) List(context.Context, string) ([]domain.QueryResult, error) {
	return m.results, m.err
}

func (m *mockQueryService) Get(context.Context, string) (*domain.QueryResult, error) {
	return m.result, m.err
}

type mockModelCatalog struct {
	models []driving.ModelInfo
	err    error
}

func (m *mockModelCatalog) Models() ([]driving.ModelInfo, error) {
	return m.models, m.err
}

type mockSettingsService struct {
	settings      domain.AppSettings
	lastProvider  *domain.ProviderSettings
	lastStore     *domain.PointStoreSettings
	saved         *domain.AppSettings
	validateErr   error
	lastValidated domain.Service
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.saved = s
	m.settings = *s
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) SetProvider(p domain.ProviderSettings) error {
	m.lastProvider = &p
	return nil
}

func (m *mockSettingsService) SetPointStore(p domain.PointStoreSettings) error {
	m.lastStore = &p
	return nil
}

func (m *mockSettingsService) ValidateProvider(_ context.Context, svc domain.Service) error {
	m.lastValidated = svc
	return m.validateErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents   *mockDocumentService
	playgrounds *mockPlaygroundService
	queries     *mockQueryService
	models      *mockModelCatalog
	settings    *mockSettingsService
}

// setupTestServices installs mocks seeded with one document and one playground.
// The returned cleanup restores the previous services.
func setupTestServices() (*testServices, func()) {
	doc := domain.Document{
		ID: "doc-1", Name: "notes.md", MIMEType: "text/markdown", Size: 2048, CreatedAt: testTime,
	}
	ts := &testServices{
		documents: &mockDocumentService{
			docs:    []domain.Document{doc},
			content: "# Notes\nThe cat sat on the mat.",
			deleted: []string{"pg-1"},
		},
		playgrounds: &mockPlaygroundService{
			playgrounds: []domain.Playground{{
				ID: "pg-1", Title: "Animals", Service: domain.ServiceSentenceTransformers,
				Model: "all-MiniLM-L6-v2", DocumentIDs: []string{"doc-1"}, CreatedAt: testTime,
			}},
			docs:   []domain.Document{doc},
			points: []domain.Point{{ID: "chunk-1", X: 0.5, Y: -1.25}, {ID: "chunk-2", X: -0.5, Y: 1.25}},
			chunks: map[string]string{"chunk-1": "The cat sat\non the mat."},
		},
		queries: &mockQueryService{
			result: &domain.QueryResult{
				Query: domain.Query{ID: "q-1", PlaygroundID: "pg-1", ResultIDs: []string{"chunk-1", "chunk-2"}},
				Point: &domain.Point{ID: "q-1", X: 0.25, Y: 0.75},
			},
		},
		models: &mockModelCatalog{},
		settings: &mockSettingsService{
			settings: domain.DefaultAppSettings(),
		},
	}

	old := Services{
		Documents:   documentService,
		Playgrounds: playgroundService,
		Queries:     queryService,
		Models:      modelCatalog,
		Settings:    settingsService,
	}
	SetServices(Services{
		Documents:   ts.documents,
		Playgrounds: ts.playgrounds,
		Queries:     ts.queries,
		Models:      ts.models,
		Settings:    ts.settings,
	})
	return ts, func() { SetServices(old) }
}

// runCommand executes the root command and resets flag state afterwards.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	documentsFormat = formatText
	downloadDest = ""
	createTitle = ""
	createService = string(domain.ServiceSentenceTransformers)
	createModel = ""
	playgroundsFormat = formatText
	queryFormat = formatText
	queryShowChunks = false
	modelsFormat = formatText
	providerModel = ""
	providerBaseURL = ""
	mongoURI = ""
	mongoDatabase = ""
	chunkSize = 0
	chunkOverlap = -1
	refitPerQuery = false
	settingsTopK = 0
	if f := settingsProjectionCmd.Flags().Lookup("refit-per-query"); f != nil {
		f.Changed = false
	}
}
