package mcp

import (
	"context"
	"io"
	"strings"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// mockPlaygroundService is a mock implementation of driving.PlaygroundService.
type mockPlaygroundService struct {
	playgrounds []domain.Playground
	points      []domain.Point
	chunks      map[string]string
	err         error
}

func (m *mockPlaygroundService) Create(
	_ context.Context,
	_ driving.CreatePlaygroundRequest,
) (*domain.Playground, error) {
	return nil, m.err
}

func (m *mockPlaygroundService) List(_ context.Context) ([]domain.Playground, error) {
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

func (m *mockPlaygroundService) Rename(ctx context.Context, id, _ string) (*domain.Playground, error) {
	return m.Get(ctx, id)
}

func (m *mockPlaygroundService) Delete(ctx context.Context, id string) (*domain.Playground, error) {
	return m.Get(ctx, id)
}

func (m *mockPlaygroundService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockPlaygroundService) Points(_ context.Context, _ string) ([]domain.Point, error) {
	return m.points, m.err
}

func (m *mockPlaygroundService) Chunk(_ context.Context, _, chunkID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.chunks[chunkID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result  *domain.QueryResult
	results []domain.QueryResult
	err     error

	lastPlayground string
	lastText       string
}

func (m *mockQueryService) Run(_ context.Context, playgroundID, text string) (*domain.QueryResult, error) {
	m.lastPlayground = playgroundID
	m.lastText = text
	return m.result, m.err
}

func (m *mockQueryService) List(_ context.Context, _ string) ([]domain.QueryResult, error) {
	return m.results, m.err
}

func (m *mockQueryService) Get(_ context.Context, _ string) (*domain.QueryResult, error) {
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	document *domain.Document
	content  string
	err      error
}

func (m *mockDocumentService) Upload(_ context.Context, _ string, _ io.Reader) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.document == nil {
		return nil, m.err
	}
	return []domain.Document{*m.document}, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Open(_ context.Context, _ string) (io.ReadCloser, *domain.Document, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.content)), m.document, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

// mockModelCatalog is a mock implementation of driving.ModelCatalog.
type mockModelCatalog struct {
	models []driving.ModelInfo
	err    error
}

func (m *mockModelCatalog) Models() ([]driving.ModelInfo, error) {
	return m.models, m.err
}
