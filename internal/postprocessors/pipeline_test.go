package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.TextDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return append([]domain.Chunk(nil), m.chunks...), nil
	}
	return chunks, nil
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "first"})
	p.Add(&mockProcessor{name: "second"})

	if p.Len() != 2 {
		t.Fatalf("expected 2 processors, got %d", p.Len())
	}
	names := p.Names()
	if names[0] != "first" || names[1] != "second" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	doc := &domain.TextDocument{ID: "doc", Content: "text"}

	chunks, err := NewPipeline().Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected nil chunks from empty pipeline, got %v", chunks)
	}
}

func TestPipeline_Process_LastProcessorWins(t *testing.T) {
	p := NewPipeline(
		&mockProcessor{name: "first", chunks: []domain.Chunk{{ID: "c1", Content: "first"}}},
		&mockProcessor{name: "second", chunks: []domain.Chunk{
			{ID: "c1", Content: "modified"},
			{ID: "c2", Content: "added"},
		}},
	)

	chunks, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Content != "modified" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestPipeline_Process_RenumbersAndDropsBlank(t *testing.T) {
	p := NewPipeline(&mockProcessor{name: "mock", chunks: []domain.Chunk{
		{ID: "a", Content: "alpha", Position: 7},
		{ID: "b", Content: "  \n"},
		{ID: "c", Content: "gamma", Position: 3, DocumentID: "other"},
	}})

	chunks, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("chunk %s: expected position %d, got %d", c.ID, i, c.Position)
		}
		if c.DocumentID != "doc" {
			t.Errorf("chunk %s: expected document doc, got %q", c.ID, c.DocumentID)
		}
	}
	if chunks[1].ID != "c" {
		t.Errorf("expected order to be kept, got %s", chunks[1].ID)
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc", Content: "text"})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestPipeline_Process_Chunker(t *testing.T) {
	p, err := NewChunkerPipeline(domain.ChunkerSettings{ChunkSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := &domain.TextDocument{ID: "doc", Content: "First paragraph here.\n\nSecond paragraph here."}
	chunks, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c.Content)) > 20 {
			t.Errorf("chunk exceeds size: %q", c.Content)
		}
	}
}
