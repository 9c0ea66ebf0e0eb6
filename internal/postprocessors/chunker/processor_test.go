package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/playground/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
		if len(p.separators) != 5 {
			t.Errorf("expected 5 separators, got %d", len(p.separators))
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithSeparators())
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if len(p.separators) != len(DefaultSeparators) {
			t.Errorf("expected default separators, got %v", p.separators)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()
	for _, content := range []string{"", "   ", "\n\n\t\n"} {
		chunks, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc-1", Content: content}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", content, len(chunks))
		}
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p := New()
	doc := &domain.TextDocument{ID: "doc-1", Content: "  Hello, world.  "}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Hello, world." {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
	if chunks[0].DocumentID != "doc-1" {
		t.Errorf("expected document ID doc-1, got %s", chunks[0].DocumentID)
	}
	if chunks[0].ID == "" {
		t.Error("expected chunk ID to be set")
	}
}

func TestProcessor_Split_Paragraphs(t *testing.T) {
	p := New(WithChunkSize(20))

	got := p.Split("first paragraph\n\nsecond paragraph\n\nthird")
	want := []string{"first paragraph", "second paragraph", "third"}

	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestProcessor_Split_MergesSmallPieces(t *testing.T) {
	p := New(WithChunkSize(30))

	got := p.Split("a b\n\nc d\n\ne f")
	if len(got) != 1 {
		t.Fatalf("expected pieces merged into 1 chunk, got %q", got)
	}
	if got[0] != "a b\n\nc d\n\ne f" {
		t.Errorf("unexpected merged chunk %q", got[0])
	}
}

func TestProcessor_Split_FallsBackToFinerSeparators(t *testing.T) {
	p := New(WithChunkSize(10))

	got := p.Split("one two three four five six")
	for _, c := range got {
		if utf8.RuneCountInString(c) > 10 {
			t.Errorf("chunk %q exceeds budget", c)
		}
	}
	if strings.Join(got, " ") != "one two three four five six" {
		t.Errorf("words lost or reordered: %q", got)
	}
}

func TestProcessor_Split_CharacterBoundary(t *testing.T) {
	p := New(WithChunkSize(4))

	got := p.Split("abcdefghij")
	want := []string{"abcd", "efgh", "ij"}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestProcessor_Process_LargeContent(t *testing.T) {
	p := New()
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("This sentence is part of a long paragraph of sample text. ")
		if i%10 == 9 {
			sb.WriteString("\n\n")
		}
	}

	chunks, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc-1", Content: sb.String()}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	seen := make(map[string]bool)
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("expected position %d, got %d", i, c.Position)
		}
		if n := utf8.RuneCountInString(c.Content); n > DefaultChunkSize {
			t.Errorf("chunk %d has %d characters", i, n)
		}
		if strings.TrimSpace(c.Content) != c.Content || c.Content == "" {
			t.Errorf("chunk %d not trimmed: %q", i, c.Content)
		}
		if seen[c.ID] {
			t.Errorf("duplicate chunk ID %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestProcessor_Process_NoOverlapByDefault(t *testing.T) {
	p := New(WithChunkSize(12))

	got := p.Split("aaaa bbbb cccc dddd")
	joined := strings.Join(got, " ")
	if joined != "aaaa bbbb cccc dddd" {
		t.Errorf("expected chunks to partition the text, got %q", got)
	}
}

func TestProcessor_Process_Overlap(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(5))

	got := p.Split("aaaa bbbb cccc")
	if len(got) < 2 {
		t.Fatalf("expected at least 2 chunks, got %q", got)
	}
	if !strings.Contains(got[1], "bbbb") {
		t.Errorf("expected overlap to carry bbbb into second chunk, got %q", got)
	}
}

func TestProcessor_Process_IgnoresInputChunks(t *testing.T) {
	p := New()
	input := []domain.Chunk{{ID: "existing", Content: "old"}}

	chunks, err := p.Process(context.Background(), &domain.TextDocument{ID: "doc-1", Content: "new text"}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "new text" {
		t.Errorf("expected chunks from document content, got %+v", chunks)
	}
}

func TestProcessor_Process_Unicode(t *testing.T) {
	p := New(WithChunkSize(3))

	got := p.Split("héllo")
	for _, c := range got {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %q is not valid UTF-8", c)
		}
	}
	if strings.Join(got, "") != "héllo" {
		t.Errorf("unexpected chunks %q", got)
	}
}
