package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.ElementsMatch(t, []string{"text/markdown", "text/x-markdown"}, mimeTypes)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "document.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Hello World\r\n\r\nThis is a test."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", result.Title)
	assert.Equal(t, "Hello World\n\nThis is a test.", result.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_TitleFallsBackToName(t *testing.T) {
	raw := &domain.RawDocument{Name: "my_notes.md", Content: []byte("## Section\n\nBody")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "my notes", result.Title)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "emphasis and inline code",
			input:    "Some **bold** and *italic* and `code` text.",
			expected: "Some bold and italic and code text.",
		},
		{
			name:     "links and images keep their text",
			input:    "[link](http://example.com) and ![alt](img.png)",
			expected: "link and alt",
		},
		{
			name:     "identifiers with underscores survive",
			input:    "call snake_case_name here",
			expected: "call snake_case_name here",
		},
		{
			name:     "list markers",
			input:    "- one\n- two\n1. three",
			expected: "one\ntwo\nthree",
		},
		{
			name:     "code fences dropped, code kept",
			input:    "```go\nfmt.Println()\n```",
			expected: "fmt.Println()",
		},
		{
			name:     "front matter removed",
			input:    "---\ntitle: x\n---\nBody",
			expected: "Body",
		},
		{
			name:     "blockquote and rule",
			input:    "> quoted\n\n***\n\nafter",
			expected: "quoted\n\nafter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
