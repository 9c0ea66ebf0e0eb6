package services

import (
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// TextExtractor turns a stored document into chunks: it reads the original
// bytes, extracts text with the matching normaliser and runs the
// post-processor pipeline.
type TextExtractor struct {
	documents   driven.DocumentStore
	files       driven.FileStore
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
}

// NewTextExtractor creates a text extractor.
func NewTextExtractor(
	documents driven.DocumentStore,
	files driven.FileStore,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
) *TextExtractor {
	return &TextExtractor{
		documents:   documents,
		files:       files,
		normalisers: normalisers,
		pipeline:    pipeline,
	}
}

// Chunks returns the chunks of a document in order.
// A document without extractable text yields no chunks.
func (e *TextExtractor) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	doc, err := e.documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}

	rc, err := e.files.Open(ctx, doc.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", doc.Name, err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc.Name, err)
	}

	result, err := e.normalisers.Normalise(ctx, &domain.RawDocument{
		DocumentID: doc.ID,
		Name:       doc.Name,
		MIMEType:   doc.MIMEType,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	chunks, err := e.pipeline.Process(ctx, &domain.TextDocument{
		ID:      doc.ID,
		Title:   result.Title,
		Content: result.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", doc.Name, err)
	}

	logger.Debug("Extracted %d chunks from %s (%d chars)", len(chunks), doc.Name, len(result.Content))
	return chunks, nil
}
