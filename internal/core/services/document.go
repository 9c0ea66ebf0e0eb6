package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
	"github.com/custodia-labs/playground/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// sniffLen is the number of leading bytes used for content type detection.
const sniffLen = 512

// DocumentService manages uploaded documents and their cascades.
type DocumentService struct {
	stores      Stores
	normalisers driven.NormaliserRegistry
	locks       *KeyedMutex
}

// NewDocumentService creates a document service.
func NewDocumentService(stores Stores, normalisers driven.NormaliserRegistry, locks *KeyedMutex) *DocumentService {
	return &DocumentService{stores: stores, normalisers: normalisers, locks: locks}
}

// Upload stores a file and records it as a document.
func (s *DocumentService) Upload(ctx context.Context, name string, r io.Reader) (*domain.Document, error) {
	name = cleanName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	mimeType := s.normalisers.DetectMIMEType(name, head)
	if !s.normalisers.Supports(mimeType) {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, name, mimeType)
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		Name:      name,
		MIMEType:  mimeType,
		CreatedAt: time.Now(),
	}
	doc.Path = doc.ID + "/" + name

	size, err := s.stores.Files.Save(ctx, doc.Path, br)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", name, err)
	}
	doc.Size = size

	if err := s.stores.Documents.SaveDocument(ctx, doc); err != nil {
		if delErr := s.stores.Files.Delete(ctx, doc.Path); delErr != nil {
			logger.Warn("Failed to remove orphaned upload %s: %v", doc.Path, delErr)
		}
		return nil, fmt.Errorf("record %s: %w", name, err)
	}

	logger.Info("Uploaded %s as %s (%s, %d bytes)", name, doc.ID, mimeType, size)
	return doc, nil
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.stores.Documents.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.stores.Documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return doc, nil
}

// Open returns the original bytes of a document.
func (s *DocumentService) Open(ctx context.Context, documentID string) (io.ReadCloser, *domain.Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.stores.Files.Open(ctx, doc.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", doc.Name, err)
	}
	return rc, doc, nil
}

// Delete removes a document. Every playground containing it is deleted
// first, then its cached collections, its file and finally its row.
func (s *DocumentService) Delete(ctx context.Context, documentID string) ([]string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	playgroundIDs, err := s.stores.Playgrounds.ListPlaygroundsByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list playgrounds of %s: %w", doc.ID, err)
	}
	deleted := make([]string, 0, len(playgroundIDs))
	for _, id := range playgroundIDs {
		if err := s.stores.deletePlaygroundLocked(ctx, s.locks, id); err != nil {
			return deleted, fmt.Errorf("delete playground %s: %w", id, err)
		}
		deleted = append(deleted, id)
	}

	cached, err := s.stores.Embedded.ListEmbeddedDocuments(ctx, doc.ID)
	if err != nil {
		return deleted, fmt.Errorf("list cache entries of %s: %w", doc.ID, err)
	}
	for _, e := range cached {
		unlock, err := s.locks.Lock(ctx, embedLockPrefix+e.Key().String())
		if err != nil {
			return deleted, fmt.Errorf("lock %s: %w", e.Key(), err)
		}
		err = s.deleteCacheEntry(ctx, e)
		unlock()
		if err != nil {
			return deleted, err
		}
	}

	if err := s.stores.Files.Delete(ctx, doc.Path); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return deleted, fmt.Errorf("delete file %s: %w", doc.Path, err)
	}
	if err := s.stores.Documents.DeleteDocument(ctx, doc.ID); err != nil {
		return deleted, fmt.Errorf("delete document %s: %w", doc.ID, err)
	}

	logger.Info("Deleted document %s with %d cache entries and %d playgrounds", doc.ID, len(cached), len(deleted))
	return deleted, nil
}

// deleteCacheEntry drops the row before the collection so a reader never
// finds a row whose collection is gone.
func (s *DocumentService) deleteCacheEntry(ctx context.Context, e domain.EmbeddedDocument) error {
	if err := s.stores.Embedded.DeleteEmbeddedDocument(ctx, e.ID); err != nil {
		return fmt.Errorf("delete cache entry %s: %w", e.ID, err)
	}
	if err := s.stores.Vectors.DeleteCollection(ctx, e.CollectionName()); err != nil {
		return fmt.Errorf("delete collection %s: %w", e.CollectionName(), err)
	}
	return nil
}

// cleanName reduces an upload name to its base file name.
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
