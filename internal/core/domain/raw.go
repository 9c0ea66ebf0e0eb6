package domain

// RawDocument represents the opaque bytes of an uploaded file
// before text extraction.
type RawDocument struct {
	// DocumentID links to the Document the bytes belong to.
	DocumentID string

	// Name is the original file name.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// TextDocument is the extracted text of a document, ready for chunking.
type TextDocument struct {
	// ID is the Document ID.
	ID string

	// Title is the extracted title.
	Title string

	// Content is the full text, pages joined by blank lines.
	Content string
}
