// Package pdf provides a Normaliser for PDF documents backed by poppler's
// pdftotext. The binary is optional; without it PDF uploads are rejected
// as unsupported.
package pdf
