package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

func TestDocumentsCmd_Use(t *testing.T) {
	assert.Equal(t, "documents", documentsCmd.Use)
	assert.Contains(t, documentsCmd.Aliases, "doc")
}

func TestDocumentsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(documentsCmd.Commands()))
	for _, c := range documentsCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"upload", "list", "get", "download", "delete", "watch"}, names)
}

func TestDocumentsCmd_ErrorsWithoutService(t *testing.T) {
	old := documentService
	documentService = nil
	defer func() { documentService = old }()

	_, err := runCommand(t, "documents", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestDocumentsUploadCmd_RequiresFile(t *testing.T) {
	_, err := runCommand(t, "documents", "upload")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestDocumentsUploadCmd_UploadsFiles(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("world!"), 0o600))

	out, err := runCommand(t, "documents", "upload", a, b)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, ts.documents.uploaded)
	assert.Contains(t, out, "Uploaded a.txt (text/plain, 5 B)")
	assert.Contains(t, out, "ID: doc-b.txt")
}

func TestDocumentsUploadCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "documents", "upload", filepath.Join(t.TempDir(), "nope.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, ExitClientError, ExitCode(err))
}

func TestDocumentsUploadCmd_UnsupportedType(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.err = domain.ErrUnsupportedType

	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	_, err := runCommand(t, "documents", "upload", path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, ExitClientError, ExitCode(err))
}

func TestDocumentsListCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Name: notes.md")
	assert.Contains(t, out, "Size: 2.0 KiB")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentsListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.docs = nil

	out, err := runCommand(t, "documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents uploaded.")
}

func TestDocumentsListCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "list", "-o", "json")
	require.NoError(t, err)

	var views []documentView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "doc-1", views[0].ID)
	assert.Equal(t, "text/markdown", views[0].MIMEType)
}

func TestDocumentsGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Uploaded: 2026-03-14 09:26:53")
}

func TestDocumentsGetCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "documents", "get", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, ExitClientError, ExitCode(err))
}

func TestDocumentsDownloadCmd_ToFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	dest := filepath.Join(t.TempDir(), "copy.md")

	out, err := runCommand(t, "documents", "download", "doc-1", "--dest", dest)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\nThe cat sat on the mat.", string(data))
}

func TestDocumentsDownloadCmd_RefusesOverwrite(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	dest := filepath.Join(t.TempDir(), "existing.md")
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o600))

	_, err := runCommand(t, "documents", "download", "doc-1", "-d", dest)

	require.Error(t, err)
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "keep", string(data))
}

func TestDocumentsDownloadCmd_Stdout(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "download", "doc-1", "--dest", "-")

	require.NoError(t, err)
	assert.Equal(t, "# Notes\nThe cat sat on the mat.", out)
}

func TestDocumentsDeleteCmd_ReportsCascade(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")
	assert.Contains(t, out, "Deleted playground pg-1")
}

func TestDocumentsWatchCmd_MissingDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "documents", "watch", filepath.Join(t.TempDir(), "absent"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
