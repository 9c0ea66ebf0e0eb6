package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
)

func TestQueryRunCmd_RequiresText(t *testing.T) {
	_, err := runCommand(t, "query", "run", "pg-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestQueryRunCmd_JoinsArgs(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "query", "run", "pg-1", "where", "is", "the", "cat")

	require.NoError(t, err)
	assert.Equal(t, "where is the cat", ts.queries.lastText)
	assert.Contains(t, out, "Query: where is the cat")
	assert.Contains(t, out, "Point: (0.2500, 0.7500)")
	assert.Contains(t, out, "1. chunk-1")
	assert.Contains(t, out, "2. chunk-2")
}

func TestQueryRunCmd_WithChunks(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "query", "run", "pg-1", "cat", "--chunks")

	require.NoError(t, err)
	assert.Contains(t, out, "The cat sat on the mat.", "whitespace is collapsed")
	assert.Contains(t, out, "(chunk unavailable:")
}

func TestQueryRunCmd_NoContent(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.queries.err = domain.ErrNoContent

	_, err := runCommand(t, "query", "run", "pg-1", "cat")

	assert.ErrorIs(t, err, domain.ErrNoContent)
	assert.Equal(t, ExitClientError, ExitCode(err))
}

func TestQueryRunCmd_ProviderFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.queries.err = domain.ErrProviderFailure

	_, err := runCommand(t, "query", "run", "pg-1", "cat")

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, ExitServerError, ExitCode(err))
}

func TestQueryRunCmd_NoPoint(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.queries.result.Point = nil
	ts.queries.result.Query.ResultIDs = nil

	out, err := runCommand(t, "query", "run", "pg-1", "cat")

	require.NoError(t, err)
	assert.Contains(t, out, "Point: (none)")
	assert.Contains(t, out, "No matching chunks.")
}

func TestQueryRunCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "query", "run", "pg-1", "cat", "-o", "json")
	require.NoError(t, err)

	var view queryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "cat", view.Text)
	assert.Equal(t, []string{"chunk-1", "chunk-2"}, view.ResultIDs)
	require.NotNil(t, view.Point)
	assert.InDelta(t, 0.75, view.Point.Y, 1e-9)
}

func TestQueryListCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.queries.results = []domain.QueryResult{{
		Query: domain.Query{ID: "q-1", Text: "cat", ResultIDs: []string{"chunk-1"}, CreatedAt: testTime},
	}}

	out, err := runCommand(t, "query", "list", "pg-1")

	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-14 09:26:53  cat")
	assert.Contains(t, out, "Point:   (none)")
	assert.Contains(t, out, "Matches: 1")
	assert.Contains(t, out, "Total: 1 queries")
}

func TestQueryListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "query", "list", "pg-1")

	require.NoError(t, err)
	assert.Contains(t, out, "No queries yet.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
