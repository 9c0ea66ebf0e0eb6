package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

func testModels() []driving.ModelInfo {
	return []driving.ModelInfo{
		{
			Service: domain.ServiceSentenceTransformers, DisplayName: "Sentence Transformers",
			Model: "all-MiniLM-L6-v2", Dimensions: 384, Configured: true,
		},
		{
			Service: domain.ServiceOpenAI, DisplayName: "OpenAI",
			Model: "text-embedding-3-small", Dimensions: 1536, RequiresAPIKey: true,
		},
	}
}

func TestModelsCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.models.models = testModels()

	out, err := runCommand(t, "models")

	require.NoError(t, err)
	assert.Contains(t, out, "all-MiniLM-L6-v2")
	assert.Contains(t, out, "384 dims  ready")
	assert.Contains(t, out, "1536 dims  not configured")
}

func TestModelsCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.models.models = testModels()

	out, err := runCommand(t, "models", "--format", "json")
	require.NoError(t, err)

	var views []modelView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "openai", views[1].Service)
	assert.True(t, views[1].RequiresAPIKey)
	assert.False(t, views[1].Configured)
}

func TestModelsCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.models.err = errors.New("config unreadable")

	_, err := runCommand(t, "models")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config unreadable")
}

func TestModelsCmd_RejectsArgs(t *testing.T) {
	_, err := runCommand(t, "models", "extra")

	assert.Error(t, err)
}
