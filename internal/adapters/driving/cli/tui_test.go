package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/playground/internal/adapters/driving/tui"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Contains(t, tuiCmd.Long, "Controls:")
}

func TestTUICmd_ErrorsWithoutServices(t *testing.T) {
	oldPlaygrounds, oldQueries := playgroundService, queryService
	playgroundService, queryService = nil, nil
	defer func() {
		playgroundService, queryService = oldPlaygrounds, oldQueries
	}()

	_, err := runCommand(t, "tui")

	require.Error(t, err)
	assert.ErrorIs(t, err, tui.ErrMissingPlaygroundService)
}

func TestTUICmd_RejectsArgs(t *testing.T) {
	_, err := runCommand(t, "tui", "extra")

	assert.Error(t, err)
}

func TestMCPServeCmd_ErrorsWithoutServices(t *testing.T) {
	oldPlaygrounds, oldQueries := playgroundService, queryService
	playgroundService, queryService = nil, nil
	defer func() {
		playgroundService, queryService = oldPlaygrounds, oldQueries
	}()

	_, err := runCommand(t, "mcp", "serve")

	assert.Error(t, err)
}
