// Package mcp provides an MCP (Model Context Protocol) server adapter for the playground.
// It lets AI assistants list playgrounds, run similarity queries and read chunks.
package mcp

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// ErrMissingPlaygroundService is returned when the playground service is not provided.
var ErrMissingPlaygroundService = errors.New("mcp: playground service is required")

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// toolError reports caller mistakes as a tool result the assistant can read
// and correct. Anything else is returned as a protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	if !domain.IsClientError(err) {
		return nil, err
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}, nil
}
