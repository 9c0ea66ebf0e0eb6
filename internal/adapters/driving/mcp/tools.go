package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// chunkPreviewLen bounds the chunk text returned with query results.
const chunkPreviewLen = 500

// ListPlaygroundsInput is the input schema for the list_playgrounds tool.
type ListPlaygroundsInput struct{}

// ListPlaygroundsOutput is the output schema for the list_playgrounds tool.
type ListPlaygroundsOutput struct {
	Playgrounds []PlaygroundOutput `json:"playgrounds"`
	Count       int                `json:"count"`
}

// PlaygroundOutput describes one playground.
type PlaygroundOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Service     string   `json:"service"`
	Model       string   `json:"model"`
	DocumentIDs []string `json:"document_ids"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	PlaygroundID string `json:"playground_id" jsonschema:"the playground to search"`
	Text         string `json:"text" jsonschema:"the free-text query"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	QueryID string         `json:"query_id"`
	X       *float64       `json:"x,omitempty"`
	Y       *float64       `json:"y,omitempty"`
	Results []ResultOutput `json:"results"`
}

// ResultOutput is one matched chunk, nearest first.
type ResultOutput struct {
	Rank    int    `json:"rank"`
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text,omitempty"`
}

// ChunkInput is the input schema for the get_chunk tool.
type ChunkInput struct {
	PlaygroundID string `json:"playground_id" jsonschema:"the playground containing the chunk"`
	ChunkID      string `json:"chunk_id" jsonschema:"the chunk id returned by query"`
}

// ChunkOutput is the output schema for the get_chunk tool.
type ChunkOutput struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
}

// ListModelsInput is the input schema for the list_models tool.
type ListModelsInput struct{}

// ListModelsOutput is the output schema for the list_models tool.
type ListModelsOutput struct {
	Models []ModelOutput `json:"models"`
}

// ModelOutput describes one embedding service.
type ModelOutput struct {
	Service    string `json:"service"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Configured bool   `json:"configured"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_playgrounds",
		Description: "List playgrounds with their embedding model and documents",
	}, s.handleListPlaygrounds)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the chunks of a playground nearest to a free-text query",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_chunk",
		Description: "Read the full text of a playground chunk",
	}, s.handleGetChunk)

	if s.ports.Models != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_models",
			Description: "List the embedding services a playground can use",
		}, s.handleListModels)
	}
}

func (s *Server) handleListPlaygrounds(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListPlaygroundsInput,
) (*mcp.CallToolResult, ListPlaygroundsOutput, error) {
	pgs, err := s.ports.Playgrounds.List(ctx)
	if err != nil {
		return nil, ListPlaygroundsOutput{}, err
	}

	output := ListPlaygroundsOutput{
		Playgrounds: make([]PlaygroundOutput, len(pgs)),
		Count:       len(pgs),
	}
	for i := range pgs {
		output.Playgrounds[i] = toPlaygroundOutput(pgs[i])
	}
	return nil, output, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	result, err := s.ports.Queries.Run(ctx, input.PlaygroundID, input.Text)
	if err != nil {
		res, err := toolError(err)
		return res, QueryOutput{}, err
	}

	output := QueryOutput{
		QueryID: result.Query.ID,
		Results: make([]ResultOutput, len(result.Query.ResultIDs)),
	}
	if result.Point != nil {
		output.X = &result.Point.X
		output.Y = &result.Point.Y
	}
	for i, id := range result.Query.ResultIDs {
		output.Results[i] = ResultOutput{Rank: i + 1, ChunkID: id}
		// The text is a convenience; a missing chunk still reports the match.
		if text, err := s.ports.Playgrounds.Chunk(ctx, input.PlaygroundID, id); err == nil {
			output.Results[i].Text = preview(text, chunkPreviewLen)
		}
	}
	return nil, output, nil
}

func (s *Server) handleGetChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkInput,
) (*mcp.CallToolResult, ChunkOutput, error) {
	text, err := s.ports.Playgrounds.Chunk(ctx, input.PlaygroundID, input.ChunkID)
	if err != nil {
		res, err := toolError(err)
		return res, ChunkOutput{}, err
	}
	return nil, ChunkOutput{ChunkID: input.ChunkID, Text: text}, nil
}

func (s *Server) handleListModels(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListModelsInput,
) (*mcp.CallToolResult, ListModelsOutput, error) {
	models, err := s.ports.Models.Models()
	if err != nil {
		return nil, ListModelsOutput{}, err
	}

	output := ListModelsOutput{Models: make([]ModelOutput, len(models))}
	for i, m := range models {
		output.Models[i] = ModelOutput{
			Service:    m.Service.String(),
			Model:      m.Model,
			Dimensions: m.Dimensions,
			Configured: m.Configured,
		}
	}
	return nil, output, nil
}

func toPlaygroundOutput(p domain.Playground) PlaygroundOutput {
	return PlaygroundOutput{
		ID:          p.ID,
		Title:       p.Title,
		Service:     p.Service.String(),
		Model:       p.Model,
		DocumentIDs: p.DocumentIDs,
	}
}

func preview(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
