package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/playground/internal/core/domain"
)

const (
	uriScheme    = "playground://"
	jsonMIMEType = "application/json"

	// maxDocumentBytes bounds the document bytes returned as a resource.
	maxDocumentBytes = 4 << 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "playgrounds",
		Name:        "playgrounds",
		Description: "List of all playgrounds",
		MIMEType:    jsonMIMEType,
	}, s.handlePlaygroundsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "playgrounds/{playgroundId}/points",
		Name:        "playground-points",
		Description: "2-D point of every chunk in a playground",
		MIMEType:    jsonMIMEType,
	}, s.handlePointsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "playgrounds/{playgroundId}/queries",
		Name:        "playground-queries",
		Description: "Queries recorded against a playground",
		MIMEType:    jsonMIMEType,
	}, s.handleQueriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Original bytes of an uploaded document",
	}, s.handleDocumentResource)
}

func (s *Server) handlePlaygroundsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	pgs, err := s.ports.Playgrounds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing playgrounds: %w", err)
	}

	infos := make([]PlaygroundOutput, len(pgs))
	for i := range pgs {
		infos[i] = toPlaygroundOutput(pgs[i])
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handlePointsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractPlaygroundID(req.Params.URI, "/points")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	points, err := s.ports.Playgrounds.Points(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("computing points: %w", err)
	}

	type pointInfo struct {
		ID string  `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	}
	infos := make([]pointInfo, len(points))
	for i, p := range points {
		infos[i] = pointInfo{ID: p.ID, X: p.X, Y: p.Y}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleQueriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractPlaygroundID(req.Params.URI, "/queries")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	results, err := s.ports.Queries.List(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}

	type queryInfo struct {
		ID        string   `json:"id"`
		Text      string   `json:"text"`
		ResultIDs []string `json:"result_ids"`
		X         *float64 `json:"x,omitempty"`
		Y         *float64 `json:"y,omitempty"`
	}
	infos := make([]queryInfo, len(results))
	for i := range results {
		infos[i] = queryInfo{
			ID:        results[i].Query.ID,
			Text:      results[i].Query.Text,
			ResultIDs: results[i].Query.ResultIDs,
		}
		if pt := results[i].Point; pt != nil {
			infos[i].X, infos[i].Y = &pt.X, &pt.Y
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rc, doc, err := s.ports.Documents.Open(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	contents := &mcp.ResourceContents{URI: req.Params.URI, MIMEType: doc.MIMEType}
	if isTextual(doc.MIMEType) {
		contents.Text = string(data)
	} else {
		contents.Blob = data
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{contents}}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		}},
	}, nil
}

func isTextual(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || mimeType == jsonMIMEType
}

// extractPlaygroundID extracts the id from a URI like playground://playgrounds/{id}/points.
func extractPlaygroundID(uri, suffix string) string {
	const prefix = uriScheme + "playgrounds/"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractDocumentID extracts the document ID from a URI like playground://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
