// Package apiclient holds the JSON-over-HTTP plumbing shared by the
// embedding service adapters.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Client sends JSON requests to one provider.
// Every error it returns wraps domain.ErrProviderFailure.
type Client struct {
	name    string
	http    *http.Client
	headers map[string]string
}

// New creates a client labelled name for error messages.
func New(name string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		name:    name,
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// PostJSON encodes in, posts it to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return c.fail("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return c.fail("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// Get issues a GET to url and discards the body. Used for health checks.
func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return c.fail("create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %w", c.name, domain.ErrProviderFailure, domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w: status %d: %s",
			c.name, domain.ErrProviderFailure, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail("decode response: %w", err)
	}
	return nil
}

// fail wraps err with the provider name and ErrProviderFailure.
func (c *Client) fail(format string, err error) error {
	return fmt.Errorf("%s: %w: "+format, c.name, domain.ErrProviderFailure, err)
}

// ToFloat32 converts a float64 vector.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// Batches splits texts into slices of at most size elements.
func Batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = len(texts)
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}

// CountMismatch reports a provider returning the wrong number of vectors.
func CountMismatch(name string, want, got int) error {
	return fmt.Errorf("%s: %w: expected %d embeddings, got %d", name, domain.ErrProviderFailure, want, got)
}
