// Package router implements driven.Embedder by dispatching to one
// EmbeddingService per (service, model), created on demand.
package router

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// Defaults.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 10
	DefaultCacheSize         = 16
)

// Ensure Router implements the interface.
var _ driven.Embedder = (*Router)(nil)

// ProviderSource returns the current settings of a service.
type ProviderSource func(domain.Service) domain.ProviderSettings

// Router embeds texts with whichever service and model the caller names.
// Clients are cached; a settings change (key, URL) yields a fresh client.
type Router struct {
	factory  driven.EmbeddingServiceFactory
	settings ProviderSource
	timeout  time.Duration
	rps      float64

	mu       sync.Mutex
	clients  *lru.Cache[string, driven.EmbeddingService]
	limiters map[domain.Service]*RateLimiter
}

// Option configures a Router.
type Option func(*Router)

// WithTimeout bounds every provider request. A text list larger than the
// service batch size is sent as several requests, each with its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRequestsPerSecond sets the per-service rate limit.
func WithRequestsPerSecond(rps float64) Option {
	return func(r *Router) {
		r.rps = rps
	}
}

// New creates a router. cacheSize bounds the number of live clients.
func New(factory driven.EmbeddingServiceFactory, settings ProviderSource, cacheSize int, opts ...Option) (*Router, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	clients, err := lru.NewWithEvict(cacheSize, func(key string, svc driven.EmbeddingService) {
		logger.Debug("embedding client evicted: %s", key)
		_ = svc.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("creating client cache: %w", err)
	}

	r := &Router{
		factory:  factory,
		settings: settings,
		timeout:  DefaultTimeout,
		rps:      DefaultRequestsPerSecond,
		clients:  clients,
		limiters: make(map[domain.Service]*RateLimiter),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Embed returns one vector per text, in input order.
func (r *Router) Embed(ctx context.Context, texts []string, service domain.Service, model string) ([][]float32, error) {
	if !service.IsValid() {
		return nil, fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, service)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	model = service.ResolveModel(model)

	client, err := r.client(service, model)
	if err != nil {
		return nil, providerFailure(err)
	}

	limiter := r.limiter(service)
	start := time.Now()
	vecs := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, service.Spec().MaxBatch) {
		out, err := r.embedBatch(ctx, client, limiter, batch)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, out...)
	}
	logger.Debug("embedded %d texts with %s/%s in %s", len(texts), service, model, time.Since(start).Round(time.Millisecond))

	if err := checkVectors(vecs, len(texts)); err != nil {
		return nil, fmt.Errorf("%s/%s: %w", service, model, err)
	}
	return vecs, nil
}

// embedBatch sends one provider request. Each request takes its own rate
// limit token and its own timeout.
func (r *Router) embedBatch(
	ctx context.Context, client driven.EmbeddingService, limiter *RateLimiter, batch []string,
) ([][]float32, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, providerFailure(fmt.Errorf("waiting for rate limit: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vecs, err := client.EmbedBatch(callCtx, batch)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			limiter.RecordRateLimitError(0)
		}
		return nil, providerFailure(err)
	}
	if len(vecs) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrProviderFailure, len(batch), len(vecs))
	}
	return vecs, nil
}

// Close releases every cached client.
func (r *Router) Close() error {
	r.clients.Purge()
	return nil
}

// client returns the cached client for service and model, creating it when needed.
func (r *Router) client(service domain.Service, model string) (driven.EmbeddingService, error) {
	settings := r.settings(service)
	settings.Service = service
	key := cacheKey(settings, model)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients.Get(key); ok {
		return c, nil
	}

	c, err := r.factory(settings, model)
	if err != nil {
		return nil, err
	}
	r.clients.Add(key, c)
	logger.Debug("embedding client created: %s/%s", service, model)
	return c, nil
}

func (r *Router) limiter(service domain.Service) *RateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[service]
	if !ok {
		l = NewRateLimiter(r.rps)
		r.limiters[service] = l
	}
	return l
}

// batches splits texts into runs of at most size.
func batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		out = append(out, texts[start:min(start+size, len(texts))])
	}
	return out
}

// cacheKey identifies a client by everything that shapes it.
// The API key enters only as a digest.
func cacheKey(s domain.ProviderSettings, model string) string {
	sum := sha256.Sum256([]byte(s.APIKey))
	return fmt.Sprintf("%s|%s|%s|%s", s.Service, model, s.BaseURL, hex.EncodeToString(sum[:6]))
}

// checkVectors verifies count, non-emptiness and a common dimension.
func checkVectors(vecs [][]float32, want int) error {
	if len(vecs) != want {
		return fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrProviderFailure, want, len(vecs))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return fmt.Errorf("%w: embedding %d is empty", domain.ErrProviderFailure, i)
		}
		if len(v) != len(vecs[0]) {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrProviderFailure, i, len(v), len(vecs[0]))
		}
	}
	return nil
}

// providerFailure wraps err in ErrProviderFailure unless it already is one
// or is an unsupported-type error.
func providerFailure(err error) error {
	if errors.Is(err, domain.ErrProviderFailure) || errors.Is(err, domain.ErrUnsupportedType) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
}
