package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "storage.data_dir"
	keyPointBackend     = "pointstore.backend"
	keyPointMongoURI    = "pointstore.mongo_uri"
	keyPointMongoDB     = "pointstore.mongo_database"
	keyProviderTimeout  = "providers.timeout_seconds"
	keyProviderRPS      = "providers.requests_per_second"
	keyChunkSize        = "chunker.chunk_size"
	keyChunkOverlap     = "chunker.chunk_overlap"
	keyRefitPerQuery    = "projection.refit_per_query"
	keyTopK             = "query.top_k"
	providerKeyAPIKey   = "api_key"
	providerKeyBaseURL  = "base_url"
	providerKeyModel    = "model"
	envMongoURI         = "PLAYGROUND_MONGO_URI"
	providerKeyTemplate = "providers.%s.%s"
)

// apiKeyEnv names the environment variable consulted when a service has no
// stored API key.
//
//nolint:gosec // G101: environment variable names, not credentials.
var apiKeyEnv = map[domain.Service]string{
	domain.ServiceOpenAI: "OPENAI_API_KEY",
	domain.ServiceCohere: "COHERE_API_KEY",
	domain.ServiceGoogle: "GOOGLE_API_KEY",
}

type configValue struct {
	key   string
	value any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.ProviderValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// validator may be nil, in which case ValidateProvider only checks settings.
func NewSettingsService(configStore driven.ConfigStore, validator driven.ProviderValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Stored values win; environment variables fill missing API keys and the
// Mongo URI.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.configStore.GetString(keyDataDir),
		PointStore: domain.PointStoreSettings{
			Backend:       s.getBackend(defaults.PointStore.Backend),
			MongoURI:      s.getString(keyPointMongoURI, s.getenv(envMongoURI)),
			MongoDatabase: s.getString(keyPointMongoDB, defaults.PointStore.MongoDatabase),
		},
		Providers:         make(map[domain.Service]domain.ProviderSettings, len(defaults.Providers)),
		ProviderTimeout:   time.Duration(s.getInt(keyProviderTimeout, int(defaults.ProviderTimeout/time.Second))) * time.Second,
		RequestsPerSecond: s.getFloat(keyProviderRPS, defaults.RequestsPerSecond),
		Chunker: domain.ChunkerSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Chunker.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Chunker.ChunkOverlap),
		},
		Projection: domain.ProjectionSettings{
			RefitPerQuery: s.getBool(keyRefitPerQuery, defaults.Projection.RefitPerQuery),
		},
		TopK: s.getInt(keyTopK, defaults.TopK),
	}

	for _, svc := range domain.AllServices() {
		def := defaults.Providers[svc]
		settings.Providers[svc] = domain.ProviderSettings{
			Service: svc,
			Model:   s.configStore.GetString(providerKey(svc, providerKeyModel)),
			BaseURL: s.getString(providerKey(svc, providerKeyBaseURL), def.BaseURL),
			APIKey:  s.getString(providerKey(svc, providerKeyAPIKey), s.envAPIKey(svc)),
		}
	}

	return settings, nil
}

// Save persists application settings.
// API keys and the Mongo URI taken from the environment are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if !settings.PointStore.Backend.IsValid() {
		return fmt.Errorf("%w: point store backend %q", domain.ErrInvalidInput, settings.PointStore.Backend)
	}
	if settings.Chunker.ChunkSize <= 0 || settings.Chunker.ChunkOverlap < 0 ||
		settings.Chunker.ChunkOverlap >= settings.Chunker.ChunkSize {
		return fmt.Errorf("%w: chunk size %d with overlap %d",
			domain.ErrInvalidInput, settings.Chunker.ChunkSize, settings.Chunker.ChunkOverlap)
	}

	values := []configValue{
		{keyDataDir, settings.DataDir},
		{keyPointBackend, settings.PointStore.Backend.String()},
		{keyPointMongoDB, settings.PointStore.MongoDatabase},
		{keyProviderTimeout, int(settings.ProviderTimeout / time.Second)},
		{keyProviderRPS, settings.RequestsPerSecond},
		{keyChunkSize, settings.Chunker.ChunkSize},
		{keyChunkOverlap, settings.Chunker.ChunkOverlap},
		{keyRefitPerQuery, settings.Projection.RefitPerQuery},
		{keyTopK, settings.TopK},
	}
	if uri := settings.PointStore.MongoURI; uri != s.getenv(envMongoURI) || s.configStore.GetString(keyPointMongoURI) != "" {
		values = append(values, configValue{keyPointMongoURI, uri})
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	for _, svc := range domain.AllServices() {
		p, ok := settings.Providers[svc]
		if !ok {
			continue
		}
		if p.APIKey == s.envAPIKey(svc) && s.configStore.GetString(providerKey(svc, providerKeyAPIKey)) == "" {
			p.APIKey = ""
		}
		if err := s.saveProvider(svc, p); err != nil {
			return err
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// SetProvider updates the stored settings of one service.
func (s *SettingsService) SetProvider(settings domain.ProviderSettings) error {
	if !settings.Service.IsValid() {
		return fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, settings.Service)
	}
	return s.saveProvider(settings.Service, settings)
}

// SetPointStore selects the point store backend.
func (s *SettingsService) SetPointStore(settings domain.PointStoreSettings) error {
	if !settings.Backend.IsValid() {
		return fmt.Errorf("%w: point store backend %q", domain.ErrInvalidInput, settings.Backend)
	}
	if settings.Backend == domain.PointStoreMongo && settings.MongoURI == "" &&
		s.getString(keyPointMongoURI, s.getenv(envMongoURI)) == "" {
		return fmt.Errorf("%w: mongo backend requires a URI", domain.ErrInvalidInput)
	}

	if err := s.configStore.Set(keyPointBackend, settings.Backend.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyPointBackend, err)
	}
	if settings.MongoURI != "" {
		if err := s.configStore.Set(keyPointMongoURI, settings.MongoURI); err != nil {
			return fmt.Errorf("save %s: %w", keyPointMongoURI, err)
		}
	}
	if settings.MongoDatabase != "" {
		if err := s.configStore.Set(keyPointMongoDB, settings.MongoDatabase); err != nil {
			return fmt.Errorf("save %s: %w", keyPointMongoDB, err)
		}
	}
	return nil
}

// ValidateProvider checks a service's settings and pings it.
func (s *SettingsService) ValidateProvider(ctx context.Context, service domain.Service) error {
	if !service.IsValid() {
		return fmt.Errorf("%w: service %q", domain.ErrUnsupportedType, service)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	p := settings.Provider(service)
	if !p.IsConfigured() {
		return fmt.Errorf("%w: %s is not configured", domain.ErrEmbeddingUnavailable, service)
	}
	if s.validator == nil {
		return nil
	}
	return s.validator.ValidateProvider(ctx, p)
}

func (s *SettingsService) saveProvider(svc domain.Service, p domain.ProviderSettings) error {
	fields := []struct {
		name  string
		value string
	}{
		{providerKeyModel, p.Model},
		{providerKeyBaseURL, p.BaseURL},
		{providerKeyAPIKey, p.APIKey},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		key := providerKey(svc, f.name)
		if err := s.configStore.Set(key, f.value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

func (s *SettingsService) envAPIKey(svc domain.Service) string {
	name, ok := apiKeyEnv[svc]
	if !ok {
		return ""
	}
	return s.getenv(name)
}

func providerKey(svc domain.Service, field string) string {
	return fmt.Sprintf(providerKeyTemplate, svc, field)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getFloat accepts any numeric TOML value or a numeric string.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getBackend(defaultVal domain.PointStoreBackend) domain.PointStoreBackend {
	backend := domain.PointStoreBackend(s.configStore.GetString(keyPointBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
