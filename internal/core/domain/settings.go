package domain

import "time"

// PointStoreBackend selects where projected points are persisted.
type PointStoreBackend string

// Available point store backends.
const (
	// PointStoreSQLite keeps points in the local database.
	PointStoreSQLite PointStoreBackend = "sqlite"

	// PointStoreMongo keeps points in a MongoDB database.
	PointStoreMongo PointStoreBackend = "mongo"

	// PointStoreMemory keeps points for the lifetime of the process.
	PointStoreMemory PointStoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b PointStoreBackend) IsValid() bool {
	switch b {
	case PointStoreSQLite, PointStoreMongo, PointStoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b PointStoreBackend) String() string {
	return string(b)
}

// ProviderSettings holds the configuration of one embedding service.
type ProviderSettings struct {
	// Service is the embedding service.
	Service Service

	// Model overrides the service default model.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud services).
	APIKey string
}

// IsConfigured returns true if every required field is present.
func (p ProviderSettings) IsConfigured() bool {
	spec, ok := serviceSpecs[p.Service]
	if !ok {
		return false
	}
	for _, f := range spec.RequiredFields {
		switch f {
		case ConfigFieldAPIKey:
			if p.APIKey == "" {
				return false
			}
		case ConfigFieldBaseURL:
			if p.BaseURL == "" && spec.DefaultBaseURL == "" {
				return false
			}
		case ConfigFieldModel:
			// Model falls back to the service default.
		}
	}
	return true
}

// PointStoreSettings holds point store configuration.
type PointStoreSettings struct {
	Backend       PointStoreBackend
	MongoURI      string
	MongoDatabase string
}

// ChunkerSettings holds chunker configuration.
type ChunkerSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int
}

// ProjectionSettings holds projection configuration.
type ProjectionSettings struct {
	// RefitPerQuery fits a fresh transform for every query instead of
	// reusing the transform persisted with the playground's points.
	RefitPerQuery bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is where the database and uploaded files live.
	DataDir string

	// PointStore selects the point store backend.
	PointStore PointStoreSettings

	// Providers holds per-service settings.
	Providers map[Service]ProviderSettings

	// ProviderTimeout bounds every embedding call.
	ProviderTimeout time.Duration

	// RequestsPerSecond limits calls per service.
	RequestsPerSecond float64

	// Chunker holds chunker settings.
	Chunker ChunkerSettings

	// Projection holds projection settings.
	Projection ProjectionSettings

	// TopK is the number of nearest chunks a query returns.
	TopK int
}

// Provider returns the settings for a service, filled with defaults.
func (s AppSettings) Provider(svc Service) ProviderSettings {
	p, ok := s.Providers[svc]
	if !ok {
		p = ProviderSettings{Service: svc}
	}
	if p.BaseURL == "" {
		p.BaseURL = svc.Spec().DefaultBaseURL
	}
	return p
}

// DefaultAppSettings returns settings with sensible defaults.
// Cloud services are left without API keys.
func DefaultAppSettings() AppSettings {
	providers := make(map[Service]ProviderSettings, len(serviceSpecs))
	for _, svc := range AllServices() {
		providers[svc] = ProviderSettings{
			Service: svc,
			BaseURL: serviceSpecs[svc].DefaultBaseURL,
		}
	}
	return AppSettings{
		PointStore: PointStoreSettings{
			Backend:       PointStoreSQLite,
			MongoDatabase: "points",
		},
		Providers:         providers,
		ProviderTimeout:   30 * time.Second,
		RequestsPerSecond: 10,
		Chunker: ChunkerSettings{
			ChunkSize:    1000,
			ChunkOverlap: 0,
		},
		TopK: DefaultTopK,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns a chunker-only pipeline using the given settings.
func PipelineConfigFor(c ChunkerSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.ChunkOverlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
// Works out-of-the-box with chunker using sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunker)
}
