package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// Service identifies an embedding provider.
// The set is closed; see AllServices.
type Service string

// Available embedding services.
const (
	// ServiceSentenceTransformers is a local sentence-transformers inference server.
	ServiceSentenceTransformers Service = "sentence-transformers"

	// ServiceOpenAI is OpenAI cloud API.
	ServiceOpenAI Service = "openai"

	// ServiceCohere is Cohere cloud API.
	ServiceCohere Service = "cohere"

	// ServiceGoogle is Google Generative AI.
	ServiceGoogle Service = "google"

	// ServiceOllama is local Ollama instance.
	ServiceOllama Service = "ollama"
)

// ConfigField names a setting a service needs before it can embed.
type ConfigField string

// Service configuration fields.
const (
	ConfigFieldAPIKey  ConfigField = "api_key"
	ConfigFieldModel   ConfigField = "model_name"
	ConfigFieldBaseURL ConfigField = "base_url"
)

// ServiceSpec describes a service variant.
type ServiceSpec struct {
	// Service is the variant.
	Service Service

	// DisplayName is the human-readable name.
	DisplayName string

	// DefaultModel is used when a playground does not name a model.
	DefaultModel string

	// Dimensions is the vector size of DefaultModel.
	Dimensions int

	// RequiresAPIKey is true for cloud services.
	RequiresAPIKey bool

	// RequiredFields lists settings that must be present.
	RequiredFields []ConfigField

	// DefaultBaseURL is the endpoint for self-hosted services.
	DefaultBaseURL string

	// MaxBatch is the number of texts sent in one provider request.
	MaxBatch int
}

var serviceSpecs = map[Service]ServiceSpec{
	ServiceSentenceTransformers: {
		Service:        ServiceSentenceTransformers,
		DisplayName:    "Sentence Transformers",
		DefaultModel:   "all-MiniLM-L6-v2",
		Dimensions:     384,
		DefaultBaseURL: "http://localhost:8080",
		MaxBatch:       32,
	},
	ServiceOpenAI: {
		Service:        ServiceOpenAI,
		DisplayName:    "OpenAI",
		DefaultModel:   "text-embedding-ada-002",
		Dimensions:     1536,
		RequiresAPIKey: true,
		RequiredFields: []ConfigField{ConfigFieldModel, ConfigFieldAPIKey},
		DefaultBaseURL: "https://api.openai.com/v1",
		MaxBatch:       512,
	},
	ServiceCohere: {
		Service:        ServiceCohere,
		DisplayName:    "Cohere",
		DefaultModel:   "embed-english-v3.0",
		Dimensions:     1024,
		RequiresAPIKey: true,
		RequiredFields: []ConfigField{ConfigFieldModel, ConfigFieldAPIKey},
		DefaultBaseURL: "https://api.cohere.com/v1",
		MaxBatch:       96,
	},
	ServiceGoogle: {
		Service:        ServiceGoogle,
		DisplayName:    "Google Generative AI",
		DefaultModel:   "models/embedding-001",
		Dimensions:     768,
		RequiresAPIKey: true,
		RequiredFields: []ConfigField{ConfigFieldAPIKey},
		MaxBatch:       100,
	},
	ServiceOllama: {
		Service:        ServiceOllama,
		DisplayName:    "Ollama",
		DefaultModel:   "nomic-embed-text",
		Dimensions:     768,
		RequiredFields: []ConfigField{ConfigFieldBaseURL},
		DefaultBaseURL: "http://localhost:11434",
		MaxBatch:       64,
	},
}

// AllServices returns every service in display order.
func AllServices() []Service {
	return []Service{
		ServiceSentenceTransformers,
		ServiceOpenAI,
		ServiceCohere,
		ServiceGoogle,
		ServiceOllama,
	}
}

// ParseService resolves a service from its identifier or display name.
func ParseService(s string) (Service, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, svc := range AllServices() {
		spec := serviceSpecs[svc]
		if norm == string(svc) || norm == strings.ToLower(spec.DisplayName) {
			return svc, nil
		}
	}
	return "", fmt.Errorf("%w: service %q", ErrUnsupportedType, s)
}

// IsValid returns true if the service is recognised.
func (s Service) IsValid() bool {
	_, ok := serviceSpecs[s]
	return ok
}

// Spec returns the service description.
// The zero ServiceSpec is returned for unknown services.
func (s Service) Spec() ServiceSpec {
	return serviceSpecs[s]
}

// RequiresAPIKey returns true if this service needs an API key.
func (s Service) RequiresAPIKey() bool {
	return serviceSpecs[s].RequiresAPIKey
}

// DefaultModel returns the model used when none is chosen.
func (s Service) DefaultModel() string {
	return serviceSpecs[s].DefaultModel
}

// String returns the string representation.
func (s Service) String() string {
	return string(s)
}

// Description returns a human-readable description of the service.
func (s Service) Description() string {
	spec, ok := serviceSpecs[s]
	if !ok {
		return unknownDescription
	}
	if spec.RequiresAPIKey {
		return spec.DisplayName + " (cloud)"
	}
	return spec.DisplayName + " (local)"
}

// ResolveModel returns model, or the service default when model is empty.
func (s Service) ResolveModel(model string) string {
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return s.DefaultModel()
}
