package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IsValid(t *testing.T) {
	for _, svc := range AllServices() {
		assert.True(t, svc.IsValid(), svc)
	}
	assert.False(t, Service("").IsValid())
	assert.False(t, Service("anthropic").IsValid())
}

func TestService_Spec(t *testing.T) {
	tests := []struct {
		service    Service
		model      string
		dimensions int
		apiKey     bool
	}{
		{ServiceSentenceTransformers, "all-MiniLM-L6-v2", 384, false},
		{ServiceOpenAI, "text-embedding-ada-002", 1536, true},
		{ServiceCohere, "embed-english-v3.0", 1024, true},
		{ServiceGoogle, "models/embedding-001", 768, true},
		{ServiceOllama, "nomic-embed-text", 768, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.service), func(t *testing.T) {
			spec := tt.service.Spec()
			assert.Equal(t, tt.service, spec.Service)
			assert.Equal(t, tt.model, spec.DefaultModel)
			assert.Equal(t, tt.dimensions, spec.Dimensions)
			assert.Equal(t, tt.apiKey, tt.service.RequiresAPIKey())
			assert.NotEmpty(t, spec.DisplayName)
		})
	}
}

func TestParseService(t *testing.T) {
	tests := []struct {
		input    string
		expected Service
	}{
		{"openai", ServiceOpenAI},
		{"OpenAI", ServiceOpenAI},
		{"Sentence Transformers", ServiceSentenceTransformers},
		{" sentence-transformers ", ServiceSentenceTransformers},
		{"Google Generative AI", ServiceGoogle},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			svc, err := ParseService(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, svc)
		})
	}

	_, err := ParseService("word2vec")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestService_ResolveModel(t *testing.T) {
	assert.Equal(t, "nomic-embed-text", ServiceOllama.ResolveModel(""))
	assert.Equal(t, "all-minilm", ServiceOllama.ResolveModel(" all-minilm "))
}

func TestService_Description(t *testing.T) {
	assert.Equal(t, "OpenAI (cloud)", ServiceOpenAI.Description())
	assert.Equal(t, "Ollama (local)", ServiceOllama.Description())
	assert.Equal(t, "Unknown", Service("x").Description())
}
