package ollama

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const defaultTimeoutMin = 2

// OllamaEmbedder implements ai.Embedder against a local Ollama instance.
type OllamaEmbedder struct {
	client         *api.Client
	embeddingModel string
	timeoutMin     int
}

// NewOllamaEmbedderParams defines the configuration for creating an
// OllamaEmbedder.
type NewOllamaEmbedderParams struct {
	EmbeddingModel string
	BaseURL        string

	// TimeoutMin is the per-request timeout in minutes. Defaults to 2.
	TimeoutMin int
}

// NewOllamaEmbedder creates an embedder backed by the Ollama embed API.
func NewOllamaEmbedder(params NewOllamaEmbedderParams) (*OllamaEmbedder, error) {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", baseURL, err)
	}

	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}

	return &OllamaEmbedder{
		client:         api.NewClient(u, http.DefaultClient),
		embeddingModel: params.EmbeddingModel,
		timeoutMin:     timeoutMin,
	}, nil
}
