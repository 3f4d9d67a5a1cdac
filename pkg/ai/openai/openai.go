package openai

import (
	"sync"

	"github.com/whjyxl/cost-rag/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const defaultTimeoutMin = 2

// OpenAIEmbedder implements ai.Embedder against an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client         openai.Client
	embeddingModel string
	timeoutMin     int

	lock *semaphore.Weighted

	metricsMu sync.Mutex
	metrics   ai.ModelMetrics
}

// NewOpenAIEmbedderParams defines the configuration for creating an
// OpenAIEmbedder. BaseURL may point at any OpenAI-compatible service.
type NewOpenAIEmbedderParams struct {
	EmbeddingModel string
	BaseURL        string
	APIKey         string

	// MaxParallel limits concurrent embedding requests. Defaults to 4.
	MaxParallel int64
	// TimeoutMin is the per-request timeout in minutes. Defaults to 2.
	TimeoutMin int
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI embeddings API.
func NewOpenAIEmbedder(params NewOpenAIEmbedderParams) *OpenAIEmbedder {
	opts := []option.RequestOption{}
	if params.APIKey != "" {
		opts = append(opts, option.WithAPIKey(params.APIKey))
	}
	if params.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(params.BaseURL))
	}

	maxParallel := params.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 4
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}

	return &OpenAIEmbedder{
		client:         openai.NewClient(opts...),
		embeddingModel: params.EmbeddingModel,
		timeoutMin:     timeoutMin,
		lock:           semaphore.NewWeighted(maxParallel),
	}
}

func (c *OpenAIEmbedder) modifyMetrics(m ai.ModelMetrics) {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}

// GetMetrics returns accumulated metrics for all requests made so far.
func (c *OpenAIEmbedder) GetMetrics() ai.ModelMetrics {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	return c.metrics
}

// ResetMetrics clears the accumulated metrics.
func (c *OpenAIEmbedder) ResetMetrics() {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	c.metrics = ai.ModelMetrics{}
}
