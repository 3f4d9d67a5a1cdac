package ai

import "context"

// Embedder defines the interface for generating vector embeddings.
// The pgx-backed source searchers embed the user query before running
// vector similarity search against stored documents and graph entities.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}

// ModelMetrics contains performance metrics from embedding operations.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	TotalTokens int   `json:"total_tokens"`
	DurationMs  int64 `json:"duration_ms"`
}
