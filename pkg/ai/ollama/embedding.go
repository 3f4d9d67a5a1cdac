package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/whjyxl/cost-rag/backend/internal/util"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 1024

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama.
func (c *OllamaEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(input) == 0 || len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}
	resp, err := c.client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(resp.Embeddings))
	}

	return fitDimensions(resp.Embeddings[0], dim), nil
}

// GenerateEmbeddings creates embeddings for multiple inputs in a single request.
func (c *OllamaEmbedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(inputs))
	nonEmpty := make([]string, 0, len(inputs))
	idxMap := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if len(in) == 0 || len(strings.TrimSpace(string(in))) == 0 {
			out[i] = make([]float32, dim)
			continue
		}
		nonEmpty = append(nonEmpty, string(in))
		idxMap = append(idxMap, i)
	}
	if len(nonEmpty) == 0 {
		return out, nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: nonEmpty,
	}
	resp, err := c.client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(nonEmpty) {
		return nil, fmt.Errorf("embedding result size mismatch: got %d want %d", len(resp.Embeddings), len(nonEmpty))
	}

	for i, emb := range resp.Embeddings {
		out[idxMap[i]] = fitDimensions(emb, dim)
	}
	return out, nil
}

func fitDimensions(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	fitted := make([]float32, dim)
	copy(fitted, vec)
	return fitted
}
