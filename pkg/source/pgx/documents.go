package pgx

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/whjyxl/cost-rag/backend/pkg/ai"
	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
)

// DocumentAdapter retrieves document chunks by embedding similarity.
type DocumentAdapter struct {
	conn     pgxIConn
	embedder ai.Embedder
}

// DocumentAdapterParams configures NewDocumentAdapter.
type DocumentAdapterParams struct {
	Conn     pgxIConn
	Embedder ai.Embedder
}

// NewDocumentAdapter creates a pgvector-backed document adapter.
func NewDocumentAdapter(params DocumentAdapterParams) *DocumentAdapter {
	return &DocumentAdapter{
		conn:     params.Conn,
		embedder: params.Embedder,
	}
}

// Fetch embeds the query text and runs a cosine similarity search over the
// document chunks. Confidence is the mean similarity of the returned
// chunks.
func (a *DocumentAdapter) Fetch(ctx context.Context, src common.DataSource, q source.Query) (*common.Payload, float64, error) {
	embedding, err := a.embedder.GenerateEmbedding(ctx, []byte(q.Text))
	if err != nil {
		return nil, 0, err
	}

	topK := clampTopK(q.TopK, source.DefaultTopK)
	rows, err := a.conn.Query(ctx, `
		SELECT d.title, c.content, 1 - (c.embedding <=> $1) AS similarity
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payload := &common.Payload{Items: make([]map[string]any, 0, topK)}
	var similaritySum float64
	for rows.Next() {
		var title, content string
		var similarity float64
		if err := rows.Scan(&title, &content, &similarity); err != nil {
			return nil, 0, err
		}
		payload.Items = append(payload.Items, map[string]any{
			"title":      title,
			"content":    content,
			"similarity": similarity,
		})
		similaritySum += similarity
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(payload.Items) == 0 {
		return payload, 0, nil
	}
	confidence := common.Clamp01(similaritySum / float64(len(payload.Items)))
	return payload, confidence, nil
}
