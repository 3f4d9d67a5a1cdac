package pgx

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/whjyxl/cost-rag/backend/internal/util"
	"github.com/whjyxl/cost-rag/backend/pkg/ai"
	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
)

// KnowledgeGraphAdapter retrieves knowledge graph entities by name match
// and embedding similarity.
type KnowledgeGraphAdapter struct {
	conn     pgxIConn
	embedder ai.Embedder
}

// KnowledgeGraphAdapterParams configures NewKnowledgeGraphAdapter.
type KnowledgeGraphAdapterParams struct {
	Conn     pgxIConn
	Embedder ai.Embedder
}

// NewKnowledgeGraphAdapter creates a pgvector-backed knowledge graph
// adapter.
func NewKnowledgeGraphAdapter(params KnowledgeGraphAdapterParams) *KnowledgeGraphAdapter {
	return &KnowledgeGraphAdapter{
		conn:     params.Conn,
		embedder: params.Embedder,
	}
}

// Fetch combines a literal name match with an embedding similarity search
// over the entity table. Direct name hits carry full confidence; embedding
// hits are graded by their similarity.
func (a *KnowledgeGraphAdapter) Fetch(ctx context.Context, src common.DataSource, q source.Query) (*common.Payload, float64, error) {
	topK := clampTopK(q.TopK, source.DefaultTopK)
	payload := &common.Payload{Items: make([]map[string]any, 0, topK)}

	seen := make(map[string]bool)
	nameHits, err := a.fetchByName(ctx, util.SanitizePostgresText(q.Text), topK)
	if err != nil {
		return nil, 0, err
	}
	for _, item := range nameHits {
		seen[item["name"].(string)] = true
		payload.Items = append(payload.Items, item)
	}

	var similaritySum float64
	var similarityCount int
	if len(payload.Items) < topK {
		embedding, err := a.embedder.GenerateEmbedding(ctx, []byte(q.Text))
		if err != nil {
			return nil, 0, err
		}
		embeddingHits, err := a.fetchByEmbedding(ctx, embedding, topK)
		if err != nil {
			return nil, 0, err
		}
		for _, item := range embeddingHits {
			if seen[item["name"].(string)] || len(payload.Items) >= topK {
				continue
			}
			payload.Items = append(payload.Items, item)
			similaritySum += item["similarity"].(float64)
			similarityCount++
		}
	}

	if len(payload.Items) == 0 {
		return payload, 0, nil
	}
	if len(nameHits) > 0 {
		return payload, 0.9, nil
	}
	return payload, common.Clamp01(similaritySum / float64(similarityCount)), nil
}

func (a *KnowledgeGraphAdapter) fetchByName(ctx context.Context, text string, limit int) ([]map[string]any, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT name, description, entity_type
		FROM kg_entities
		WHERE $1 ILIKE '%' || name || '%'
		ORDER BY char_length(name) DESC
		LIMIT $2
	`, text, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]map[string]any, 0, limit)
	for rows.Next() {
		var name, description, entityType string
		if err := rows.Scan(&name, &description, &entityType); err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"name":        name,
			"description": description,
			"entity_type": entityType,
		})
	}
	return items, rows.Err()
}

func (a *KnowledgeGraphAdapter) fetchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]map[string]any, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT name, description, entity_type, 1 - (embedding <=> $1) AS similarity
		FROM kg_entities
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]map[string]any, 0, limit)
	for rows.Next() {
		var name, description, entityType string
		var similarity float64
		if err := rows.Scan(&name, &description, &entityType, &similarity); err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"name":        name,
			"description": description,
			"entity_type": entityType,
			"similarity":  similarity,
		})
	}
	return items, rows.Err()
}
