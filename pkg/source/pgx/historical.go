package pgx

import (
	"context"
	"strings"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
)

// HistoricalDataAdapter retrieves historical project records. Matching is
// keyword based: the query is checked for project type terms and the rest
// is matched against project names.
type HistoricalDataAdapter struct {
	conn pgxIConn
}

// HistoricalDataAdapterParams configures NewHistoricalDataAdapter.
type HistoricalDataAdapterParams struct {
	Conn pgxIConn
}

// NewHistoricalDataAdapter creates a historical project adapter.
func NewHistoricalDataAdapter(params HistoricalDataAdapterParams) *HistoricalDataAdapter {
	return &HistoricalDataAdapter{conn: params.Conn}
}

var projectTypeTerms = []string{"住宅", "商业", "办公", "工业", "学校", "医院", "酒店", "市政"}

// Fetch returns recent historical projects matching the query's project
// type, newest first. Confidence grows with the number of matching
// records.
func (a *HistoricalDataAdapter) Fetch(ctx context.Context, src common.DataSource, q source.Query) (*common.Payload, float64, error) {
	topK := clampTopK(q.TopK, source.DefaultTopK)

	projectType := ""
	for _, term := range projectTypeTerms {
		if strings.Contains(q.Text, term) {
			projectType = term
			break
		}
	}

	rows, err := a.conn.Query(ctx, `
		SELECT name, project_type, unit_cost, building_area, completion_year, location
		FROM historical_projects
		WHERE ($1 = '' OR project_type = $1)
		ORDER BY completion_year DESC
		LIMIT $2
	`, projectType, topK)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payload := &common.Payload{Items: make([]map[string]any, 0, topK)}
	for rows.Next() {
		var name, ptype, location string
		var unitCost, buildingArea float64
		var completionYear int
		if err := rows.Scan(&name, &ptype, &unitCost, &buildingArea, &completionYear, &location); err != nil {
			return nil, 0, err
		}
		payload.Items = append(payload.Items, map[string]any{
			"name":            name,
			"project_type":    ptype,
			"unit_cost":       unitCost,
			"building_area":   buildingArea,
			"completion_year": completionYear,
			"location":        location,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(payload.Items) == 0 {
		return payload, 0, nil
	}

	// Type-filtered hits answer the query more directly than a generic
	// recency sample.
	base := 0.45
	if projectType != "" {
		base = 0.6
	}
	confidence := common.Clamp01(base + 0.06*float64(len(payload.Items)))
	return payload, confidence, nil
}
