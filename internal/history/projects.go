package history

import (
	"context"

	"github.com/whjyxl/cost-rag/backend/pkg/similar"
)

// LoadProjects fetches the historical project corpus for similarity
// matching, optionally restricted to one project type.
func (s *Store) LoadProjects(ctx context.Context, projectType string, limit int) ([]similar.HistoricalProject, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, project_type, building_area, location, floors, completion_year, structure_type,
		       unit_cost, total_cost, material_cost_ratio, labor_cost_ratio, price_year,
		       quality_level, quality_standard
		FROM historical_projects
		WHERE ($1 = '' OR project_type = $1)
		ORDER BY completion_year DESC
		LIMIT $2
	`, projectType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]similar.HistoricalProject, 0, limit)
	for rows.Next() {
		var p similar.HistoricalProject
		if err := rows.Scan(
			&p.ID, &p.Name,
			&p.Features.Basic.ProjectType, &p.Features.Basic.BuildingArea, &p.Features.Basic.Location,
			&p.Features.Basic.Floors, &p.Features.Basic.CompletionYear, &p.Features.Basic.StructureType,
			&p.Features.Cost.UnitCost, &p.Features.Cost.TotalCost,
			&p.Features.Cost.MaterialCostRatio, &p.Features.Cost.LaborCostRatio, &p.Features.Cost.PriceYear,
			&p.Features.Quality.QualityLevel, &p.Features.Quality.Standard,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
