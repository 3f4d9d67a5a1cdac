package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/similar"
)

// GetBenchmarkHandler aggregates unit-cost statistics over the historical
// corpus, optionally restricted to one project type.
func GetBenchmarkHandler(c echo.Context) error {
	type benchmarkParams struct {
		ProjectType string `query:"project_type"`
	}

	params := new(benchmarkParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	store := c.(*middleware.AppContext).App.History
	corpus, err := store.LoadProjects(c.Request().Context(), params.ProjectType, 0)
	if err != nil {
		logger.Error("Failed to load historical projects", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	benchmark, ok := similar.ComputeCostBenchmark(corpus, params.ProjectType)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Not enough data for a benchmark"})
	}
	return c.JSON(http.StatusOK, benchmark)
}
