package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/similar"
)

// FindSimilarProjectsHandler matches the submitted project features
// against the historical corpus and returns scored matches with estimate
// suggestions.
func FindSimilarProjectsHandler(c echo.Context) error {
	req := new(similar.SimilarProjectRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	store := c.(*middleware.AppContext).App.History
	corpus, err := store.LoadProjects(c.Request().Context(), req.Target.Basic.ProjectType, 0)
	if err != nil {
		logger.Error("Failed to load historical projects", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	matches := similar.FindSimilarProjects(*req, corpus)
	return c.JSON(http.StatusOK, map[string]any{
		"matches": matches,
		"total":   len(matches),
	})
}
