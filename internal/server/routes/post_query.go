package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

// ExecuteQueryHandler runs one unified query across the configured data
// sources and returns the fused answer.
func ExecuteQueryHandler(c echo.Context) error {
	req := new(query.UnifiedQueryRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	orchestrator := c.(*middleware.AppContext).App.Orchestrator
	resp := orchestrator.ExecuteQuery(c.Request().Context(), *req)
	if !resp.Success {
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
