package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
)

// GetQueryProgressHandler returns a point-in-time snapshot of a running
// query's progress.
func GetQueryProgressHandler(c echo.Context) error {
	type progressParams struct {
		QueryID string `param:"id" validate:"required"`
	}

	params := new(progressParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	orchestrator := c.(*middleware.AppContext).App.Orchestrator
	progress, ok := orchestrator.GetProgress(params.QueryID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Query not found"})
	}
	return c.JSON(http.StatusOK, progress)
}
