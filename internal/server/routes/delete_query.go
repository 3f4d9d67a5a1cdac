package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
)

// CancelQueryHandler cancels a query that is still executing.
func CancelQueryHandler(c echo.Context) error {
	type cancelParams struct {
		QueryID string `param:"id" validate:"required"`
	}

	params := new(cancelParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	orchestrator := c.(*middleware.AppContext).App.Orchestrator
	if !orchestrator.CancelQuery(params.QueryID) {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Query is not executing"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"cancelled": true})
}
