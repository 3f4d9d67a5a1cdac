package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
)

// GetQueryHistoryHandler lists recently answered queries, optionally
// filtered by user.
func GetQueryHistoryHandler(c echo.Context) error {
	type historyParams struct {
		UserID string `query:"user_id"`
		Limit  int    `query:"limit"`
	}

	params := new(historyParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	store := c.(*middleware.AppContext).App.History
	entries, err := store.Recent(c.Request().Context(), params.UserID, params.Limit)
	if err != nil {
		logger.Error("Failed to load query history", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, entries)
}
