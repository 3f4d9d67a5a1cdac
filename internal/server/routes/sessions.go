package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
)

type sessionParams struct {
	SessionID string `param:"id" validate:"required"`
}

// GetSessionHandler returns the rolling conversation history of one
// session.
func GetSessionHandler(c echo.Context) error {
	params := new(sessionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	sessions := c.(*middleware.AppContext).App.Orchestrator.Sessions()
	return c.JSON(http.StatusOK, sessions.History(params.SessionID))
}

// ClearSessionHandler drops one session's conversation history.
func ClearSessionHandler(c echo.Context) error {
	params := new(sessionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	sessions := c.(*middleware.AppContext).App.Orchestrator.Sessions()
	sessions.Clear(params.SessionID)
	return c.JSON(http.StatusOK, map[string]bool{"cleared": true})
}
