package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

// GetSuggestionsHandler returns ranked query suggestions for a partially
// typed query.
func GetSuggestionsHandler(c echo.Context) error {
	type suggestionParams struct {
		Partial string `query:"q"`
		Limit   int    `query:"limit"`
	}

	params := new(suggestionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	return c.JSON(http.StatusOK, query.SuggestQueries(params.Partial, params.Limit))
}
