package server

import (
	"github.com/labstack/echo/v4"

	"github.com/whjyxl/cost-rag/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Query routes
	apiRoutes.POST("/query", routes.ExecuteQueryHandler)
	apiRoutes.GET("/query/suggestions", routes.GetSuggestionsHandler)
	apiRoutes.GET("/query/history", routes.GetQueryHistoryHandler)
	apiRoutes.GET("/query/:id/progress", routes.GetQueryProgressHandler)
	apiRoutes.DELETE("/query/:id", routes.CancelQueryHandler)
	apiRoutes.POST("/query/batch", routes.SubmitBatchHandler)

	// Conversation session routes
	apiRoutes.GET("/sessions/:id", routes.GetSessionHandler)
	apiRoutes.DELETE("/sessions/:id", routes.ClearSessionHandler)

	// Similarity and estimation routes
	apiRoutes.POST("/similar-projects", routes.FindSimilarProjectsHandler)
	apiRoutes.GET("/benchmarks", routes.GetBenchmarkHandler)
}
