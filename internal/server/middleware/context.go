// Package middleware carries the application context through echo
// handlers.
package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/whjyxl/cost-rag/backend/internal/history"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

// App bundles the long-lived collaborators every handler may need.
type App struct {
	DBConn       *pgxpool.Pool
	Queue        *amqp091.Channel
	Orchestrator *query.Orchestrator
	History      *history.Store
}

// AppContext wraps the echo context with the application handles.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the application handles into every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
