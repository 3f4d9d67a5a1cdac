package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/whjyxl/cost-rag/backend/internal/queue"
	"github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

// SubmitBatchHandler enqueues a batch of queries for asynchronous
// execution by the worker and returns the generated batch id.
func SubmitBatchHandler(c echo.Context) error {
	type batchParams struct {
		Requests    []query.UnifiedQueryRequest `json:"requests" validate:"required,min=1,max=20"`
		Concurrency int                         `json:"concurrency,omitempty"`
	}

	params := new(batchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	batchID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate batch id", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	ch := c.(*middleware.AppContext).App.Queue
	err = queue.PublishBatch(ch, queue.BatchQueryMsg{
		BatchID:     batchID,
		Requests:    params.Requests,
		Concurrency: params.Concurrency,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		logger.Error("Failed to enqueue batch", "batchId", batchID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"batch_id": batchID})
}
