package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency bounds parallel queries in one batch.
const defaultBatchConcurrency = 3

// ExecuteBatch runs several queries with bounded concurrency and returns
// the responses in request order. Individual query failures appear as
// failed responses in place, never as a batch error.
func (o *Orchestrator) ExecuteBatch(ctx context.Context, requests []UnifiedQueryRequest, concurrency int) []UnifiedQueryResponse {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	responses := make([]UnifiedQueryResponse, len(requests))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, req := range requests {
		eg.Go(func() error {
			responses[i] = o.ExecuteQuery(egCtx, req)
			return nil
		})
	}
	_ = eg.Wait()
	return responses
}
