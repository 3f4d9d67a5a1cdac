// Package source defines the adapter layer the query orchestrator uses to
// fetch raw results from heterogeneous data sources. Each source type has
// one Adapter implementation; the Registry maps source types to adapters
// so the orchestrator stays independent of concrete backends.
package source

import (
	"context"
	"fmt"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

// Query carries one normalized retrieval request into an adapter.
type Query struct {
	Text      string
	QueryType string
	TopK      int
	Filters   map[string]any
}

// DefaultTopK bounds a retrieval when the caller does not say otherwise.
const DefaultTopK = 5

// Adapter fetches raw results from one kind of data source. It returns the
// payload together with a confidence estimate in [0,1] describing how well
// the payload answers the query. Adapters must honor context cancellation.
type Adapter interface {
	Fetch(ctx context.Context, src common.DataSource, q Query) (*common.Payload, float64, error)
}

// Registry maps source types to their adapters.
type Registry struct {
	adapters map[common.SourceType]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[common.SourceType]Adapter)}
}

// Register binds an adapter to a source type, replacing any previous
// binding.
func (r *Registry) Register(t common.SourceType, a Adapter) {
	r.adapters[t] = a
}

// Lookup returns the adapter bound to the source type.
func (r *Registry) Lookup(t common.SourceType) (Adapter, error) {
	a, ok := r.adapters[t]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source type %q", t)
	}
	return a, nil
}

// Types lists the registered source types.
func (r *Registry) Types() []common.SourceType {
	types := make([]common.SourceType, 0, len(r.adapters))
	for t := range r.adapters {
		types = append(types, t)
	}
	return types
}
