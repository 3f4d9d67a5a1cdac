package common

import "time"

// SourceType identifies the kind of knowledge source behind a DataSource.
// It is the discriminant for adapter dispatch and fusion extraction.
type SourceType string

const (
	SourceDocuments      SourceType = "documents"
	SourceKnowledgeGraph SourceType = "knowledge_graph"
	SourceHistoricalData SourceType = "historical_data"
)

// ParseSourceType converts a raw string into a SourceType. Unknown values
// are returned as-is with ok=false so callers can decide how to degrade.
func ParseSourceType(s string) (SourceType, bool) {
	switch SourceType(s) {
	case SourceDocuments, SourceKnowledgeGraph, SourceHistoricalData:
		return SourceType(s), true
	}
	return SourceType(s), false
}

// DataSource describes one knowledge source configured for a query.
// Priority groups sources into sequential execution tiers (lower number
// runs earlier); Weight scales the source's influence during fusion.
// Sources are created from caller-supplied configuration per query and
// are never persisted by the core.
type DataSource struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     SourceType     `json:"type"`
	Enabled  bool           `json:"enabled"`
	Priority int            `json:"priority"`
	Weight   float64        `json:"weight"`
	Config   map[string]any `json:"config"`
}

// Payload is the normalized envelope every source adapter resolves to.
type Payload struct {
	Items []map[string]any `json:"items"`
}

// DataSourceResult is the outcome of one adapter call for one source.
// It is produced exactly once per source per query and is immutable
// after creation; the fusion engine only reads it.
type DataSourceResult struct {
	Source        DataSource `json:"source"`
	Success       bool       `json:"success"`
	Data          *Payload   `json:"data,omitempty"`
	Confidence    float64    `json:"confidence"`
	ExecutionTime int64      `json:"execution_time_ms"`
	Timestamp     time.Time  `json:"timestamp"`
	Attribution   []string   `json:"attribution,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// SourceAttribution links a span of the fused answer back to the source
// that contributed it.
type SourceAttribution struct {
	SourceID   string     `json:"source_id"`
	SourceName string     `json:"source_name"`
	SourceType SourceType `json:"source_type"`
	Confidence float64    `json:"confidence"`
	Weight     float64    `json:"weight"`
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]. Every similarity and confidence value in
// the core passes through this before leaving a public entry point.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
