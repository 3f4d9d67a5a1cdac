// Package query implements the unified query orchestrator. It validates
// and groups data sources into priority tiers, fans out adapter calls per
// tier with a settle-all join, tracks per-query progress, keeps a
// short-lived result cache, and hands the collected results to the fusion
// engine.
package query

import (
	"time"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/fusion"
)

// Status is the lifecycle state of one query.
type Status string

const (
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// UnifiedQueryRequest is one inbound query over a set of data sources.
type UnifiedQueryRequest struct {
	Query       string              `json:"query" validate:"required"`
	DataSources []common.DataSource `json:"data_sources" validate:"required,min=1,dive"`
	Strategy    fusion.Strategy     `json:"strategy,omitempty"`
	MaxResults  int                 `json:"max_results,omitempty"`
	SessionID   string              `json:"session_id,omitempty"`
	UserID      string              `json:"user_id,omitempty"`
}

// QueryProgress is the live execution state of one query. It is mutated in
// place as tiers complete and read out as point-in-time snapshots.
type QueryProgress struct {
	QueryID        string     `json:"query_id"`
	Status         Status     `json:"status"`
	CurrentStep    string     `json:"current_step"`
	CompletedSteps []string   `json:"completed_steps"`
	TotalSteps     int        `json:"total_steps"`
	Percentage     int        `json:"percentage"`
	Errors         []string   `json:"errors,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	CompletedTime  *time.Time `json:"completed_time,omitempty"`
}

// Recommendation is one follow-up hint generated from a fused result.
type Recommendation struct {
	Type       string  `json:"type"`
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// UnifiedQueryResponse is the terminal artifact handed back to the caller
// and the value stored in the result cache.
type UnifiedQueryResponse struct {
	QueryID         string                    `json:"query_id"`
	Success         bool                      `json:"success"`
	FusedAnswer     string                    `json:"fused_answer"`
	Confidence      float64                   `json:"confidence"`
	SourceResults   []common.DataSourceResult `json:"source_results"`
	Recommendations []Recommendation          `json:"recommendations,omitempty"`
	Progress        QueryProgress             `json:"progress"`
	QueryType       string                    `json:"query_type"`
	Timestamp       time.Time                 `json:"timestamp"`
	ExecutionTime   int64                     `json:"execution_time_ms"`
	FromCache       bool                      `json:"from_cache"`
	Error           string                    `json:"error,omitempty"`
}
