package query

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/fusion"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
)

const (
	// DefaultSourceTimeout bounds one adapter call.
	DefaultSourceTimeout = 30 * time.Second
	// DefaultMaxConcurrentQueries bounds queries executing at once.
	DefaultMaxConcurrentQueries = 5
)

// HistoryRecorder persists answered queries. Recording is best effort: a
// failure is logged, never surfaced to the caller.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// HistoryEntry is one answered query as persisted to the history store.
type HistoryEntry struct {
	QueryID     string
	Question    string
	Answer      string
	Confidence  float64
	QueryType   string
	SessionID   string
	UserID      string
	ExecutionMs int64
	SourcesUsed []string
	AnsweredAt  time.Time
}

// Orchestrator coordinates multi-source query execution. It owns the only
// process-wide mutable state: the progress tracker and the result cache.
type Orchestrator struct {
	registry *source.Registry
	policy   EarlyTerminationPolicy
	timeout  time.Duration
	inflight *semaphore.Weighted
	cache    *expirable.LRU[string, UnifiedQueryResponse]
	progress *progressTracker
	sessions *SessionStore
	history  HistoryRecorder
}

// OrchestratorParams configures NewOrchestrator. Registry is required;
// everything else has working defaults.
type OrchestratorParams struct {
	Registry             *source.Registry
	Policy               *EarlyTerminationPolicy
	SourceTimeout        time.Duration
	MaxConcurrentQueries int64
	CacheSize            int
	CacheTTL             time.Duration
	History              HistoryRecorder
}

// NewOrchestrator creates a query orchestrator.
func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	policy := DefaultEarlyTermination
	if params.Policy != nil {
		policy = *params.Policy
	}
	timeout := params.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	maxConcurrent := params.MaxConcurrentQueries
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentQueries
	}
	cacheSize := params.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cacheTTL := params.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Orchestrator{
		registry: params.Registry,
		policy:   policy,
		timeout:  timeout,
		inflight: semaphore.NewWeighted(maxConcurrent),
		cache:    expirable.NewLRU[string, UnifiedQueryResponse](cacheSize, nil, cacheTTL),
		progress: newProgressTracker(),
		sessions: NewSessionStore(),
		history:  params.History,
	}
}

// ExecuteQuery runs one unified query end to end: cache check, source
// validation, tiered fan-out, fusion, recommendations. It is total with
// respect to errors: every path returns a well-formed response and nothing
// below it may panic past it.
func (o *Orchestrator) ExecuteQuery(ctx context.Context, req UnifiedQueryRequest) UnifiedQueryResponse {
	start := time.Now()

	key := cacheKey(req.Query, req.DataSources)
	if cached, ok := o.cache.Get(key); ok {
		cached.FromCache = true
		cached.ExecutionTime = time.Since(start).Milliseconds()
		logger.Debug("Query served from cache", "queryId", cached.QueryID)
		return cached
	}

	if err := o.inflight.Acquire(ctx, 1); err != nil {
		return failureResponse("", req, start, "查询已取消")
	}
	defer o.inflight.Release(1)

	queryID := newQueryID()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.progress.start(queryID, len(req.DataSources), cancel)

	resp := o.run(ctx, queryID, req, start)
	if resp.Success {
		o.cache.Add(key, resp)
		o.record(req, resp)
	}
	return resp
}

// GetProgress returns a point-in-time snapshot of a query's progress, or
// false when the query is unknown or already evicted.
func (o *Orchestrator) GetProgress(queryID string) (QueryProgress, bool) {
	return o.progress.snapshot(queryID)
}

// CancelQuery cancels a query while it is still executing. In-flight
// adapter calls receive the context cancellation; results arriving after
// cancellation are discarded.
func (o *Orchestrator) CancelQuery(queryID string) bool {
	cancelled := o.progress.cancelQuery(queryID)
	if cancelled {
		logger.Info("Query cancelled", "queryId", queryID)
	}
	return cancelled
}

// Sessions exposes the conversation session store.
func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

func (o *Orchestrator) run(ctx context.Context, queryID string, req UnifiedQueryRequest, start time.Time) (resp UnifiedQueryResponse) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("查询执行异常: %v", r)
			logger.Error("Query execution panicked", "queryId", queryID, "err", r)
			o.progress.finish(queryID, StatusFailed, msg)
			resp = failureResponse(queryID, req, start, msg)
		}
	}()

	queryText := o.sessions.EnhanceQuery(req.SessionID, req.Query)
	queryType := InferQueryType(queryText)

	usable := usableSources(req.DataSources)
	if len(usable) == 0 {
		const msg = "没有可用的数据源"
		o.progress.finish(queryID, StatusFailed, msg)
		resp = failureResponse(queryID, req, start, msg)
		resp.Progress, _ = o.progress.snapshot(queryID)
		return resp
	}
	o.progress.advance(queryID, "数据源查询", 10, "参数验证")

	topK := req.MaxResults
	if topK <= 0 {
		topK = source.DefaultTopK
	}
	results, terminated := o.runTiers(ctx, queryID, queryText, queryType, topK, usable, len(req.DataSources))
	if o.progress.status(queryID) == StatusCancelled || ctx.Err() != nil {
		return failureResponse(queryID, req, start, "查询已取消")
	}
	if terminated {
		logger.Info("Early termination triggered", "queryId", queryID, "results", len(results))
	}

	o.progress.advance(queryID, "结果融合", 80)
	fused := fusion.FuseAnswers(results, queryText, req.Strategy)

	o.progress.advance(queryID, "生成建议", 90, "结果融合")
	recommendations := GenerateRecommendations(req, fused)

	o.progress.finish(queryID, StatusCompleted)
	progress, _ := o.progress.snapshot(queryID)

	o.sessions.Append(req.SessionID, req.Query, fused.Answer)

	return UnifiedQueryResponse{
		QueryID:         queryID,
		Success:         true,
		FusedAnswer:     fused.Answer,
		Confidence:      fused.Confidence,
		SourceResults:   results,
		Recommendations: recommendations,
		Progress:        progress,
		QueryType:       queryType,
		Timestamp:       time.Now(),
		ExecutionTime:   time.Since(start).Milliseconds(),
	}
}

// runTiers executes the usable sources tier by tier in ascending priority
// order. Within one tier every adapter call runs concurrently and the tier
// joins settle-all: a failing source becomes a failed result, never an
// aborted sibling. Returns all collected results and whether the policy
// cut the remaining tiers.
func (o *Orchestrator) runTiers(ctx context.Context, queryID, queryText, queryType string, topK int, usable []common.DataSource, totalConfigured int) ([]common.DataSourceResult, bool) {
	tiers := groupByPriority(usable)
	results := make([]common.DataSourceResult, 0, len(usable))

	for tierIndex, tier := range tiers {
		if ctx.Err() != nil {
			return results, false
		}

		tierResults := make([]common.DataSourceResult, len(tier.sources))
		eg, tierCtx := errgroup.WithContext(ctx)
		for i, src := range tier.sources {
			eg.Go(func() error {
				tierResults[i] = o.callSource(tierCtx, src, queryText, queryType, topK)
				return nil
			})
		}
		// All funcs return nil; the join itself cannot fail.
		_ = eg.Wait()
		results = append(results, tierResults...)

		percentage := int(math.Round(float64(tierIndex+1)/float64(len(tiers))*70)) + 10
		o.progress.advance(queryID, "数据源查询", percentage,
			fmt.Sprintf("优先级%d数据源查询", tier.priority))

		if tierIndex > 0 && tierIndex < len(tiers)-1 &&
			o.policy.Satisfied(results, totalConfigured) {
			return results, true
		}
	}
	return results, false
}

// callSource wraps one adapter call: per-call timeout, duration
// measurement, and error capture into a failed result.
func (o *Orchestrator) callSource(ctx context.Context, src common.DataSource, queryText, queryType string, topK int) common.DataSourceResult {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result := common.DataSourceResult{
		Source:    src,
		Timestamp: time.Now(),
	}

	adapter, err := o.registry.Lookup(src.Type)
	if err == nil {
		var payload *common.Payload
		var confidence float64
		payload, confidence, err = adapter.Fetch(callCtx, src, source.Query{
			Text:      queryText,
			QueryType: queryType,
			TopK:      topK,
		})
		if err == nil {
			result.Success = true
			result.Data = payload
			result.Confidence = common.Clamp01(confidence)
		}
	}

	result.ExecutionTime = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		logger.Warn("Source query failed", "source", src.ID, "type", src.Type, "err", err)
		return result
	}

	if result.Data != nil {
		for _, item := range result.Data.Items {
			if title, ok := item["title"].(string); ok {
				result.Attribution = append(result.Attribution, title)
			} else if name, ok := item["name"].(string); ok {
				result.Attribution = append(result.Attribution, name)
			}
		}
	}
	return result
}

func (o *Orchestrator) record(req UnifiedQueryRequest, resp UnifiedQueryResponse) {
	if o.history == nil {
		return
	}
	sourcesUsed := make([]string, 0, len(resp.SourceResults))
	for _, r := range resp.SourceResults {
		if r.Success {
			sourcesUsed = append(sourcesUsed, r.Source.ID)
		}
	}
	entry := HistoryEntry{
		QueryID:     resp.QueryID,
		Question:    req.Query,
		Answer:      resp.FusedAnswer,
		Confidence:  resp.Confidence,
		QueryType:   resp.QueryType,
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		ExecutionMs: resp.ExecutionTime,
		SourcesUsed: sourcesUsed,
		AnsweredAt:  resp.Timestamp,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.history.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record query history", "queryId", resp.QueryID, "err", err)
	}
}

type priorityTier struct {
	priority int
	sources  []common.DataSource
}

// groupByPriority buckets sources into tiers sorted by ascending priority.
func groupByPriority(sources []common.DataSource) []priorityTier {
	buckets := make(map[int][]common.DataSource)
	for _, s := range sources {
		buckets[s.Priority] = append(buckets[s.Priority], s)
	}
	priorities := make([]int, 0, len(buckets))
	for p := range buckets {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	tiers := make([]priorityTier, 0, len(priorities))
	for _, p := range priorities {
		tiers = append(tiers, priorityTier{priority: p, sources: buckets[p]})
	}
	return tiers
}

// usableSources drops disabled sources and sources without configuration.
func usableSources(sources []common.DataSource) []common.DataSource {
	usable := make([]common.DataSource, 0, len(sources))
	for _, s := range sources {
		if s.Enabled && len(s.Config) > 0 {
			usable = append(usable, s)
		}
	}
	return usable
}

func failureResponse(queryID string, req UnifiedQueryRequest, start time.Time, msg string) UnifiedQueryResponse {
	return UnifiedQueryResponse{
		QueryID:       queryID,
		Success:       false,
		SourceResults: []common.DataSourceResult{},
		QueryType:     InferQueryType(req.Query),
		Timestamp:     time.Now(),
		ExecutionTime: time.Since(start).Milliseconds(),
		Error:         msg,
	}
}

// newQueryID builds a timestamp-prefixed id. Collision tolerant, not
// cryptographically unique.
func newQueryID() string {
	suffix, err := gonanoid.New(8)
	if err != nil {
		suffix = fmt.Sprintf("%08d", time.Now().Nanosecond())
	}
	return fmt.Sprintf("q_%d_%s", time.Now().UnixMilli(), suffix)
}
