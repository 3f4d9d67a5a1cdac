package query

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
)

type stubAdapter struct {
	mu         sync.Mutex
	calls      []string
	delays     map[string]time.Duration
	confidence map[string]float64
	blockOnCtx bool
}

func (a *stubAdapter) Fetch(ctx context.Context, src common.DataSource, q source.Query) (*common.Payload, float64, error) {
	a.mu.Lock()
	a.calls = append(a.calls, src.ID)
	a.mu.Unlock()

	if a.blockOnCtx {
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	if delay, ok := a.delays[src.ID]; ok {
		time.Sleep(delay)
	}

	confidence := 0.5
	if c, ok := a.confidence[src.ID]; ok {
		confidence = c
	}
	payload := &common.Payload{Items: []map[string]any{
		{"title": "造价指标", "content": "住宅项目单方造价约3500元，数据来源" + src.ID},
	}}
	return payload, confidence, nil
}

func (a *stubAdapter) callIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func testSource(id string, t common.SourceType, priority int) common.DataSource {
	return common.DataSource{
		ID:       id,
		Name:     id,
		Type:     t,
		Enabled:  true,
		Priority: priority,
		Config:   map[string]any{"limit": 5},
	}
}

func newTestOrchestrator(adapter source.Adapter) *Orchestrator {
	registry := source.NewRegistry()
	registry.Register(common.SourceDocuments, adapter)
	registry.Register(common.SourceKnowledgeGraph, adapter)
	registry.Register(common.SourceHistoricalData, adapter)
	return NewOrchestrator(OrchestratorParams{Registry: registry})
}

func TestExecuteQuery_TierOrderingUnderAdverseLatency(t *testing.T) {
	adapter := &stubAdapter{
		// The highest-priority tier is the slowest; ordering must hold
		// regardless.
		delays: map[string]time.Duration{
			"kg":   40 * time.Millisecond,
			"docs": 30 * time.Millisecond,
		},
	}
	orchestrator := newTestOrchestrator(adapter)

	resp := orchestrator.ExecuteQuery(context.Background(), UnifiedQueryRequest{
		Query: "住宅造价",
		DataSources: []common.DataSource{
			testSource("docs", common.SourceDocuments, 2),
			testSource("kg", common.SourceKnowledgeGraph, 1),
			testSource("kg2", common.SourceKnowledgeGraph, 1),
			testSource("hist", common.SourceHistoricalData, 3),
		},
	})
	if !resp.Success {
		t.Fatalf("query failed: %v", resp.Error)
	}

	var tierSteps []string
	for _, step := range resp.Progress.CompletedSteps {
		if strings.HasPrefix(step, "优先级") {
			tierSteps = append(tierSteps, step)
		}
	}
	want := []string{"优先级1数据源查询", "优先级2数据源查询", "优先级3数据源查询"}
	if len(tierSteps) != len(want) {
		t.Fatalf("tier steps = %v, want %v", tierSteps, want)
	}
	for i := range want {
		if tierSteps[i] != want[i] {
			t.Fatalf("tier steps = %v, want %v", tierSteps, want)
		}
	}

	calls := adapter.callIDs()
	if len(calls) != 4 {
		t.Fatalf("expected 4 adapter calls, got %v", calls)
	}
	// Tier 1 sources settle before the tier 2 source starts.
	if calls[2] != "docs" || calls[3] != "hist" {
		t.Fatalf("lower-priority tiers started early: %v", calls)
	}
}

func TestExecuteQuery_CacheHitIdempotence(t *testing.T) {
	adapter := &stubAdapter{}
	orchestrator := newTestOrchestrator(adapter)
	req := UnifiedQueryRequest{
		Query: "住宅造价",
		DataSources: []common.DataSource{
			testSource("docs", common.SourceDocuments, 1),
		},
	}

	first := orchestrator.ExecuteQuery(context.Background(), req)
	if first.FromCache {
		t.Fatalf("first execution unexpectedly served from cache")
	}
	second := orchestrator.ExecuteQuery(context.Background(), req)
	if !second.FromCache {
		t.Fatalf("second execution not served from cache")
	}
	if second.FusedAnswer != first.FusedAnswer {
		t.Fatalf("cached answer differs: %q vs %q", second.FusedAnswer, first.FusedAnswer)
	}
	if got := len(adapter.callIDs()); got != 1 {
		t.Fatalf("expected 1 adapter call total, got %d", got)
	}
}

func TestExecuteQuery_NoUsableSourcesFailsFast(t *testing.T) {
	adapter := &stubAdapter{}
	orchestrator := newTestOrchestrator(adapter)

	disabled := testSource("docs", common.SourceDocuments, 1)
	disabled.Enabled = false
	unconfigured := testSource("kg", common.SourceKnowledgeGraph, 1)
	unconfigured.Config = nil

	resp := orchestrator.ExecuteQuery(context.Background(), UnifiedQueryRequest{
		Query:       "住宅造价",
		DataSources: []common.DataSource{disabled, unconfigured},
	})
	if resp.Success {
		t.Fatalf("expected failure with no usable sources")
	}
	if resp.Error == "" {
		t.Fatalf("expected a descriptive error")
	}
	if len(resp.SourceResults) != 0 {
		t.Fatalf("expected empty source results, got %d", len(resp.SourceResults))
	}
	if calls := adapter.callIDs(); len(calls) != 0 {
		t.Fatalf("adapters must not be invoked, got calls %v", calls)
	}
}

func TestExecuteQuery_EarlyTerminationSkipsLastTier(t *testing.T) {
	adapter := &stubAdapter{
		confidence: map[string]float64{
			"docs": 0.9,
			"kg":   0.9,
			"kg2":  0.85,
		},
	}
	orchestrator := newTestOrchestrator(adapter)

	resp := orchestrator.ExecuteQuery(context.Background(), UnifiedQueryRequest{
		Query: "住宅造价",
		DataSources: []common.DataSource{
			testSource("docs", common.SourceDocuments, 1),
			testSource("kg", common.SourceKnowledgeGraph, 1),
			testSource("kg2", common.SourceKnowledgeGraph, 2),
			testSource("hist", common.SourceHistoricalData, 3),
		},
	})
	if !resp.Success {
		t.Fatalf("query failed: %v", resp.Error)
	}
	for _, id := range adapter.callIDs() {
		if id == "hist" {
			t.Fatalf("last tier ran despite satisfied termination policy")
		}
	}
	if len(resp.SourceResults) != 3 {
		t.Fatalf("expected 3 source results, got %d", len(resp.SourceResults))
	}
}

func TestExecuteQuery_ContextCancellation(t *testing.T) {
	adapter := &stubAdapter{blockOnCtx: true}
	orchestrator := newTestOrchestrator(adapter)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	resp := orchestrator.ExecuteQuery(ctx, UnifiedQueryRequest{
		Query: "住宅造价",
		DataSources: []common.DataSource{
			testSource("docs", common.SourceDocuments, 1),
		},
	})
	if resp.Success {
		t.Fatalf("cancelled query must not succeed")
	}
}

func TestCancelQuery_UnknownID(t *testing.T) {
	orchestrator := newTestOrchestrator(&stubAdapter{})
	if orchestrator.CancelQuery("missing") {
		t.Fatalf("cancelling an unknown query must return false")
	}
}

func TestEarlyTerminationPolicy_Satisfied(t *testing.T) {
	result := func(success bool, confidence float64) common.DataSourceResult {
		return common.DataSourceResult{Success: success, Confidence: confidence}
	}
	tests := []struct {
		name            string
		results         []common.DataSourceResult
		totalConfigured int
		want            bool
	}{
		{
			"two high confidence and enough successes",
			[]common.DataSourceResult{result(true, 0.9), result(true, 0.85), result(true, 0.4)},
			4, true,
		},
		{
			"only one high confidence",
			[]common.DataSourceResult{result(true, 0.9), result(true, 0.5), result(true, 0.5)},
			4, false,
		},
		{
			"success ratio too low",
			[]common.DataSourceResult{result(true, 0.9), result(true, 0.9)},
			4, false,
		},
		{
			"failures do not count toward the success ratio",
			[]common.DataSourceResult{result(false, 0.9), result(false, 0.9), result(true, 0.9), result(true, 0.85)},
			4, false,
		},
		{"no sources", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultEarlyTermination.Satisfied(tt.results, tt.totalConfigured); got != tt.want {
				t.Fatalf("Satisfied = %v, want %v", got, tt.want)
			}
		})
	}
}
