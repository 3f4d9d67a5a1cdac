package query

import (
	"testing"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/fusion"
)

func TestGenerateRecommendations(t *testing.T) {
	documentAttribution := common.SourceAttribution{
		SourceID:   "docs",
		SourceType: common.SourceDocuments,
	}

	tests := []struct {
		name      string
		query     string
		fused     fusion.Result
		wantTypes map[string]bool
	}{
		{
			"low confidence asks for refinement",
			"造价",
			fusion.Result{Confidence: 0.3, Sources: []common.SourceAttribution{documentAttribution}},
			map[string]bool{"query_refinement": true, "related_query": true},
		},
		{
			"missing documents suggests the source",
			"项目情况",
			fusion.Result{Confidence: 0.9, Sources: []common.SourceAttribution{{SourceType: common.SourceKnowledgeGraph}}},
			map[string]bool{"data_source": true},
		},
		{
			"confident document answer needs nothing",
			"项目情况",
			fusion.Result{Confidence: 0.9, Sources: []common.SourceAttribution{documentAttribution}},
			map[string]bool{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRecommendations(UnifiedQueryRequest{Query: tt.query}, tt.fused)
			checkRecommendations(t, got, tt.wantTypes)
		})
	}
}

func TestGenerateRecommendations_KeywordOrderStable(t *testing.T) {
	req := UnifiedQueryRequest{Query: "工程结算时如何核对造价与材料价格"}
	fused := fusion.Result{
		Confidence: 0.9,
		Sources:    []common.SourceAttribution{{SourceID: "docs", SourceType: common.SourceDocuments}},
	}

	first := GenerateRecommendations(req, fused)
	for i := 0; i < 20; i++ {
		again := GenerateRecommendations(req, fused)
		if len(again) != len(first) {
			t.Fatalf("run %d returned %d recommendations, first run returned %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Suggestion != first[j].Suggestion {
				t.Fatalf("run %d suggestion %d = %q, first run gave %q", i, j, again[j].Suggestion, first[j].Suggestion)
			}
		}
	}

	if len(first) == 0 || first[0].Suggestion != "如何控制工程造价" {
		t.Fatalf("expected the first declared keyword's queries, got %v", first)
	}
}

func checkRecommendations(t *testing.T, got []Recommendation, wantTypes map[string]bool) {
	t.Helper()
	gotTypes := map[string]bool{}
	for _, rec := range got {
		gotTypes[rec.Type] = true
		if rec.Suggestion == "" {
			t.Fatalf("recommendation %q has no suggestion text", rec.Type)
		}
	}
	if len(gotTypes) != len(wantTypes) {
		t.Fatalf("recommendation types = %v, want %v", gotTypes, wantTypes)
	}
	for wantType := range wantTypes {
		if !gotTypes[wantType] {
			t.Fatalf("missing recommendation type %q in %v", wantType, gotTypes)
		}
	}
}
