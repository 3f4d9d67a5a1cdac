package fusion

import (
	"strings"
	"testing"
	"time"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

func docResult(confidence float64, items ...map[string]any) common.DataSourceResult {
	return common.DataSourceResult{
		Source: common.DataSource{
			ID:       "docs-1",
			Name:     "文档检索",
			Type:     common.SourceDocuments,
			Enabled:  true,
			Priority: 1,
		},
		Success:       true,
		Data:          &common.Payload{Items: items},
		Confidence:    confidence,
		ExecutionTime: 120,
		Timestamp:     time.Now(),
	}
}

func historyResult(confidence float64, items ...map[string]any) common.DataSourceResult {
	return common.DataSourceResult{
		Source: common.DataSource{
			ID:       "hist-1",
			Name:     "历史项目",
			Type:     common.SourceHistoricalData,
			Enabled:  true,
			Priority: 2,
		},
		Success:       true,
		Data:          &common.Payload{Items: items},
		Confidence:    confidence,
		ExecutionTime: 200,
		Timestamp:     time.Now(),
	}
}

func TestFuseAnswers_NoUsableResults(t *testing.T) {
	failed := common.DataSourceResult{
		Source:  common.DataSource{ID: "x", Type: common.SourceDocuments},
		Success: false,
		Error:   "connection refused",
	}

	res := FuseAnswers([]common.DataSourceResult{failed}, "问题", StrategyWeighted)

	if res.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", res.Confidence)
	}
	if res.Answer != NoInformationAnswer {
		t.Fatalf("answer = %q, want no-information answer", res.Answer)
	}
}

// The documents source answers with high confidence while the historical
// source makes a numeric claim more than 20% off. Conflict dampening must
// pull the fused confidence strictly below the documents source's raw 0.9.
func TestFuseAnswers_ConflictDampensConfidence(t *testing.T) {
	results := []common.DataSourceResult{
		docResult(0.9, map[string]any{
			"title":   "造价指标手册",
			"content": "住宅项目单方造价约3500元",
		}),
		historyResult(0.4, map[string]any{
			"project_name": "某历史住宅项目",
			"unit_cost":    2000.0,
		}),
	}

	res := FuseAnswers(results, "住宅项目单方造价是多少", StrategyWeighted)

	if res.Metadata.ConflictsResolved < 1 {
		t.Fatalf("conflictsResolved = %d, want >= 1", res.Metadata.ConflictsResolved)
	}
	if res.Confidence >= 0.9 {
		t.Fatalf("confidence = %v, want strictly less than 0.9 after conflict dampening", res.Confidence)
	}
	if res.Metadata.SourcesUsed != 2 {
		t.Fatalf("sourcesUsed = %d, want 2", res.Metadata.SourcesUsed)
	}
}

func TestFuseAnswers_WeightedLayout(t *testing.T) {
	results := []common.DataSourceResult{
		docResult(0.9, map[string]any{"content": "钢筋混凝土单方造价约3500元"}),
		historyResult(0.8, map[string]any{"project_name": "历史项目A", "unit_cost": 3400.0}),
	}

	res := FuseAnswers(results, "单方造价", StrategyWeighted)

	if !strings.Contains(res.Answer, "主要信息") {
		t.Fatalf("weighted answer missing primary block: %q", res.Answer)
	}
	if !strings.Contains(res.Answer, "补充信息") {
		t.Fatalf("weighted answer missing supplement block: %q", res.Answer)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("attribution count = %d, want 2", len(res.Sources))
	}
}

func TestFuseAnswers_HighestConfidenceVerbatim(t *testing.T) {
	results := []common.DataSourceResult{
		docResult(0.9, map[string]any{"content": "单方造价约3500元"}),
		historyResult(0.5, map[string]any{"project_name": "历史项目B", "unit_cost": 3300.0}),
	}

	res := FuseAnswers(results, "单方造价", StrategyHighestConfidence)

	if !strings.Contains(res.Answer, "3500") {
		t.Fatalf("expected highest-confidence answer text, got %q", res.Answer)
	}
	if strings.Contains(res.Answer, "主要信息") {
		t.Fatalf("highest_confidence must emit the answer verbatim, got %q", res.Answer)
	}
}

func TestFuseAnswers_UnknownSourceTypeFallsBack(t *testing.T) {
	res := FuseAnswers([]common.DataSourceResult{{
		Source:     common.DataSource{ID: "w", Name: "天气", Type: common.SourceType("weather")},
		Success:    true,
		Data:       &common.Payload{Items: []map[string]any{{"temp": 21.5}}},
		Confidence: 0.7,
	}}, "今天天气", StrategyWeighted)

	if res.Answer == "" || res.Answer == DegradedAnswer {
		t.Fatalf("generic extraction must not fail, got %q", res.Answer)
	}
	if res.Metadata.SourcesUsed != 1 {
		t.Fatalf("sourcesUsed = %d, want 1", res.Metadata.SourcesUsed)
	}
}

func TestFuseAnswers_HowToQuestionFormatsSteps(t *testing.T) {
	results := []common.DataSourceResult{
		docResult(0.8, map[string]any{"content": "先进行基础开挖。然后绑扎钢筋。最后浇筑混凝土。"}),
	}

	res := FuseAnswers(results, "如何进行基础施工", StrategyHighestConfidence)

	if !strings.Contains(res.Answer, "操作步骤") {
		t.Fatalf("expected step formatting for how-to question, got %q", res.Answer)
	}
}
