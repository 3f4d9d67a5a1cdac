package fusion

import (
	"testing"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

func answerFor(name, text string, confidence float64, srcType common.SourceType) *WeightedAnswer {
	pre := preprocessText(text)
	return &WeightedAnswer{
		Text:       pre.Text,
		Confidence: confidence,
		Source: common.DataSource{
			ID:       name,
			Name:     name,
			Type:     srcType,
			Priority: 1,
		},
		Weight:    1.0,
		KeyPoints: pre.KeyPoints,
		Entities:  pre.Entities,
	}
}

func TestDetectConflicts_Contradiction(t *testing.T) {
	a := answerFor("docs", "钢结构施工需要焊接工艺", 0.9, common.SourceDocuments)
	b := answerFor("kg", "abcd efgh ijkl", 0.8, common.SourceKnowledgeGraph)
	answers := []*WeightedAnswer{a, b}

	conflicts := DetectConflicts(answers, pairwiseSimilarities(answers))

	var found *Conflict
	for i := range conflicts {
		if conflicts[i].Type == ConflictContradiction {
			found = &conflicts[i]
		}
	}
	if found == nil {
		t.Fatalf("expected contradiction conflict, got %v", conflicts)
	}
	if found.Severity != SeverityMedium {
		t.Fatalf("contradiction severity = %q, want medium", found.Severity)
	}
}

func TestDetectConflicts_Symmetry(t *testing.T) {
	a := answerFor("a", "钢结构施工需要焊接工艺", 0.9, common.SourceDocuments)
	b := answerFor("b", "abcd efgh ijkl", 0.8, common.SourceKnowledgeGraph)

	forward := []*WeightedAnswer{a, b}
	backward := []*WeightedAnswer{b, a}

	cf := DetectConflicts(forward, pairwiseSimilarities(forward))
	cb := DetectConflicts(backward, pairwiseSimilarities(backward))

	if len(cf) != len(cb) {
		t.Fatalf("conflict count differs by order: %d vs %d", len(cf), len(cb))
	}
	for i := range cf {
		if cf[i].Type != cb[i].Type || cf[i].Severity != cb[i].Severity {
			t.Fatalf("conflict %d differs by order: %v/%v vs %v/%v",
				i, cf[i].Type, cf[i].Severity, cb[i].Type, cb[i].Severity)
		}
	}
}

func TestDetectConflicts_Numeric(t *testing.T) {
	a := answerFor("a", "单方造价约3500元", 0.9, common.SourceDocuments)
	b := answerFor("b", "单方造价约2000元", 0.4, common.SourceHistoricalData)
	answers := []*WeightedAnswer{a, b}

	conflicts := DetectConflicts(answers, pairwiseSimilarities(answers))

	var found bool
	for _, c := range conflicts {
		if c.Type == ConflictFactual && c.Severity == SeverityLow {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected factual conflict for >20%% numeric deviation, got %v", conflicts)
	}
}

func TestDetectConflicts_NumericWithinTolerance(t *testing.T) {
	a := answerFor("a", "单方造价约3500元", 0.9, common.SourceDocuments)
	b := answerFor("b", "单方造价约3300元", 0.8, common.SourceHistoricalData)
	answers := []*WeightedAnswer{a, b}

	for _, c := range DetectConflicts(answers, pairwiseSimilarities(answers)) {
		if c.Type == ConflictFactual {
			t.Fatalf("unexpected factual conflict for <20%% deviation: %+v", c)
		}
	}
}

func TestDetectConflicts_Categorical(t *testing.T) {
	a := answerFor("a", "该住宅项目采用剪力墙结构", 0.7, common.SourceDocuments)
	b := answerFor("b", "该办公项目采用框架结构", 0.7, common.SourceKnowledgeGraph)
	answers := []*WeightedAnswer{a, b}

	conflicts := DetectConflicts(answers, pairwiseSimilarities(answers))

	var found bool
	for _, c := range conflicts {
		if c.Type == ConflictCategorical {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected categorical conflict for differing project types, got %v", conflicts)
	}
}

func TestResolveConflicts_WeightOnlySideEffect(t *testing.T) {
	a := answerFor("a", "单方造价约3500元", 0.9, common.SourceDocuments)
	b := answerFor("b", "单方造价约2000元", 0.7, common.SourceHistoricalData)
	answers := []*WeightedAnswer{a, b}
	conflicts := DetectConflicts(answers, pairwiseSimilarities(answers))
	if len(conflicts) == 0 {
		t.Fatalf("expected at least one conflict")
	}

	beforeConfA, beforeConfB := a.Confidence, b.Confidence
	beforeWeightA := a.Weight

	resolveConflicts(StrategyWeighted, conflicts, answers)

	if a.Confidence != beforeConfA || b.Confidence != beforeConfB {
		t.Fatalf("resolution must not change confidence")
	}
	if a.Weight >= beforeWeightA {
		t.Fatalf("expected conflicting answer weight to drop: before=%v after=%v", beforeWeightA, a.Weight)
	}
}
