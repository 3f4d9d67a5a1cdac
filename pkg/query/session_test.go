package query

import (
	"fmt"
	"strings"
	"testing"
)

func TestSessionStore_HistoryCap(t *testing.T) {
	store := NewSessionStore()
	for i := 0; i < sessionHistoryCap+5; i++ {
		store.Append("s1", fmt.Sprintf("问题%d", i), "回答")
	}

	history := store.History("s1")
	if len(history) != sessionHistoryCap {
		t.Fatalf("history length = %d, want %d", len(history), sessionHistoryCap)
	}
	if history[0].Question != "问题5" {
		t.Fatalf("oldest surviving turn = %q, want 问题5", history[0].Question)
	}
}

func TestSessionStore_EnhanceQuery(t *testing.T) {
	store := NewSessionStore()

	if got := store.EnhanceQuery("", "住宅造价"); got != "住宅造价" {
		t.Fatalf("stateless query must pass through, got %q", got)
	}
	if got := store.EnhanceQuery("fresh", "住宅造价"); got != "住宅造价" {
		t.Fatalf("fresh session must pass through, got %q", got)
	}

	for i := 1; i <= 5; i++ {
		store.Append("s1", fmt.Sprintf("问题%d", i), "回答")
	}
	enhanced := store.EnhanceQuery("s1", "那装饰工程呢")
	if !strings.Contains(enhanced, "那装饰工程呢") {
		t.Fatalf("enhanced query lost the original text: %q", enhanced)
	}
	for _, question := range []string{"问题3", "问题4", "问题5"} {
		if !strings.Contains(enhanced, question) {
			t.Fatalf("enhanced query missing recent turn %s: %q", question, enhanced)
		}
	}
	if strings.Contains(enhanced, "问题2") {
		t.Fatalf("enhanced query should only carry the last %d turns: %q", enhancementTurns, enhanced)
	}
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore()
	store.Append("s1", "问题", "回答")
	store.Clear("s1")
	if got := store.History("s1"); len(got) != 0 {
		t.Fatalf("cleared session still has %d turns", len(got))
	}
}

func TestInferQueryType(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"住宅项目造价多少", "cost_estimation"},
		{"人工消耗量定额", "quota_query"},
		{"工程计价规范有哪些规定", "policy_regulation"},
		{"有没有类似项目案例", "case_analysis"},
		{"工程量计算规则", "calculation_rule"},
		{"你好", "general_consultation"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := InferQueryType(tt.query); got != tt.want {
				t.Fatalf("InferQueryType(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestSuggestQueries(t *testing.T) {
	suggestions := SuggestQueries("造价", 3)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	if !strings.Contains(suggestions[0].Text, "造价") {
		t.Fatalf("matching suggestions must rank first, got %q", suggestions[0].Text)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Confidence > suggestions[i-1].Confidence {
			t.Fatalf("confidence must decay, got %v then %v", suggestions[i-1].Confidence, suggestions[i].Confidence)
		}
	}

	if got := SuggestQueries("", 0); len(got) != 5 {
		t.Fatalf("default limit = %d suggestions, want 5", len(got))
	}
}
