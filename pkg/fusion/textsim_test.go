package fusion

import "testing"

func TestCalculateTextSimilarity_SelfIdentity(t *testing.T) {
	texts := []string{
		"住宅项目单方造价约3500元。",
		"钢筋混凝土结构的施工工艺包括绑扎、支模、浇筑。养护周期一般为28天。",
		"short english text",
		"混合 mixed 文本 text 123",
	}

	for _, text := range texts {
		sim := CalculateTextSimilarity(text, text)
		if sim.Similarity != 1.0 {
			t.Fatalf("self similarity of %q = %v, want 1.0", text, sim.Similarity)
		}
		if sim.KeyPointOverlap != 1.0 {
			t.Fatalf("self key point overlap of %q = %v, want 1.0", text, sim.KeyPointOverlap)
		}
	}
}

func TestCalculateTextSimilarity_Disjoint(t *testing.T) {
	sim := CalculateTextSimilarity("住宅项目", "abcd efgh")
	if sim.Similarity != 0 {
		t.Fatalf("disjoint similarity = %v, want 0", sim.Similarity)
	}
}

func TestCalculateTextSimilarity_PartialOverlap(t *testing.T) {
	a := "住宅项目单方造价约3500元"
	b := "住宅项目的建设周期为两年"
	sim := CalculateTextSimilarity(a, b)
	if sim.Similarity <= 0 || sim.Similarity >= 1 {
		t.Fatalf("partial overlap similarity = %v, want within (0, 1)", sim.Similarity)
	}
}

func TestTokenize_HanAndLatin(t *testing.T) {
	tokens := tokenize("住宅Cost 123")
	for _, want := range []string{"住", "宅", "cost", "123"} {
		if _, ok := tokens[want]; !ok {
			t.Fatalf("tokenize missing token %q, got %v", want, tokens)
		}
	}
}
