package fusion

import "testing"

func TestExtractKeyPoints(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"single sentence without delimiter", "单方造价约3500元", 1},
		{"two sentences", "造价约3500元。工期两年。", 2},
		{"more than three sentences capped", "一。二。三。四。五。", 3},
		{"empty", "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractKeyPoints(tc.in)
			if len(got) != tc.want {
				t.Fatalf("extractKeyPoints(%q) = %v, want %d points", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractEntities(t *testing.T) {
	entities := extractEntities("住宅项目单方造价约3500元，建筑面积12000平方米")

	found := func(want string) bool {
		for _, e := range entities {
			if e == want {
				return true
			}
		}
		return false
	}

	if !found("3500元") {
		t.Fatalf("expected numeric entity 3500元, got %v", entities)
	}
	if !found("12000平方米") {
		t.Fatalf("expected numeric entity 12000平方米, got %v", entities)
	}
	if !found("住宅") {
		t.Fatalf("expected project type entity 住宅, got %v", entities)
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"positive", "成本控制良好，方案合理", "positive"},
		{"negative", "存在超支风险和延误问题", "negative"},
		{"tie is neutral", "方案合理但存在风险", "neutral"},
		{"no signal", "单方造价约3500元", "neutral"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifySentiment(tc.in); got != tc.want {
				t.Fatalf("classifySentiment(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassifyComplexity(t *testing.T) {
	short := "造价3500元。"
	long := ""
	for i := 0; i < 40; i++ {
		long += "这是一个非常长的句子用来测试复杂度分类的行为表现。"
	}

	if got := classifyComplexity(short); got != "simple" {
		t.Fatalf("classifyComplexity(short) = %q, want simple", got)
	}
	if got := classifyComplexity(long); got != "complex" {
		t.Fatalf("classifyComplexity(long) = %q, want complex", got)
	}
}

func TestPreprocessText_StripsDisallowed(t *testing.T) {
	got := preprocessText("造价≈3500元★☆")
	if got.Text != "造价3500元" {
		t.Fatalf("preprocessText stripped text = %q, want 造价3500元", got.Text)
	}
}
