package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type costItem struct {
		Name     string  `json:"name"`
		UnitCost float64 `json:"unit_cost,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  costItem
	}{
		{
			name:  "valid json object",
			input: `{"name":"钢筋混凝土"}`,
			want:  costItem{Name: "钢筋混凝土"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: '钢筋混凝土'}`,
			want:  costItem{Name: "钢筋混凝土"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"钢筋混凝土","unit_cost":3250.5,}`,
			want:  costItem{Name: "钢筋混凝土", UnitCost: 3250.5},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"钢筋混凝土"`,
			want:  costItem{Name: "钢筋混凝土"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{name: '钢筋混凝土'}"`,
			want:  costItem{Name: "钢筋混凝土"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got costItem
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.UnitCost != tc.want.UnitCost {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type costItem struct {
		Name string `json:"name"`
	}

	input := `[{name:'土建'},{name:'安装',}]`
	var got []costItem
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "土建" || got[1].Name != "安装" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two items 土建,安装", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type costItem struct {
		Name string `json:"name"`
	}

	var got costItem
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}
