package fusion

import (
	"strings"
	"testing"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

func TestExtractAnswerText_EmbeddedJSONFields(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
		want string
	}{
		{
			name: "well-formed blob",
			item: map[string]any{"content": `{"description": "钢筋混凝土框架结构单方造价约4500元"}`},
			want: "钢筋混凝土框架结构单方造价约4500元",
		},
		{
			name: "malformed blob gets repaired",
			item: map[string]any{"content": `{description: '清单计价规范要求综合单价包含管理费', }`},
			want: "清单计价规范要求综合单价包含管理费",
		},
		{
			name: "plain text passes through",
			item: map[string]any{"content": "模板工程按接触面积计算"},
			want: "模板工程按接触面积计算",
		},
		{
			name: "nested map prefers readable field",
			item: map[string]any{"content": map[string]any{"description": "土方开挖需考虑放坡系数", "id": "e12"}},
			want: "土方开挖需考虑放坡系数",
		},
	}
	for _, tt := range tests {
		res := common.DataSourceResult{
			Source: common.DataSource{Type: common.SourceDocuments},
			Data:   &common.Payload{Items: []map[string]any{tt.item}},
		}
		got := extractAnswerText(res)
		if !strings.Contains(got, tt.want) {
			t.Fatalf("%s: extracted %q, want it to contain %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeEmbeddedJSON_NonJSONUnchanged(t *testing.T) {
	if _, ok := decodeEmbeddedJSON("单纯的中文描述，不是JSON"); ok {
		t.Fatalf("plain text must not be treated as an embedded blob")
	}
	if _, ok := decodeEmbeddedJSON(`{"count": 3}`); ok {
		t.Fatalf("a blob without readable text fields must fall back to the raw string")
	}
}
