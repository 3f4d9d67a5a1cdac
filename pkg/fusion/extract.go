package fusion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/whjyxl/cost-rag/backend/pkg/ai"
	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

const maxExtractItems = 3

// extractorFunc pulls a representative text snippet out of a source payload.
// One extractor is registered per source type; unknown types fall back to a
// generic JSON rendering so extraction never fails the pipeline.
type extractorFunc func(items []map[string]any) string

var extractors = map[common.SourceType]extractorFunc{
	common.SourceDocuments:      extractDocumentAnswer,
	common.SourceKnowledgeGraph: extractKnowledgeGraphAnswer,
	common.SourceHistoricalData: extractHistoricalDataAnswer,
}

func extractAnswerText(res common.DataSourceResult) string {
	if res.Data == nil || len(res.Data.Items) == 0 {
		return ""
	}
	if extract, ok := extractors[res.Source.Type]; ok {
		if text := extract(res.Data.Items); text != "" {
			return text
		}
	}
	return extractGenericAnswer(res.Data.Items)
}

func extractDocumentAnswer(items []map[string]any) string {
	parts := make([]string, 0, maxExtractItems)
	for _, item := range items {
		if len(parts) >= maxExtractItems {
			break
		}
		content := stringField(item, "content", "text", "snippet")
		if content == "" {
			continue
		}
		if title := stringField(item, "title", "name"); title != "" {
			parts = append(parts, fmt.Sprintf("《%s》：%s", title, content))
		} else {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n")
}

func extractKnowledgeGraphAnswer(items []map[string]any) string {
	parts := make([]string, 0, maxExtractItems)
	for _, item := range items {
		if len(parts) >= maxExtractItems {
			break
		}
		name := stringField(item, "name", "entity", "node_name")
		desc := stringField(item, "description", "properties", "summary")
		switch {
		case name != "" && desc != "":
			parts = append(parts, fmt.Sprintf("%s：%s", name, desc))
		case desc != "":
			parts = append(parts, desc)
		case name != "":
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "。")
}

func extractHistoricalDataAnswer(items []map[string]any) string {
	parts := make([]string, 0, maxExtractItems)
	for _, item := range items {
		if len(parts) >= maxExtractItems {
			break
		}
		name := stringField(item, "project_name", "name", "item_name")
		var detail []string
		if cost := numberField(item, "unit_cost", "suggested_unit_cost", "price"); cost > 0 {
			detail = append(detail, fmt.Sprintf("单方造价约%.0f元", cost))
		}
		if area := numberField(item, "building_area", "area"); area > 0 {
			detail = append(detail, fmt.Sprintf("建筑面积%.0f平方米", area))
		}
		if year := numberField(item, "completion_year", "year"); year > 0 {
			detail = append(detail, fmt.Sprintf("%d年", int(year)))
		}
		if name == "" && len(detail) == 0 {
			continue
		}
		if len(detail) == 0 {
			parts = append(parts, name)
			continue
		}
		if name == "" {
			parts = append(parts, strings.Join(detail, "，"))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s（%s）", name, strings.Join(detail, "，")))
	}
	return strings.Join(parts, "；")
}

func extractGenericAnswer(items []map[string]any) string {
	limit := len(items)
	if limit > maxExtractItems {
		limit = maxExtractItems
	}
	raw, err := json.Marshal(items[:limit])
	if err != nil {
		return ""
	}
	return string(raw)
}

func stringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			switch s := v.(type) {
			case string:
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				if inner, ok := decodeEmbeddedJSON(s); ok {
					return inner
				}
				return s
			case map[string]any:
				if inner := readableField(s); inner != "" {
					return inner
				}
				if raw, err := json.Marshal(s); err == nil {
					return string(raw)
				}
			}
		}
	}
	return ""
}

// decodeEmbeddedJSON unwraps a field whose value is itself a JSON blob, as
// descriptions imported from metadata columns often are. Malformed blobs
// are repaired before parsing; if nothing readable comes out the caller
// keeps the raw text.
func decodeEmbeddedJSON(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return "", false
	}
	var decoded any
	if err := ai.UnmarshalFlexible(s, &decoded); err != nil {
		return "", false
	}
	switch v := decoded.(type) {
	case map[string]any:
		if inner := readableField(v); inner != "" {
			return inner, true
		}
	case []any:
		for _, elem := range v {
			if m, ok := elem.(map[string]any); ok {
				if inner := readableField(m); inner != "" {
					return inner, true
				}
			}
		}
	}
	return "", false
}

func readableField(m map[string]any) string {
	for _, key := range []string{"description", "content", "text", "summary", "name"} {
		if inner, ok := m[key].(string); ok && strings.TrimSpace(inner) != "" {
			return strings.TrimSpace(inner)
		}
	}
	return ""
}

func numberField(item map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			switch n := v.(type) {
			case float64:
				return n
			case int:
				return float64(n)
			case int64:
				return float64(n)
			case json.Number:
				if f, err := n.Float64(); err == nil {
					return f
				}
			}
		}
	}
	return 0
}
