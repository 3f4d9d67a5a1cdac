package query

import "strings"

// QuerySuggestion is one ranked input suggestion for a partially typed
// query.
type QuerySuggestion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

var cannedSuggestions = []string{
	"住宅项目单方造价是多少",
	"如何编制工程概算",
	"最新人工费定额标准",
	"钢筋混凝土框架结构造价指标",
	"装饰工程造价参考",
	"安装工程费用构成",
	"市政道路工程造价案例",
	"工程量清单计价规范",
}

// SuggestQueries ranks canned suggestions against a partial query: matches
// on the typed prefix first, then the rest, with decaying confidence.
func SuggestQueries(partial string, limit int) []QuerySuggestion {
	if limit <= 0 {
		limit = 5
	}
	partial = strings.TrimSpace(partial)

	ranked := make([]string, 0, len(cannedSuggestions))
	if partial != "" {
		for _, s := range cannedSuggestions {
			if strings.Contains(s, partial) {
				ranked = append(ranked, s)
			}
		}
	}
	for _, s := range cannedSuggestions {
		if len(ranked) >= limit {
			break
		}
		if partial == "" || !strings.Contains(s, partial) {
			ranked = append(ranked, s)
		}
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	suggestions := make([]QuerySuggestion, 0, len(ranked))
	confidence := 0.9
	for _, text := range ranked {
		suggestions = append(suggestions, QuerySuggestion{Text: text, Confidence: confidence})
		confidence -= 0.1
		if confidence < 0.3 {
			confidence = 0.3
		}
	}
	return suggestions
}
