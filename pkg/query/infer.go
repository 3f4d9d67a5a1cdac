package query

import "strings"

// queryTypeKeywords maps query categories to their trigger words. The
// first matching category in declaration order wins.
var queryTypeKeywords = []struct {
	queryType string
	keywords  []string
}{
	{"cost_estimation", []string{"造价", "估算", "多少钱", "费用", "成本", "预算"}},
	{"quota_query", []string{"定额", "消耗量", "人工", "材料", "机械"}},
	{"policy_regulation", []string{"政策", "规定", "标准", "规范", "办法", "条例"}},
	{"case_analysis", []string{"案例", "项目", "经验", "参考", "类似"}},
	{"calculation_rule", []string{"计算", "规则", "公式", "工程量"}},
}

// InferQueryType classifies a query by keyword lookup. Unmatched queries
// fall back to general consultation.
func InferQueryType(queryText string) string {
	for _, entry := range queryTypeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(queryText, keyword) {
				return entry.queryType
			}
		}
	}
	return "general_consultation"
}
