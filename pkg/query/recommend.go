package query

import (
	"fmt"
	"strings"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/fusion"
)

// relatedQueries maps topic keywords to canned follow-up queries. The
// first matching keyword in declaration order wins.
var relatedQueries = []struct {
	keyword string
	related []string
}{
	{"造价", []string{"如何控制工程造价", "造价指标有哪些参考标准"}},
	{"定额", []string{"最新定额标准是什么", "定额与清单计价的区别"}},
	{"材料", []string{"主要建筑材料价格走势", "材料价格波动如何处理"}},
	{"招标", []string{"招标控制价如何编制", "投标报价策略有哪些"}},
	{"结算", []string{"工程结算审核要点", "结算争议如何处理"}},
}

// GenerateRecommendations derives follow-up hints from the fused result: a
// refinement hint when confidence is low, a data source hint when no
// document evidence contributed, and related queries by keyword.
func GenerateRecommendations(req UnifiedQueryRequest, fused fusion.Result) []Recommendation {
	recommendations := make([]Recommendation, 0, 3)

	if fused.Confidence < 0.5 {
		recommendations = append(recommendations, Recommendation{
			Type:       "query_refinement",
			Suggestion: fmt.Sprintf("请尝试更具体的提问，例如：%s的具体项目类型、地区和时间范围", strings.TrimSpace(req.Query)),
			Confidence: 0.8,
		})
	}

	if !usedSourceType(fused, common.SourceDocuments) {
		recommendations = append(recommendations, Recommendation{
			Type:       "data_source",
			Suggestion: "建议添加文档数据源以获得更完整的答案",
			Confidence: 0.7,
		})
	}

	for _, entry := range relatedQueries {
		if strings.Contains(req.Query, entry.keyword) {
			for _, suggestion := range entry.related {
				recommendations = append(recommendations, Recommendation{
					Type:       "related_query",
					Suggestion: suggestion,
					Confidence: 0.6,
				})
			}
			break
		}
	}

	return recommendations
}

func usedSourceType(fused fusion.Result, t common.SourceType) bool {
	for _, attribution := range fused.Sources {
		if attribution.SourceType == t {
			return true
		}
	}
	return false
}
