package kb

import "strings"

// Intent 查询意图类别，驱动路由分派
type Intent string

const (
	IntentSemanticQuery       Intent = "Semantic Query"
	IntentStatisticalAnalysis Intent = "Statistical Analysis"
	IntentFieldFilter         Intent = "Field Filter"
	IntentFieldValues         Intent = "Field Values"
	IntentTemporalTrend       Intent = "Temporal Trend"
	IntentSolutionSummary     Intent = "Solution Summary"
)

// intentOrder 固定枚举顺序，回复匹配按此顺序取首个命中
var intentOrder = []Intent{
	IntentSemanticQuery,
	IntentStatisticalAnalysis,
	IntentFieldFilter,
	IntentFieldValues,
	IntentTemporalTrend,
	IntentSolutionSummary,
}

// ParseIntentReply 从模型回复中解析意图
// 按固定顺序做子串匹配，模型输出夹带其他文字时仍可命中；
// 无任何命中时回退到 Semantic Query
func ParseIntentReply(reply string) Intent {
	for _, intent := range intentOrder {
		if strings.Contains(reply, string(intent)) {
			return intent
		}
	}
	return IntentSemanticQuery
}
