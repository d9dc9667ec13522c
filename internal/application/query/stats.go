package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// fallbackSentinel 模型认为问题含糊时的回传值
const fallbackSentinel = "__fallback__"

// statsInstruction 统计字段选择指令
const statsInstruction = `You are helping analyze a structured knowledge base.
From the user's question, choose ONE of the following fields to do statistical aggregation:
 - subcategory
 - configurationItem
 - roleComponent
 - location
If the request is vague or unclear, respond with '__fallback__'.
Only return one word: the field name or '__fallback__'.
Do not return any explanation or code block. Just the field name.`

// StatsEngine 统计分析引擎
type StatsEngine struct {
	gateway  kb.InferenceGateway
	store    kb.MetadataStore
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	logger   *slog.Logger
}

// NewStatsEngine 创建统计分析引擎
func NewStatsEngine(gateway kb.InferenceGateway, store kb.MetadataStore, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *StatsEngine {
	return &StatsEngine{
		gateway:  gateway,
		store:    store,
		models:   models,
		timeouts: timeouts,
		logger:   applog.NewModuleLogger("query", "stats"),
	}
}

// Analyze 统计分析：由模型选定聚合字段后分组计数
func (e *StatsEngine) Analyze(ctx context.Context, message string) string {
	records, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ 無法載入 metadata：%v", err)
	}

	prompt := fmt.Sprintf("%s\n\nUser: %s", statsInstruction, message)
	result := e.gateway.Infer(ctx, prompt, e.models.ClassifyPrimary, e.timeouts.Heavy())
	if !result.OK() {
		return fmt.Sprintf("⚠️ 呼叫模型分類欄位時出錯：%s", result.Detail)
	}

	reply := NormalizeFieldReply(result.Output)
	e.logger.Debug("Aggregation field reply", "reply", reply)

	if reply == fallbackSentinel {
		// 含糊请求：并列输出两个最常用维度的统计
		e.logger.Info("Vague request, aggregating both subcategory and configurationItem")
		return strings.Join([]string{
			aggregateField(kb.FieldSubcategory, records),
			aggregateField(kb.FieldConfigurationItem, records),
		}, "\n\n")
	}

	field, ok := kb.CanonicalField(reply)
	if !ok {
		// 非允许字段不是致命错误，原样回报给使用者
		e.logger.Warn("Unrecognized aggregation field", "reply", reply)
		return fmt.Sprintf("⚠️ 無法判斷要統計的欄位（回覆為：%s）", reply)
	}

	return aggregateField(field, records)
}

// aggregateField 按字段值分组计数，输出前 5 名
// 排序只按计数稳定降序，同计数保持首次出现顺序
func aggregateField(field string, records []kb.Record) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range records {
		key := records[i].FieldOrUnlabeled(field)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	top := order
	if len(top) > 5 {
		top = top[:5]
	}

	lines := make([]string, 0, len(top))
	for i, key := range top {
		lines = append(lines, fmt.Sprintf("%d. %s: %d 筆", i+1, key, counts[key]))
	}

	return fmt.Sprintf("📊 統計結果（依 %s）：\n%s", field, strings.Join(lines, "\n"))
}
