package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// followUpKeywords 追问判定关键词，小写全文包含即命中
var followUpKeywords = []string{
	"previous",
	"last query",
	"those",
	"add filter",
	"now show",
	"continue",
	"follow up",
}

// followUpInstruction 追加过滤条件解析指令
const followUpInstruction = "You are a filter parser. Based on this message, extract an additional field and value to add as a filter.\n" +
	"Return JSON like: {\"field\": \"subcategory\", \"value\": \"Crash\"}\n" +
	"The entire response must be in compact JSON format and must not exceed 500 characters."

// IsFollowUp 判断是否为延伸追问
func IsFollowUp(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range followUpKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// FollowUpResolver 延伸查询处理器
// 取上一轮上下文，解析新增条件后与原条件合并重新过滤
type FollowUpResolver struct {
	gateway     kb.InferenceGateway
	store       kb.MetadataStore
	transcripts kb.TranscriptRepository
	models      *config.ModelsConfig
	timeouts    *config.TimeoutConfig
	logger      *slog.Logger
}

// NewFollowUpResolver 创建延伸查询处理器
func NewFollowUpResolver(gateway kb.InferenceGateway, store kb.MetadataStore, transcripts kb.TranscriptRepository, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *FollowUpResolver {
	return &FollowUpResolver{
		gateway:     gateway,
		store:       store,
		transcripts: transcripts,
		models:      models,
		timeouts:    timeouts,
		logger:      applog.NewModuleLogger("query", "followup"),
	}
}

// Resolve 处理延伸查询
func (r *FollowUpResolver) Resolve(ctx context.Context, sessionID, message string) string {
	history, err := r.transcripts.Load(ctx, sessionID)
	if err != nil {
		return "⚠️ 無法讀取先前對話記錄，請確認 chat_id 是否正確。"
	}
	if len(history) == 0 || history[len(history)-1].Context == nil {
		return "⚠️ 查無先前查詢條件，請重新描述您的需求。"
	}

	prev := history[len(history)-1].Context
	r.logger.Info("Previous context loaded", "type", prev.Type, "filters", len(prev.Filters))

	if prev.Type != kb.IntentFieldFilter {
		return "⚠️ 目前只支援欄位篩選的延伸查詢。"
	}

	prompt := followUpInstruction + "\n\nUser: " + message
	result := r.gateway.Infer(ctx, prompt, r.models.ClassifyPrimary, r.timeouts.Heavy())
	if !result.OK() {
		return fmt.Sprintf("⚠️ 延伸查詢失敗：%s", result.Detail)
	}

	raw := StripFences(result.Output)
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return fmt.Sprintf("⚠️ 延伸查詢失敗：無法從模型輸出擷取 JSON 物件（%s）", truncateRunes(raw, 200))
	}
	extra, err := DecodeCondition(obj)
	if err != nil {
		return fmt.Sprintf("⚠️ 延伸查詢失敗：%v", err)
	}
	if !kb.IsAllowedField(extra.Field) {
		return "⚠️ 無效的欄位"
	}

	conditions := append(append([]kb.Condition{}, prev.Filters...), extra)
	r.logger.Info("Merged follow-up conditions", "count", len(conditions))

	records, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ 延伸查詢失敗：%v", err)
	}
	matches := kb.FilterRecords(records, conditions)

	shown := matches
	if len(shown) > maxMatchLines {
		shown = shown[:maxMatchLines]
	}
	lines := make([]string, 0, len(shown))
	for i := range shown {
		lines = append(lines, "- "+truncateRunes(shown[i].Text, matchPreviewRunes))
	}
	return fmt.Sprintf("🔎 延伸查詢結果（共 %d 筆）：\n%s", len(matches), strings.Join(lines, "\n"))
}
