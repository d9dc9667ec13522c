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

// 匹配记录正文的预览长度与回报条数上限
const (
	matchPreviewRunes = 500
	maxMatchLines     = 5
)

// FilterEngine 字段过滤引擎
// 把自然语言翻译成 field=value 条件集，再做合取模糊过滤
type FilterEngine struct {
	gateway  kb.InferenceGateway
	store    kb.MetadataStore
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	logger   *slog.Logger
}

// NewFilterEngine 创建字段过滤引擎
func NewFilterEngine(gateway kb.InferenceGateway, store kb.MetadataStore, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *FilterEngine {
	return &FilterEngine{
		gateway:  gateway,
		store:    store,
		models:   models,
		timeouts: timeouts,
		logger:   applog.NewModuleLogger("query", "filter"),
	}
}

// Run 执行过滤查询
// 返回回报文本与抽取到的条件集（供上下文持久化，软错误时条件为空）
func (e *FilterEngine) Run(ctx context.Context, message string) (string, []kb.Condition) {
	records, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ Failed to load metadata: %v", err), nil
	}

	prompt := e.buildPrompt(message, records)
	result := e.gateway.Infer(ctx, prompt, e.models.ClassifyPrimary, e.timeouts.Heavy())
	if !result.OK() {
		return fmt.Sprintf("⚠️ Failed to parse or search: %s", result.Detail), nil
	}

	conds, softErr := e.parseConditions(result.Output)
	if softErr != "" {
		return softErr, nil
	}

	matches := kb.FilterRecords(records, conds)
	e.logger.Info("Filter query completed",
		"conditions", len(conds),
		"matches", len(matches),
	)

	if len(matches) == 0 {
		parts := make([]string, 0, len(conds))
		for _, c := range conds {
			parts = append(parts, c.String())
		}
		return fmt.Sprintf("🔍 No results found for: %s", strings.Join(parts, " AND ")), conds
	}

	return renderMatches(conds, matches), conds
}

// buildPrompt 构建条件抽取 prompt
// 把库中实际出现过的字段值列进指令，约束模型只用真实词汇
func (e *FilterEngine) buildPrompt(message string, records []kb.Record) string {
	vocab := fieldVocabulary(records)

	hints := make([]string, 0, len(kb.AllowedFields))
	for _, field := range kb.AllowedFields {
		hints = append(hints, fmt.Sprintf("%s: [%s]", field, strings.Join(vocab[field], ", ")))
	}

	instruction := fmt.Sprintf(`You are a parser. Extract all field=value conditions from the user's message for filtering.
Only include fields: configurationItem, subcategory, roleComponent, location.
Use only values from these lists:
%s
Return ONLY a raw JSON array like:
[{"field": "subcategory", "value": "Login/Access"}, {"field": "location", "value": "Taipei"}]
Do not include any explanation or markdown formatting.
The entire output must be a compact JSON array and must not exceed 500 characters in total.`, strings.Join(hints, "\n"))

	return fmt.Sprintf("%s\n\nUser: %s", instruction, message)
}

// parseConditions 模型输出 → 有效条件集，失败时返回软错误文本
func (e *FilterEngine) parseConditions(raw string) ([]kb.Condition, string) {
	cleaned := StripFences(raw)

	jsonPart, found := ExtractJSONArray(cleaned)
	if !found {
		e.logger.Warn("No JSON array found in model output")
		return nil, "⚠️ Failed to extract valid JSON array from model output."
	}

	parsed, err := DecodeConditions(jsonPart)
	if err != nil {
		e.logger.Warn("Failed to decode conditions", "error", err)
		return nil, fmt.Sprintf("⚠️ JSON decode error: %v", err)
	}

	// 允许字段之外的条件静默丢弃
	conds := make([]kb.Condition, 0, len(parsed))
	for _, c := range parsed {
		if kb.IsAllowedField(c.Field) {
			conds = append(conds, c)
		}
	}
	if len(conds) == 0 {
		return nil, "⚠️ No valid filters extracted from the query."
	}

	return conds, ""
}

// fieldVocabulary 各允许字段去重排序后的实际取值
func fieldVocabulary(records []kb.Record) map[string][]string {
	vocab := make(map[string][]string, len(kb.AllowedFields))
	for _, field := range kb.AllowedFields {
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for i := range records {
			v := strings.TrimSpace(records[i].FieldValue(field))
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		vocab[field] = values
	}
	return vocab
}

// renderMatches 汇总命中结果：实际命中的字段值 + 前几条正文预览
func renderMatches(conds []kb.Condition, matches []kb.Record) string {
	// 每个条件字段在命中集合里实际出现的原始值（运维可见性）
	summaryLines := make([]string, 0, len(conds))
	reported := make(map[string]struct{})
	for _, c := range conds {
		if _, done := reported[c.Field]; done {
			continue
		}
		reported[c.Field] = struct{}{}

		seen := make(map[string]struct{})
		values := make([]string, 0)
		for i := range matches {
			v := strings.TrimSpace(matches[i].FieldValue(c.Field))
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)

		joined := strings.Join(values, ", ")
		if joined == "" {
			joined = "N/A"
		}
		summaryLines = append(summaryLines, fmt.Sprintf("• %s = %s", c.Field, joined))
	}

	previewLines := make([]string, 0, maxMatchLines)
	for i := range matches {
		if i >= maxMatchLines {
			break
		}
		previewLines = append(previewLines, "- "+truncateRunes(matches[i].Text, matchPreviewRunes))
	}

	return "🔎 Top matches for:\n" +
		strings.Join(summaryLines, "\n") +
		"\n\n" + strings.Join(previewLines, "\n")
}
