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

// maxListedValues 枚举回报的取值上限
const maxListedValues = 20

// valuesInstruction 字段名判定指令
const valuesInstruction = `You are a parser. The user is asking about what values are available in a certain field.
Please extract which field they want to list.
Return the field name only. Must be one of: configurationItem, subcategory, roleComponent, location`

// ValuesEngine 字段值枚举引擎
// 与过滤引擎不同：字段名要求模型精确回传，不做模糊接受
type ValuesEngine struct {
	gateway  kb.InferenceGateway
	store    kb.MetadataStore
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	logger   *slog.Logger
}

// NewValuesEngine 创建字段值枚举引擎
func NewValuesEngine(gateway kb.InferenceGateway, store kb.MetadataStore, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *ValuesEngine {
	return &ValuesEngine{
		gateway:  gateway,
		store:    store,
		models:   models,
		timeouts: timeouts,
		logger:   applog.NewModuleLogger("query", "values"),
	}
}

// List 枚举指定字段的全部取值
func (e *ValuesEngine) List(ctx context.Context, message string) string {
	records, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ Failed to load metadata: %v", err)
	}

	prompt := fmt.Sprintf("%s\n\nUser: %s", valuesInstruction, message)
	result := e.gateway.Infer(ctx, prompt, e.models.ClassifyPrimary, e.timeouts.Heavy())
	if !result.OK() {
		return fmt.Sprintf("⚠️ Failed to process: %s", result.Detail)
	}

	field := strings.TrimSpace(result.Output)
	if !kb.IsAllowedField(field) {
		// 精确匹配要求：任何偏差按终端错误原样回报
		e.logger.Warn("Invalid field reply", "reply", field)
		return fmt.Sprintf("⚠️ Invalid field: %s", field)
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for i := range records {
		v := records[i].FieldValue(field)
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

	if len(values) > maxListedValues {
		values = values[:maxListedValues]
	}

	e.logger.Info("Field values listed",
		"field", field,
		"values", len(values),
	)

	lines := make([]string, 0, len(values))
	for _, v := range values {
		lines = append(lines, "- "+v)
	}
	return fmt.Sprintf("📋 Values in '%s' field:\n%s", field, strings.Join(lines, "\n"))
}
