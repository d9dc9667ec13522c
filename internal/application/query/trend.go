package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/casewise/backend/internal/domain/kb"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// timeLayouts 时间戳解析尝试的格式
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// TrendEngine 时间趋势引擎：按月分桶计数
type TrendEngine struct {
	store  kb.MetadataStore
	logger *slog.Logger
}

// NewTrendEngine 创建时间趋势引擎
func NewTrendEngine(store kb.MetadataStore) *TrendEngine {
	return &TrendEngine{
		store:  store,
		logger: applog.NewModuleLogger("query", "trend"),
	}
}

// Run 生成每月案件趋势
// 无记录、首条记录缺时间字段、全部时间戳无法解析是三种不同的回报
func (e *TrendEngine) Run(ctx context.Context) string {
	records, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ 無法載入資料：%v", err)
	}

	if len(records) == 0 {
		return "⚠️ 無資料可分析。"
	}
	if records[0].AnalysisTime == "" {
		return "⚠️ 缺少 analysisTime 欄位，無法分析趨勢。"
	}

	buckets := make(map[string]int)
	parsed := 0
	for i := range records {
		ts, ok := parseAnalysisTime(records[i].AnalysisTime)
		if !ok {
			// 无法解析的时间戳直接丢弃，不进任何桶
			continue
		}
		parsed++
		buckets[ts.Format("2006-01")]++
	}

	e.logger.Info("Temporal bucketing completed",
		"total", len(records),
		"parsed", parsed,
		"months", len(buckets),
	)

	if parsed == 0 {
		return "⚠️ analysisTime 欄位皆無法解析，無法分析趨勢。"
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	lines := make([]string, 0, len(months)+1)
	lines = append(lines, "📊 每月案件趨勢：")
	for _, m := range months {
		lines = append(lines, fmt.Sprintf("- %s: %d 筆", m, buckets[m]))
	}
	return strings.Join(lines, "\n")
}

// parseAnalysisTime 逐格式尝试解析时间戳
func parseAnalysisTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
