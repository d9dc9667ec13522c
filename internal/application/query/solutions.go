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

const (
	// solutionSearchK 解法统整检索的相似片段数
	solutionSearchK = 5
	// maxSolutions 送入摘要的解法上限
	maxSolutions = 10
	// solutionSeparator 解法拼接分隔符
	solutionSeparator = "\n---\n"
)

// SolutionEngine 解法统整引擎
// 语义检索相似案例 → 收集其 solution 字段 → 模型压缩成条列摘要
type SolutionEngine struct {
	gateway  kb.InferenceGateway
	index    kb.SemanticIndex
	store    kb.MetadataStore
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	logger   *slog.Logger
}

// NewSolutionEngine 创建解法统整引擎
func NewSolutionEngine(gateway kb.InferenceGateway, index kb.SemanticIndex, store kb.MetadataStore, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *SolutionEngine {
	return &SolutionEngine{
		gateway:  gateway,
		index:    index,
		store:    store,
		models:   models,
		timeouts: timeouts,
		logger:   applog.NewModuleLogger("query", "solutions"),
	}
}

// Summarize 统整相似案例的处理方案
func (e *SolutionEngine) Summarize(ctx context.Context, message string) string {
	records, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ Failed to load metadata: %v", err)
	}

	passages, err := e.index.TopK(ctx, message, solutionSearchK)
	if err != nil {
		e.logger.Warn("Semantic search failed", "error", err)
		return fmt.Sprintf("⚠️ Failed to search similar cases: %v", err)
	}
	if len(passages) == 0 {
		return "⚠️ No similar cases found to extract solutions."
	}

	// 记录正文包含检索片段原文的，视为相关案例
	solutions := make([]string, 0)
	for i := range records {
		if records[i].Solution == "" {
			continue
		}
		for _, p := range passages {
			if strings.Contains(records[i].Text, p) {
				solutions = append(solutions, records[i].Solution)
				break
			}
		}
	}

	e.logger.Info("Solutions collected",
		"passages", len(passages),
		"solutions", len(solutions),
	)

	if len(solutions) == 0 {
		return "⚠️ No resolution data found for related cases."
	}

	if len(solutions) > maxSolutions {
		solutions = solutions[:maxSolutions]
	}

	prompt := "Please summarize the following resolution steps into a brief, clear list:\n\n" +
		strings.Join(solutions, solutionSeparator) +
		"\n\nSummary:"

	result := e.gateway.Infer(ctx, prompt, e.models.Solution, e.timeouts.Heavy())
	if !result.OK() {
		return fmt.Sprintf("⚠️ Failed to summarize solutions: %s", result.Detail)
	}
	return result.Output
}
