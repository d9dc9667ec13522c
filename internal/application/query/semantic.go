package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/infrastructure/tokenizer"
)

const (
	// semanticSearchK 语义问答检索的相似片段数
	semanticSearchK = 3
	// maxHistoryTurns 组装进 prompt 的最近对话轮数
	maxHistoryTurns = 5
	// promptTokenBudget 回答 prompt 的 token 预算，超出时从最旧的历史轮开始丢弃
	promptTokenBudget = 3000
)

// SemanticEngine 语义问答引擎（默认路径）
// 检索相似片段 → 压缩成摘要 → 连同对话历史组装 prompt 回答
type SemanticEngine struct {
	gateway  kb.InferenceGateway
	index    kb.SemanticIndex
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	tokens   *tokenizer.Estimator
	logger   *slog.Logger
}

// NewSemanticEngine 创建语义问答引擎
func NewSemanticEngine(gateway kb.InferenceGateway, index kb.SemanticIndex, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *SemanticEngine {
	return &SemanticEngine{
		gateway:  gateway,
		index:    index,
		models:   models,
		timeouts: timeouts,
		tokens:   tokenizer.NewEstimator(),
		logger:   applog.NewModuleLogger("query", "semantic"),
	}
}

// Answer 回答语义问题，model 为空时使用配置的默认回答模型
func (e *SemanticEngine) Answer(ctx context.Context, message string, history []kb.Turn, model string) string {
	if model == "" {
		model = e.models.DefaultAnswer
	}

	passages, err := e.index.TopK(ctx, message, semanticSearchK)
	if err != nil {
		e.logger.Warn("Semantic search failed", "error", err)
		passages = nil
	}
	e.logger.Info("Passages retrieved", "count", len(passages))

	synthesis := e.summarizePassages(ctx, passages)

	turns := history
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	prompt := assemblePrompt(synthesis, turns, message)
	tokens := e.tokens.CountTokens(prompt)
	for len(turns) > 0 && tokens > promptTokenBudget {
		turns = turns[1:]
		prompt = assemblePrompt(synthesis, turns, message)
		tokens = e.tokens.CountTokens(prompt)
	}

	e.logger.Info("Answer prompt assembled",
		"model", model,
		"history_turns", len(turns),
		"tokens", tokens,
	)

	result := e.gateway.Infer(ctx, prompt, model, e.timeouts.Heavy())
	if result.Status == kb.InferTimeout {
		return fmt.Sprintf("⚠️ 呼叫模型時發生錯誤：%s", result.Detail)
	}
	if !result.OK() {
		return fmt.Sprintf("⚠️ Ollama 錯誤：%s", result.Detail)
	}
	if result.Output == "" {
		return "⚠️ 沒有收到模型回應。"
	}
	return result.Output
}

// assemblePrompt 组装回答 prompt：知识摘要在前，历史按角色成行，末尾等待助手接话
func assemblePrompt(synthesis string, turns []kb.Turn, message string) string {
	var sb strings.Builder
	sb.WriteString(synthesis)
	sb.WriteString("\n\n")
	for _, turn := range turns {
		role := "Assistant"
		if turn.Role == kb.RoleUser {
			role = "User"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(message)
	sb.WriteString("\nAssistant:")
	return sb.String()
}

// summarizePassages 将检索片段压缩成一段摘要，失败时返回空串而非错误
func (e *SemanticEngine) summarizePassages(ctx context.Context, passages []string) string {
	if len(passages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("請根據以下知識庫內容，整理出一段精簡摘要，幫助我更快理解處理方式與重點：\n\n")
	for i, p := range passages {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(p)))
	}
	sb.WriteString("\n請幫我統整出一段摘要：")

	result := e.gateway.Infer(ctx, sb.String(), e.models.Summary, e.timeouts.Heavy())
	if !result.OK() {
		e.logger.Warn("Passage summarization failed", "detail", result.Detail)
		return ""
	}
	return result.Output
}
