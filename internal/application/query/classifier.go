package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// classifyInstruction 意图分类指令，列举全部六个标签
const classifyInstruction = `You are a classification assistant. Based on the user's question, determine whether it belongs to one of the following types:
1. Semantic Query (user wants similar past cases or issue solving)
2. Statistical Analysis (user wants counts or summaries)
3. Field Filter (user asks to find cases matching a specific field=value)
4. Field Values (user wants to know all possible values of a specific field)
5. Temporal Trend (user asks about changes over time, trends, or patterns over a date range)
6. Solution Summary (user wants a list or summary of known fixes/remedies/resolutions)
Please respond with one of: 'Semantic Query', 'Statistical Analysis', 'Field Filter', 'Field Values', 'Temporal Trend', 'Solution Summary'.`

// Classifier 意图分类器
// 主模型失败（超时、错误）后换备用模型重试一次，两次都失败回退 Semantic Query
type Classifier struct {
	gateway  kb.InferenceGateway
	models   *config.ModelsConfig
	timeouts *config.TimeoutConfig
	logger   *slog.Logger
}

// NewClassifier 创建意图分类器
func NewClassifier(gateway kb.InferenceGateway, models *config.ModelsConfig, timeouts *config.TimeoutConfig) *Classifier {
	return &Classifier{
		gateway:  gateway,
		models:   models,
		timeouts: timeouts,
		logger:   applog.NewModuleLogger("query", "classifier"),
	}
}

// Classify 将消息分类为六个意图之一，永不失败
func (c *Classifier) Classify(ctx context.Context, message string) kb.Intent {
	prompt := fmt.Sprintf("%s\n\nUser: %s", classifyInstruction, message)

	result := c.gateway.Infer(ctx, prompt, c.models.ClassifyPrimary, c.timeouts.Classify())
	if !result.OK() || result.Output == "" {
		c.logger.Warn("Primary classify model failed, trying secondary",
			"primary", c.models.ClassifyPrimary,
			"secondary", c.models.ClassifySecondary,
			"status", result.Status,
		)
		result = c.gateway.Infer(ctx, prompt, c.models.ClassifySecondary, c.timeouts.Classify())
	}

	if !result.OK() || result.Output == "" {
		c.logger.Warn("Both classify models failed, defaulting to Semantic Query")
		return kb.IntentSemanticQuery
	}

	intent := kb.ParseIntentReply(result.Output)
	c.logger.Info("Message classified",
		"intent", intent,
	)
	return intent
}
