package query

import (
	"context"
	"log/slog"

	"github.com/casewise/backend/internal/domain/kb"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// Router 查询路由器
// 先分类意图，追问优先交给 FollowUpResolver，其余按意图分发到对应引擎，
// 引擎返回后保存查询上下文（软错误同样视为有效结果保存）
type Router struct {
	classifier *Classifier
	stats      *StatsEngine
	filter     *FilterEngine
	values     *ValuesEngine
	trend      *TrendEngine
	solutions  *SolutionEngine
	semantic   *SemanticEngine
	followUp   *FollowUpResolver
	contexts   *ContextStore
	logger     *slog.Logger
}

// NewRouter 创建查询路由器
func NewRouter(
	classifier *Classifier,
	stats *StatsEngine,
	filter *FilterEngine,
	values *ValuesEngine,
	trend *TrendEngine,
	solutions *SolutionEngine,
	semantic *SemanticEngine,
	followUp *FollowUpResolver,
	contexts *ContextStore,
) *Router {
	return &Router{
		classifier: classifier,
		stats:      stats,
		filter:     filter,
		values:     values,
		trend:      trend,
		solutions:  solutions,
		semantic:   semantic,
		followUp:   followUp,
		contexts:   contexts,
		logger:     applog.NewModuleLogger("query", "router"),
	}
}

// Run 处理单条用户消息并返回回复文本
// model 仅作用于语义问答路径，空串表示使用默认回答模型
func (r *Router) Run(ctx context.Context, sessionID, message string, history []kb.Turn, model string) string {
	intent := r.classifier.Classify(ctx, message)
	r.logger.Info("Intent classified", "session_id", sessionID, "intent", intent)

	if IsFollowUp(message) && sessionID != "" {
		r.logger.Info("Follow-up detected", "session_id", sessionID)
		return r.followUp.Resolve(ctx, sessionID, message)
	}

	var reply string
	var filters []kb.Condition

	switch intent {
	case kb.IntentStatisticalAnalysis:
		reply = r.stats.Analyze(ctx, message)
	case kb.IntentFieldFilter:
		reply, filters = r.filter.Run(ctx, message)
	case kb.IntentFieldValues:
		reply = r.values.List(ctx, message)
	case kb.IntentTemporalTrend:
		reply = r.trend.Run(ctx)
	case kb.IntentSolutionSummary:
		reply = r.solutions.Summarize(ctx, message)
	default:
		reply = r.semantic.Answer(ctx, message, history, model)
	}

	r.contexts.Save(ctx, sessionID, message, intent, filters, reply)
	return reply
}
