package query

import (
	"context"
	"log/slog"

	"github.com/casewise/backend/internal/domain/kb"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// summaryPreviewRunes 存入上下文的结果摘要长度上限
const summaryPreviewRunes = 200

// ContextStore 对话上下文存储
// 把每次查询的意图、条件与结果摘要挂到会话最后一轮，供延伸追问使用
type ContextStore struct {
	transcripts kb.TranscriptRepository
	logger      *slog.Logger
}

// NewContextStore 创建对话上下文存储
func NewContextStore(transcripts kb.TranscriptRepository) *ContextStore {
	return &ContextStore{
		transcripts: transcripts,
		logger:      applog.NewModuleLogger("query", "context"),
	}
}

// Save 保存查询上下文，sessionID 为空时跳过
// 会话记录缺失或损坏视为空记录，保存失败只记日志不上抛
func (s *ContextStore) Save(ctx context.Context, sessionID, query string, intent kb.Intent, filters []kb.Condition, summary string) {
	if sessionID == "" {
		return
	}

	record := &kb.Context{
		Type:    intent,
		Query:   query,
		Filters: filters,
		Summary: truncateRunes(summary, summaryPreviewRunes),
	}

	err := s.transcripts.Update(ctx, sessionID, func(history []kb.Turn) []kb.Turn {
		if len(history) == 0 {
			return []kb.Turn{{
				Role:    kb.RoleUser,
				Content: query,
				Context: record,
			}}
		}
		history[len(history)-1].Context = record
		return history
	})
	if err != nil {
		s.logger.Error("Failed to persist query context", "session_id", sessionID, "error", err)
		return
	}
	s.logger.Info("Query context saved", "session_id", sessionID, "type", intent)
}
