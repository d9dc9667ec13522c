package handler

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/casewise/backend/internal/domain/kb"
	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/interfaces/http/response"
)

// QueryRunner 查询入口
type QueryRunner interface {
	Run(ctx context.Context, sessionID, message string, history []kb.Turn, model string) string
}

// ChatHandler 对话处理器
type ChatHandler struct {
	runner QueryRunner
	logger *slog.Logger
}

// NewChatHandler 创建对话处理器
func NewChatHandler(runner QueryRunner) *ChatHandler {
	return &ChatHandler{
		runner: runner,
		logger: applog.NewModuleLogger("http", "chat"),
	}
}

// ChatRequest 对话请求
// 对话历史由前端自行维护并随请求附带，服务端只持久化查询上下文
type ChatRequest struct {
	Message string    `json:"message" binding:"required"`
	ChatID  string    `json:"chat_id,omitempty"`
	Model   string    `json:"model,omitempty"`
	History []kb.Turn `json:"history,omitempty"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Reply  string `json:"reply"`
	ChatID string `json:"chat_id"`
}

// Chat 处理一条用户提问
// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, 400, "invalid request", err.Error())
		return
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
		h.logger.Info("New chat session", "chat_id", chatID)
	}

	reply := h.runner.Run(c.Request.Context(), chatID, req.Message, req.History, req.Model)

	response.Success(c, ChatResponse{
		Reply:  reply,
		ChatID: chatID,
	})
}
