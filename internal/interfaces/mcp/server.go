package mcp

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/storage"
)

// QueryRunner 查询入口
type QueryRunner interface {
	Run(ctx context.Context, sessionID, message string, history []kb.Turn, model string) string
}

// MCPServer MCP 服务器
// 通过 HTTP/SSE 挂在主 HTTP 服务器下，生命周期由其统一管理
type MCPServer struct {
	server   *mcp.Server
	handler  http.Handler
	router   QueryRunner
	metadata *storage.MetadataFile
}

// KBQueryInput 知识库查询工具输入
type KBQueryInput struct {
	Message string `json:"message" jsonschema:"用户的自然语言问题"`
	ChatID  string `json:"chat_id,omitempty" jsonschema:"会话标识，延伸追问时沿用上一次的值（可选）"`
	Model   string `json:"model,omitempty" jsonschema:"语义问答使用的模型（可选，默认 mistral）"`
}

// KBQueryOutput 知识库查询工具输出
type KBQueryOutput struct {
	Reply  string `json:"reply" jsonschema:"回复文本"`
	ChatID string `json:"chat_id,omitempty" jsonschema:"本次使用的会话标识"`
}

// KBStatusInput 知识库状态工具输入（空输入）
type KBStatusInput struct{}

// KBStatusOutput 知识库状态工具输出
type KBStatusOutput struct {
	Path        string `json:"path" jsonschema:"元数据文件路径"`
	RecordCount int    `json:"record_count" jsonschema:"记录条数"`
	ModTime     string `json:"mod_time" jsonschema:"文件最后修改时间"`
	Loads       int64  `json:"loads" jsonschema:"累计加载次数"`
	Changes     int64  `json:"changes" jsonschema:"监测到的外部变更次数"`
}

// NewServer 创建 MCP 服务器
func NewServer(router QueryRunner, metadata *storage.MetadataFile) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "casewise-backend",
			Version: "0.1.0",
		},
		nil,
	)

	s := &MCPServer{
		server:   server,
		router:   router,
		metadata: metadata,
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kb_query",
		Description: "Ask a natural language question against the case knowledge base. The question is classified into one of six intents (semantic query, statistical analysis, field filter, field values, temporal trend, solution summary) and dispatched to the matching engine. Parameters: message (string, required); chat_id (string, optional) - reuse it across calls to enable follow-up queries; model (string, optional) - answering model for the semantic path. Returns the reply text and the chat_id used.",
	}, s.kbQueryTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kb_status",
		Description: "Get the status of the knowledge base metadata file: path, record count, last modification time, load counter, and external change counter. No parameters required.",
	}, s.kbStatusTool)

	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return s
}

// kbQueryTool 知识库查询工具
func (s *MCPServer) kbQueryTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input KBQueryInput,
) (*mcp.CallToolResult, KBQueryOutput, error) {
	// 未带会话标识时补发一个，让调用方能沿用它做延伸追问
	chatID := input.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}
	reply := s.router.Run(ctx, chatID, input.Message, nil, input.Model)
	return nil, KBQueryOutput{
		Reply:  reply,
		ChatID: chatID,
	}, nil
}

// kbStatusTool 知识库状态工具
func (s *MCPServer) kbStatusTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input KBStatusInput,
) (*mcp.CallToolResult, KBStatusOutput, error) {
	if _, err := s.metadata.Load(ctx); err != nil {
		return nil, KBStatusOutput{}, err
	}
	stats := s.metadata.Stats()
	return nil, KBStatusOutput{
		Path:        s.metadata.Path(),
		RecordCount: stats.RecordCount,
		ModTime:     stats.ModTime.Format("2006-01-02 15:04:05"),
		Loads:       stats.Loads,
		Changes:     stats.Changes,
	}, nil
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
