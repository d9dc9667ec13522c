package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	"github.com/casewise/backend/internal/infrastructure/storage"
)

// fakeRunner 固定回复的查询入口假件
type fakeRunner struct {
	reply      string
	gotSession string
	gotMessage string
	gotModel   string
}

func (r *fakeRunner) Run(_ context.Context, sessionID, message string, _ []kb.Turn, model string) string {
	r.gotSession = sessionID
	r.gotMessage = message
	r.gotModel = model
	return r.reply
}

func newTestServer(runner QueryRunner, t *testing.T) *MCPServer {
	t.Helper()
	metadata := storage.NewMetadataFile(&config.KBConfig{
		MetadataPath: filepath.Join(t.TempDir(), "kb_metadata.json"),
	})
	return NewServer(runner, metadata)
}

// TestKBQueryTool 测试查询工具透传消息、会话与模型
func TestKBQueryTool(t *testing.T) {
	runner := &fakeRunner{reply: "the answer"}
	s := newTestServer(runner, t)

	_, out, err := s.kbQueryTool(context.Background(), nil, KBQueryInput{
		Message: "how to fix login loop",
		ChatID:  "s1",
		Model:   "llama3",
	})

	require.NoError(t, err)
	assert.Equal(t, "the answer", out.Reply)
	assert.Equal(t, "s1", out.ChatID)
	assert.Equal(t, "s1", runner.gotSession)
	assert.Equal(t, "how to fix login loop", runner.gotMessage)
	assert.Equal(t, "llama3", runner.gotModel)
}

// TestKBQueryTool_MintsChatID 测试缺省会话标识时自动生成并回传
func TestKBQueryTool_MintsChatID(t *testing.T) {
	runner := &fakeRunner{reply: "ok"}
	s := newTestServer(runner, t)

	_, out, err := s.kbQueryTool(context.Background(), nil, KBQueryInput{Message: "hello"})

	require.NoError(t, err)
	require.NotEmpty(t, out.ChatID, "应生成新的 chat_id")
	_, parseErr := uuid.Parse(out.ChatID)
	assert.NoError(t, parseErr)
	assert.Equal(t, out.ChatID, runner.gotSession, "生成的 chat_id 同时传给查询入口")
}
