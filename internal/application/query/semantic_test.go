package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/backend/internal/domain/kb"
)

// TestSemanticEngine_Answer 测试检索、摘要、历史组装的完整回答流程
func TestSemanticEngine_Answer(t *testing.T) {
	index := &fakeIndex{passages: []string{" passage one ", "passage two"}}
	gw := &fakeGateway{results: []kb.InferResult{
		ok("condensed knowledge"),
		ok("final answer"),
	}}
	e := NewSemanticEngine(gw, index, testModels(), testTimeouts())

	history := []kb.Turn{
		{Role: kb.RoleUser, Content: "earlier question"},
		{Role: kb.RoleAssistant, Content: "earlier answer"},
	}
	reply := e.Answer(context.Background(), "how to fix login loop", history, "")

	assert.Equal(t, "final answer", reply)
	assert.Equal(t, semanticSearchK, index.gotK)
	require.Len(t, gw.calls, 2)

	// 第一跳：摘要压缩，编号列出并去除片段首尾空白
	assert.Equal(t, "phi4-mini", gw.calls[0].Model)
	assert.Contains(t, gw.calls[0].Prompt, "1. passage one\n")
	assert.Contains(t, gw.calls[0].Prompt, "2. passage two\n")

	// 第二跳：回答，摘要在前、历史按角色成行、末尾等待助手接话
	assert.Equal(t, "mistral", gw.calls[1].Model, "未指定模型时用默认回答模型")
	prompt := gw.calls[1].Prompt
	assert.True(t, strings.HasPrefix(prompt, "condensed knowledge\n\n"))
	assert.Contains(t, prompt, "User: earlier question\n")
	assert.Contains(t, prompt, "Assistant: earlier answer\n")
	assert.True(t, strings.HasSuffix(prompt, "User: how to fix login loop\nAssistant:"))
}

// TestSemanticEngine_HistoryWindow 测试只取最近 5 轮历史
func TestSemanticEngine_HistoryWindow(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{ok("answer")}}
	e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())

	history := make([]kb.Turn, 0, 7)
	for _, content := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"} {
		history = append(history, kb.Turn{Role: kb.RoleUser, Content: content})
	}
	e.Answer(context.Background(), "question", history, "mistral")

	require.Len(t, gw.calls, 1)
	prompt := gw.calls[0].Prompt
	assert.NotContains(t, prompt, "User: t2\n")
	assert.Contains(t, prompt, "User: t3\n")
	assert.Contains(t, prompt, "User: t7\n")
}

// TestSemanticEngine_TokenBudgetTrim 测试超出 token 预算时从最旧历史轮开始丢弃
func TestSemanticEngine_TokenBudgetTrim(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{ok("answer")}}
	e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())

	history := []kb.Turn{
		{Role: kb.RoleUser, Content: strings.Repeat("filler ", 4000)},
		{Role: kb.RoleAssistant, Content: "recent answer"},
	}
	reply := e.Answer(context.Background(), "question", history, "mistral")

	assert.Equal(t, "answer", reply)
	require.Len(t, gw.calls, 1)
	prompt := gw.calls[0].Prompt
	assert.NotContains(t, prompt, "filler", "超预算的最旧轮被丢弃")
	assert.Contains(t, prompt, "Assistant: recent answer\n", "预算内的最近轮保留")
	assert.True(t, strings.HasSuffix(prompt, "User: question\nAssistant:"))
}

// TestSemanticEngine_EmptyRetrieval 测试空检索直接跳过摘要
func TestSemanticEngine_EmptyRetrieval(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{ok("answer without kb")}}
	e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())

	reply := e.Answer(context.Background(), "question", nil, "")

	assert.Equal(t, "answer without kb", reply)
	require.Len(t, gw.calls, 1, "无片段时不做摘要调用")
	assert.True(t, strings.HasPrefix(gw.calls[0].Prompt, "\n\nUser: question"))
}

// TestSemanticEngine_SummaryFailureNonFatal 测试摘要失败降级为空摘要
func TestSemanticEngine_SummaryFailureNonFatal(t *testing.T) {
	index := &fakeIndex{passages: []string{"passage"}}
	gw := &fakeGateway{results: []kb.InferResult{
		failed("summarizer down"),
		ok("answer anyway"),
	}}
	e := NewSemanticEngine(gw, index, testModels(), testTimeouts())

	reply := e.Answer(context.Background(), "question", nil, "")

	assert.Equal(t, "answer anyway", reply)
	assert.Len(t, gw.calls, 2)
}

// TestSemanticEngine_Placeholders 测试空回复与失败的占位消息
func TestSemanticEngine_Placeholders(t *testing.T) {
	t.Run("空回复", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{ok("")}}
		e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())
		assert.Equal(t, "⚠️ 沒有收到模型回應。", e.Answer(context.Background(), "q", nil, ""))
	})

	t.Run("超时", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{timedOut("deadline exceeded")}}
		e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())
		assert.Equal(t, "⚠️ 呼叫模型時發生錯誤：deadline exceeded", e.Answer(context.Background(), "q", nil, ""))
	})

	t.Run("模型错误", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{failed("model not found")}}
		e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())
		assert.Equal(t, "⚠️ Ollama 錯誤：model not found", e.Answer(context.Background(), "q", nil, ""))
	})
}

// TestSemanticEngine_CallerModel 测试调用方指定模型优先
func TestSemanticEngine_CallerModel(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{ok("answer")}}
	e := NewSemanticEngine(gw, &fakeIndex{}, testModels(), testTimeouts())

	e.Answer(context.Background(), "q", nil, "llama3")

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "llama3", gw.calls[0].Model)
}
