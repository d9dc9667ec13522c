package query

import (
	"context"
	"errors"
	"time"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
)

// 测试共享的依赖假件

type gatewayCall struct {
	Prompt  string
	Model   string
	Timeout time.Duration
}

// fakeGateway 可编程的推理网关假件，按调用顺序回放结果
type fakeGateway struct {
	results []kb.InferResult
	calls   []gatewayCall
}

func (g *fakeGateway) Infer(_ context.Context, prompt, model string, timeout time.Duration) kb.InferResult {
	g.calls = append(g.calls, gatewayCall{Prompt: prompt, Model: model, Timeout: timeout})
	if len(g.results) == 0 {
		return kb.InferResult{Status: kb.InferFailed, Detail: "no scripted result"}
	}
	r := g.results[0]
	g.results = g.results[1:]
	return r
}

func ok(output string) kb.InferResult {
	return kb.InferResult{Status: kb.InferOK, Output: output}
}

func failed(detail string) kb.InferResult {
	return kb.InferResult{Status: kb.InferFailed, Detail: detail}
}

func timedOut(detail string) kb.InferResult {
	return kb.InferResult{Status: kb.InferTimeout, Detail: detail}
}

// fakeStore 固定快照的元数据存储假件
type fakeStore struct {
	records []kb.Record
	err     error
}

func (s *fakeStore) Load(_ context.Context) ([]kb.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

// fakeIndex 固定结果的语义检索假件
type fakeIndex struct {
	passages []string
	err      error
	gotQuery string
	gotK     int
}

func (i *fakeIndex) TopK(_ context.Context, query string, k int) ([]string, error) {
	i.gotQuery = query
	i.gotK = k
	if i.err != nil {
		return nil, i.err
	}
	return i.passages, nil
}

// fakeTranscripts 内存会话记录假件
type fakeTranscripts struct {
	turns   map[string][]kb.Turn
	loadErr error
	saveErr error
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{turns: make(map[string][]kb.Turn)}
}

func (t *fakeTranscripts) Load(_ context.Context, sessionID string) ([]kb.Turn, error) {
	if t.loadErr != nil {
		return nil, t.loadErr
	}
	return t.turns[sessionID], nil
}

func (t *fakeTranscripts) Save(_ context.Context, sessionID string, turns []kb.Turn) error {
	if t.saveErr != nil {
		return t.saveErr
	}
	t.turns[sessionID] = turns
	return nil
}

func (t *fakeTranscripts) Update(ctx context.Context, sessionID string, fn func([]kb.Turn) []kb.Turn) error {
	history, err := t.Load(ctx, sessionID)
	if err != nil {
		history = nil
	}
	return t.Save(ctx, sessionID, fn(history))
}

func testModels() *config.ModelsConfig {
	return &config.ModelsConfig{
		ClassifyPrimary:   "phi4-mini",
		ClassifySecondary: "phi3:mini",
		Summary:           "phi4-mini",
		Solution:          "phi4",
		DefaultAnswer:     "mistral",
	}
}

func testTimeouts() *config.TimeoutConfig {
	return &config.TimeoutConfig{
		ClassifySeconds: 120,
		HeavySeconds:    600,
	}
}

var errBoom = errors.New("boom")
