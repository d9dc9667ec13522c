package kb

import (
	"context"
	"time"
)

// MetadataStore 知识库元数据快照
// 每个查询周期重新加载，周期内只读
type MetadataStore interface {
	Load(ctx context.Context) ([]Record, error)
}

// TranscriptRepository 按会话持久化的会话记录
// 读取失败（文件缺失、格式损坏）按空记录处理，不视为致命错误
type TranscriptRepository interface {
	Load(ctx context.Context, sessionID string) ([]Turn, error)
	Save(ctx context.Context, sessionID string, turns []Turn) error
	// Update 在同会话互斥保护下执行 load-merge-save
	Update(ctx context.Context, sessionID string, fn func([]Turn) []Turn) error
}

// SemanticIndex 语义检索句柄，启动时构造一次后注入使用
type SemanticIndex interface {
	// TopK 返回与查询语义最近的 k 条知识库片段文本，按相似度降序
	TopK(ctx context.Context, query string, k int) ([]string, error)
}

// InferStatus 推理调用结束状态
type InferStatus string

const (
	InferOK      InferStatus = "ok"
	InferFailed  InferStatus = "failed"
	InferTimeout InferStatus = "timeout"
)

// InferResult 单次推理调用结果
// 失败编码在 Status 中而非 error：超时与模型错误是常态，
// 由各引擎决定降级策略
type InferResult struct {
	Status InferStatus
	Output string
	Detail string
}

// OK 调用是否成功
func (r InferResult) OK() bool {
	return r.Status == InferOK
}

// InferenceGateway 推理网关：prompt 进、纯文本出
// 调用方需自行清理输出中的 markdown 包裹与引号再做结构化解析
type InferenceGateway interface {
	Infer(ctx context.Context, prompt, model string, timeout time.Duration) InferResult
}
