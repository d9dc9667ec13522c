package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/casewise/backend/internal/infrastructure/config"
	"github.com/casewise/backend/internal/infrastructure/embedding"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// Index 语义检索句柄：Embedding + Qdrant 近邻查询
// 启动时构造一次，作为依赖注入传递，不做全局状态
type Index struct {
	client     *qdrant.Client
	collection string
	embedder   *embedding.Client
	logger     *slog.Logger
}

// NewIndex 创建语义检索句柄
// gRPC 连接为惰性建立，Qdrant 不可达在首次查询时暴露
func NewIndex(cfg *config.QdrantConfig, embedder *embedding.Client) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.GRPCPort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Index{
		client:     client,
		collection: cfg.Collection,
		embedder:   embedder,
		logger:     applog.NewModuleLogger("vector", "index"),
	}, nil
}

// TopK 返回与查询语义最近的 k 条知识库片段文本，按相似度降序
func (i *Index) TopK(ctx context.Context, query string, k int) ([]string, error) {
	queryVector, err := i.embedder.EmbedText(ctx, query)
	if err != nil {
		i.logger.Error("Failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	i.logger.Debug("Query embedded",
		"vector_dim", len(queryVector),
		"k", k,
	)

	limit := uint64(k)
	hits, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		i.logger.Error("Failed to query qdrant", "error", err)
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	passages := make([]string, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}
		if val, ok := payload["text"]; ok {
			if text := val.GetStringValue(); text != "" {
				passages = append(passages, text)
			}
		}
	}

	i.logger.Info("Semantic search completed",
		"hits", len(hits),
		"passages", len(passages),
	)

	return passages, nil
}

// Close 关闭 Qdrant 连接
func (i *Index) Close() error {
	if i.client != nil {
		return i.client.Close()
	}
	return nil
}
