package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// Gateway 推理网关，基于 Ollama API
// 每次调用携带独立的超时上限，超时按可恢复失败处理而非崩溃
type Gateway struct {
	client *api.Client
	logger *slog.Logger
}

// NewGateway 创建推理网关
func NewGateway(cfg *config.OllamaConfig) (*Gateway, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}

	return &Gateway{
		// 超时由每次调用的 context 控制，http.Client 不再单独设限
		client: api.NewClient(base, &http.Client{}),
		logger: applog.NewModuleLogger("inference", "gateway"),
	}, nil
}

// Infer 发起一次推理调用
// 失败（超时、网络错误、模型错误）编码在 InferResult.Status 中，
// 不向调用方抛出 error
func (g *Gateway) Infer(ctx context.Context, prompt, model string, timeout time.Duration) kb.InferResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g.logger.Debug("Sending inference request",
		"model", model,
		"timeout", timeout,
		"prompt_length", len(prompt),
	)

	start := time.Now()
	stream := false
	var sb strings.Builder

	err := g.client.Generate(ctx, &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.logger.Warn("Inference request timed out",
				"model", model,
				"timeout", timeout,
			)
			return kb.InferResult{Status: kb.InferTimeout, Detail: err.Error()}
		}
		g.logger.Warn("Inference request failed",
			"model", model,
			"error", err,
		)
		return kb.InferResult{Status: kb.InferFailed, Detail: err.Error()}
	}

	output := strings.TrimSpace(sb.String())
	g.logger.Debug("Inference request completed",
		"model", model,
		"duration", time.Since(start),
		"output_length", len(output),
	)

	return kb.InferResult{Status: kb.InferOK, Output: output}
}
