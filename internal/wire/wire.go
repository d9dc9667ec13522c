//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/casewise/backend/internal/application"
	"github.com/casewise/backend/internal/application/query"
	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure"
	"github.com/casewise/backend/internal/infrastructure/inference"
	"github.com/casewise/backend/internal/infrastructure/storage"
	"github.com/casewise/backend/internal/infrastructure/vector"
	"github.com/casewise/backend/internal/interfaces"
	"github.com/casewise/backend/internal/interfaces/http/handler"
	"github.com/casewise/backend/internal/interfaces/mcp"
	"github.com/google/wire"
)

// InitializeApp 初始化所有服务（HTTP + MCP）
func InitializeApp() (*App, error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		// 接口绑定：领域接口 -> 基础设施实现
		wire.Bind(new(kb.MetadataStore), new(*storage.MetadataFile)),
		wire.Bind(new(kb.TranscriptRepository), new(*storage.TranscriptDir)),
		wire.Bind(new(kb.SemanticIndex), new(*vector.Index)),
		wire.Bind(new(kb.InferenceGateway), new(*inference.Gateway)),
		wire.Bind(new(handler.QueryRunner), new(*query.Router)),
		wire.Bind(new(mcp.QueryRunner), new(*query.Router)),
		NewApp, // 组合所有服务的应用结构
	)
	return nil, nil
}
