package wire

import (
	"log/slog"

	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/infrastructure/vector"
	"github.com/casewise/backend/internal/infrastructure/watcher"
	"github.com/casewise/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer  *interfaces.HTTPServer
	MCPServer   *interfaces.MCPServer
	kbWatcher   *watcher.KBWatcher
	vectorIndex *vector.Index
	logger      *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	kbWatcher *watcher.KBWatcher,
	vectorIndex *vector.Index,
) *App {
	return &App{
		HTTPServer:  httpServer,
		MCPServer:   mcpServer,
		kbWatcher:   kbWatcher,
		vectorIndex: vectorIndex,
		logger:      applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting casewise backend application")

	// 启动元数据文件监听
	if a.kbWatcher != nil {
		if err := a.kbWatcher.Start(); err != nil {
			a.logger.Error("Failed to start KB watcher",
				"error", err,
			)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	// MCP 服务器通过 /mcp/sse 端点由 HTTP 服务器提供服务
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("HTTP server stopped",
				"error", err,
			)
		}
	}()

	a.logger.Info("Casewise backend application started")
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping casewise backend application")

	if a.kbWatcher != nil {
		a.kbWatcher.Stop()
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}

	if a.vectorIndex != nil {
		if err := a.vectorIndex.Close(); err != nil {
			a.logger.Error("Failed to close vector index connection",
				"error", err,
			)
		}
	}

	a.logger.Info("Casewise backend application stopped")
	return nil
}
