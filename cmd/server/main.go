package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/infrastructure/singleton"
	"github.com/casewise/backend/internal/wire"
)

func main() {
	// 本地开发时从 .env 读取环境变量，文件不存在则忽略
	_ = godotenv.Load()

	// 初始化日志系统
	applog.Init(nil)

	// 加载配置获取端口
	cfg := config.NewConfig()
	port := cfg.Server.HTTPPort

	// 单例锁检查
	listener, err := singleton.Acquire(port)
	if err != nil {
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			log.Println("检测到已有实例在运行，当前进程退出")
			os.Exit(0)
		}
		log.Fatalf("单例锁检查失败: %v", err)
	}
	// 关闭临时 listener，实际监听由 HTTP 服务器负责
	_ = listener.Close()

	// Wire 自动生成的初始化函数
	app, err := wire.InitializeApp()
	if err != nil {
		applog.GetLogger().Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		applog.GetLogger().Error("Failed to start application",
			"error", err,
		)
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	applog.GetLogger().Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		applog.GetLogger().Error("Error during application shutdown",
			"error", err,
		)
	}
	applog.GetLogger().Info("Application stopped")
}
