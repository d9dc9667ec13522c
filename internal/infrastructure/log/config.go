package log

import "os"

// 日志相关环境变量
const (
	EnvLogLevel  = "CASEWISE_LOG_LEVEL"
	EnvLogFormat = "CASEWISE_LOG_FORMAT"
	EnvLogSource = "CASEWISE_LOG_SOURCE"
)

// Config 日志配置
type Config struct {
	Level     string // debug / info / warn / error
	Format    string // text / json
	AddSource bool   // 是否附带源文件位置
}

// NewConfigFromEnv 从环境变量构建日志配置
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:  "info",
		Format: "text",
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Format = v
	}
	if os.Getenv(EnvLogSource) == "true" {
		cfg.AddSource = true
	}

	return cfg
}
