package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 配置相关环境变量
const (
	// EnvConfigFile 配置文件路径，默认不读取文件
	EnvConfigFile = "CASEWISE_CONFIG"
	// EnvHTTPPort HTTP 监听端口
	EnvHTTPPort = "CASEWISE_HTTP_PORT"
	// EnvMetadataPath 知识库元数据文件路径
	EnvMetadataPath = "CASEWISE_KB_METADATA"
	// EnvHistoryDir 会话记录目录
	EnvHistoryDir = "CASEWISE_HISTORY_DIR"
	// EnvOllamaHost 推理网关地址
	EnvOllamaHost = "CASEWISE_OLLAMA_HOST"
	// EnvQdrantHost 向量库地址
	EnvQdrantHost = "CASEWISE_QDRANT_HOST"
	// EnvEmbeddingBaseURL Embedding API 地址
	EnvEmbeddingBaseURL = "CASEWISE_EMBEDDING_BASE_URL"
	// EnvEmbeddingAPIKey Embedding API Key
	EnvEmbeddingAPIKey = "CASEWISE_EMBEDDING_API_KEY"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	KB        KBConfig        `yaml:"kb"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Models    ModelsConfig    `yaml:"models"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"httpPort"`
}

// KBConfig 知识库持久化配置
type KBConfig struct {
	// MetadataPath 元数据 JSON 文件（每个查询周期整体重新加载）
	MetadataPath string `yaml:"metadataPath"`
	// HistoryDir 会话记录目录，每个 session 一个 JSON 文件
	HistoryDir string `yaml:"historyDir"`
}

// QdrantConfig 向量库配置
type QdrantConfig struct {
	Host       string `yaml:"host"`
	GRPCPort   int    `yaml:"grpcPort"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig Embedding API 配置（OpenAI 兼容接口）
type EmbeddingConfig struct {
	BaseURL string `yaml:"baseURL"`
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
}

// OllamaConfig 推理网关配置
type OllamaConfig struct {
	Host string `yaml:"host"`
}

// ModelsConfig 各推理环节使用的模型
type ModelsConfig struct {
	// ClassifyPrimary 意图分类主模型
	ClassifyPrimary string `yaml:"classifyPrimary"`
	// ClassifySecondary 主模型失败后的备用模型
	ClassifySecondary string `yaml:"classifySecondary"`
	// Summary 知识库摘要压缩模型
	Summary string `yaml:"summary"`
	// Solution 解法统整模型
	Solution string `yaml:"solution"`
	// DefaultAnswer 请求未指定时的回答模型
	DefaultAnswer string `yaml:"defaultAnswer"`
}

// TimeoutConfig 外部推理调用的超时上限（秒）
type TimeoutConfig struct {
	// ClassifySeconds 轻量调用：分类、字段与条件抽取
	ClassifySeconds int `yaml:"classifySeconds"`
	// HeavySeconds 重调用：回答合成、摘要、解法统整
	HeavySeconds int `yaml:"heavySeconds"`
}

// Classify 轻量调用超时
func (t *TimeoutConfig) Classify() time.Duration {
	return time.Duration(t.ClassifySeconds) * time.Second
}

// Heavy 重调用超时
func (t *TimeoutConfig) Heavy() time.Duration {
	return time.Duration(t.HeavySeconds) * time.Second
}

// NewConfig 创建配置：默认值 → 配置文件 → 环境变量，逐层覆盖
func NewConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort: ":19830",
		},
		KB: KBConfig{
			MetadataPath: "kb_metadata.json",
			HistoryDir:   "chat_history",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			GRPCPort:   6334,
			Collection: "kb_passages",
		},
		Embedding: EmbeddingConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "all-minilm",
		},
		Ollama: OllamaConfig{
			Host: "http://127.0.0.1:11434",
		},
		Models: ModelsConfig{
			ClassifyPrimary:   "phi4-mini",
			ClassifySecondary: "phi3:mini",
			Summary:           "phi4-mini",
			Solution:          "phi4",
			DefaultAnswer:     "mistral",
		},
		Timeouts: TimeoutConfig{
			ClassifySeconds: 120,
			HeavySeconds:    600,
		},
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		// 配置文件缺失或损坏时保留默认值，不阻止启动
		_ = cfg.loadFile(path)
	}

	cfg.applyEnv()
	return cfg
}

// loadFile 从 YAML 文件加载配置
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		c.Server.HTTPPort = v
	}
	if v := os.Getenv(EnvMetadataPath); v != "" {
		c.KB.MetadataPath = v
	}
	if v := os.Getenv(EnvHistoryDir); v != "" {
		c.KB.HistoryDir = v
	}
	if v := os.Getenv(EnvOllamaHost); v != "" {
		c.Ollama.Host = v
	}
	if v := os.Getenv(EnvQdrantHost); v != "" {
		c.Qdrant.Host = v
	}
	if v := os.Getenv(EnvEmbeddingBaseURL); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		c.Embedding.APIKey = v
	}
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewKBConfig 创建知识库配置
func NewKBConfig(cfg *Config) *KBConfig {
	return &cfg.KB
}

// NewQdrantConfig 创建向量库配置
func NewQdrantConfig(cfg *Config) *QdrantConfig {
	return &cfg.Qdrant
}

// NewEmbeddingConfig 创建 Embedding 配置
func NewEmbeddingConfig(cfg *Config) *EmbeddingConfig {
	return &cfg.Embedding
}

// NewOllamaConfig 创建推理网关配置
func NewOllamaConfig(cfg *Config) *OllamaConfig {
	return &cfg.Ollama
}

// NewModelsConfig 创建模型配置
func NewModelsConfig(cfg *Config) *ModelsConfig {
	return &cfg.Models
}

// NewTimeoutConfig 创建超时配置
func NewTimeoutConfig(cfg *Config) *TimeoutConfig {
	return &cfg.Timeouts
}
