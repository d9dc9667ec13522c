package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// MetadataFile 知识库元数据文件
// 每个查询周期整体重新加载，进程内不跨周期缓存记录
type MetadataFile struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	stats MetadataStats
}

// MetadataStats 元数据文件观测信息（状态接口用）
type MetadataStats struct {
	RecordCount int       `json:"record_count"`
	ModTime     time.Time `json:"mod_time"`
	Loads       int64     `json:"loads"`
	Changes     int64     `json:"changes"`
}

// NewMetadataFile 创建元数据文件句柄
func NewMetadataFile(cfg *config.KBConfig) *MetadataFile {
	return &MetadataFile{
		path:   cfg.MetadataPath,
		logger: applog.NewModuleLogger("storage", "metadata"),
	}
}

// Path 元数据文件路径
func (m *MetadataFile) Path() string {
	return m.path
}

// Load 整体加载元数据快照
func (m *MetadataFile) Load(ctx context.Context) ([]kb.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Error("Failed to read metadata file",
			"path", m.path,
			"error", err,
		)
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var records []kb.Record
	if err := sonic.Unmarshal(data, &records); err != nil {
		m.logger.Error("Failed to decode metadata file",
			"path", m.path,
			"error", err,
		)
		return nil, fmt.Errorf("failed to decode metadata file: %w", err)
	}

	m.mu.Lock()
	m.stats.RecordCount = len(records)
	m.stats.Loads++
	if info, err := os.Stat(m.path); err == nil {
		m.stats.ModTime = info.ModTime()
	}
	m.mu.Unlock()

	m.logger.Debug("Metadata snapshot loaded",
		"path", m.path,
		"records", len(records),
	)

	return records, nil
}

// MarkChanged 文件监听器回调：记录一次外部变更
func (m *MetadataFile) MarkChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Changes++
	if info, err := os.Stat(m.path); err == nil {
		m.stats.ModTime = info.ModTime()
	}
}

// Stats 当前观测信息
func (m *MetadataFile) Stats() MetadataStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}
