package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
	applog "github.com/casewise/backend/internal/infrastructure/log"
)

// TranscriptDir 按会话存储的会话记录目录
// 每个 session 一个 JSON 文件，整体读、整体写；
// 进程内用同会话互斥锁保护 load-merge-save，跨进程仍是 last-write-wins
type TranscriptDir struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTranscriptDir 创建会话记录仓库
func NewTranscriptDir(cfg *config.KBConfig) *TranscriptDir {
	return &TranscriptDir{
		dir:    cfg.HistoryDir,
		logger: applog.NewModuleLogger("storage", "transcript"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// sessionLock 获取指定会话的互斥锁
func (t *TranscriptDir) sessionLock(sessionID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[sessionID] = lock
	}
	return lock
}

// sessionPath 会话文件路径，拒绝带路径分隔符的 session id
func (t *TranscriptDir) sessionPath(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID != filepath.Base(sessionID) {
		return "", fmt.Errorf("invalid session id: %s", sessionID)
	}
	return filepath.Join(t.dir, sessionID+".json"), nil
}

// Load 加载会话记录
// 文件缺失或损坏按空记录处理，不视为错误
func (t *TranscriptDir) Load(ctx context.Context, sessionID string) ([]kb.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := t.sessionPath(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("Failed to read transcript, treating as empty",
				"session_id", sessionID,
				"error", err,
			)
		}
		return []kb.Turn{}, nil
	}

	var turns []kb.Turn
	if err := sonic.Unmarshal(data, &turns); err != nil {
		t.logger.Warn("Malformed transcript, treating as empty",
			"session_id", sessionID,
			"error", err,
		)
		return []kb.Turn{}, nil
	}

	return turns, nil
}

// Save 整体重写会话记录
func (t *TranscriptDir) Save(ctx context.Context, sessionID string, turns []kb.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := t.sessionPath(sessionID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	data, err := sonic.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	t.logger.Debug("Transcript saved",
		"session_id", sessionID,
		"turns", len(turns),
	)
	return nil
}

// Update 在同会话互斥保护下执行 load-merge-save
func (t *TranscriptDir) Update(ctx context.Context, sessionID string, fn func([]kb.Turn) []kb.Turn) error {
	lock := t.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	turns, err := t.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	return t.Save(ctx, sessionID, fn(turns))
}
