package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/infrastructure/storage"
)

// debounceDelay 防抖延迟：编辑器保存常触发连续多个事件
const debounceDelay = 500 * time.Millisecond

// KBWatcher 知识库元数据文件监听器
// 查询周期仍按需整体加载快照，监听器只负责运维观测：
// 记录外部变更次数与时间，供状态接口展示
type KBWatcher struct {
	metadata *storage.MetadataFile
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewKBWatcher 创建知识库文件监听器
func NewKBWatcher(metadata *storage.MetadataFile) (*KBWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &KBWatcher{
		metadata: metadata,
		watcher:  fsWatcher,
		logger:   applog.NewModuleLogger("watcher", "kb"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start 启动监听
// 监听元数据文件所在目录（监听目录可捕获原子替换写入）
func (w *KBWatcher) Start() error {
	dir := filepath.Dir(w.metadata.Path())

	w.logger.Info("Starting KB metadata watcher",
		"path", w.metadata.Path(),
	)

	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.watchLoop()

	return nil
}

// Stop 停止监听
func (w *KBWatcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
	w.wg.Wait()

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	w.logger.Info("KB metadata watcher stopped")
}

// watchLoop 事件处理循环
func (w *KBWatcher) watchLoop() {
	defer w.wg.Done()

	target := filepath.Clean(w.metadata.Path())

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleMark()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

// scheduleMark 防抖后记录一次变更
func (w *KBWatcher) scheduleMark() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceDelay, func() {
		w.metadata.MarkChanged()
		w.logger.Info("KB metadata file changed",
			"path", w.metadata.Path(),
		)
	})
}
