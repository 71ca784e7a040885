package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/hub"
)

// WatcherOptions 描述规则文件热加载所需的依赖。
type WatcherOptions struct {
	Guard    *Guard
	Parser   hub.RuleParser
	Path     string
	Selector hub.Selector
	Debounce time.Duration
	Logger   logrus.FieldLogger
	// OnReload 在每次重新加载后回调（成功时 err 为 nil），主要用于测试与指标。
	OnReload func(installed []string, err error)
}

// Watcher 监听规则文件所在目录，文件变化后经过防抖重新解析并安装规则。
// 解析或安装失败时只记录日志，Hub 保持原有规则。
type Watcher struct {
	opts WatcherOptions
	path string

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher 校验参数并创建 Watcher。
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Guard == nil {
		return nil, errors.New("hub guard is required")
	}
	if opts.Parser == nil {
		return nil, errors.New("rule parser is required")
	}
	if opts.Path == "" {
		return nil, errors.New("rule file path is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve rule path: %w", err)
	}
	return &Watcher{opts: opts, path: abs}, nil
}

// Reload 立即解析规则文件并在写锁下安装。
func (w *Watcher) Reload() ([]string, error) {
	var installed []string
	parsed, err := w.opts.Parser.ParseFile(w.path, w.opts.Selector.List()...)
	if err == nil {
		err = w.opts.Guard.Write(func(h *hub.Hub) error {
			var ingestErr error
			installed, ingestErr = h.ConfigureRules(parsed, w.opts.Selector)
			return ingestErr
		})
	}

	entry := w.opts.Logger.WithFields(logrus.Fields{"action": "rule_reload", "path": w.path})
	if err != nil {
		entry.WithError(err).Warn("规则重新加载失败，保留原有规则")
	} else {
		entry.WithField("installed", installed).Info("规则已重新加载")
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(installed, err)
	}
	return installed, err
}

// Run 阻塞直到 ctx 结束。
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.WithFields(logrus.Fields{"action": "rule_watch", "path": w.path}).
				WithError(err).Warn("文件监听出错")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		_, _ = w.Reload()
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
