package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"roster/internal/config"
	"roster/internal/logging"
)

const reloadDebounce = 100 * time.Millisecond

// configWatcher reloads the config file when it is written or replaced. The
// parent directory is watched because atomic saves replace the file.
type configWatcher struct {
	path   string
	apply  func(*config.Config) error
	logger *slog.Logger

	mu       sync.Mutex
	debounce *time.Timer
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

func newConfigWatcher(path string, apply func(*config.Config) error, logger *slog.Logger) *configWatcher {
	return &configWatcher{path: path, apply: apply, logger: logger}
}

func (w *configWatcher) start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.mu.Lock()
	w.watcher = watcher
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx, watcher)
	w.logger.Debug("watching config for changes", logging.String("path", w.path))
	return nil
}

func (w *configWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(w.done)
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", logging.Error(err))
		}
	}
}

func (w *configWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, w.reload)
}

// reload loads and applies the config. Invalid files are logged and the
// running settings are kept.
func (w *configWatcher) reload() {
	cfg, _, exists, err := config.Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", logging.String("path", w.path), logging.Error(err))
		return
	}
	if !exists {
		return
	}
	if err := w.apply(cfg); err != nil {
		w.logger.Warn("config reload failed", logging.String("path", w.path), logging.Error(err))
	}
}

func (w *configWatcher) stop() {
	w.mu.Lock()
	watcher := w.watcher
	done := w.done
	w.watcher = nil
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}
