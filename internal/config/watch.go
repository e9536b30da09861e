package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events an editor save produces.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads the settings file when it changes on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  func(*Config)

	mu       sync.Mutex
	timer    *time.Timer
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Watch starts watching the loaded settings file and calls onChange with
// every successfully reloaded configuration. It returns nil, nil when
// running on defaults only.
func Watch(onChange func(*Config)) (*Watcher, error) {
	if configFilePath == "" {
		return nil, nil
	}
	return WatchPath(configFilePath, DefaultWatchDebounce, onChange)
}

// WatchPath watches path. The parent directory is watched so that editors
// replacing the file by rename are noticed.
func WatchPath(path string, debounce time.Duration, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s; %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher; %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s; %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      abs,
		debounce:  debounce,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	go w.processEvents()

	slog.Debug("watching settings file", "file", abs)
	return w, nil
}

// Stop stops watching. Safe to call on a nil Watcher and more than once.
func (w *Watcher) Stop() error {
	if w == nil {
		return nil
	}

	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) processEvents() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("settings watcher error", "error", err)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	slog.Info("settings file changed; reloading settings", "file", w.path)
	reloadFrom("watcher", w.onChange)
}
