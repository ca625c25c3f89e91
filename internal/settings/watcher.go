package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/lingprofile/pkg/logger"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher re-reads a settings file after it changes and reports the new
// value. Several writes within the debounce window produce one callback.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Settings)
	log      logger.Logger

	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	current Settings
	dirty   bool
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long writes are collected before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWatcher loads path once and prepares to watch it. onChange runs on
// the watcher goroutine.
func NewWatcher(path string, onChange func(Settings), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.Get().Named("settings")
	}

	s, err := Load(w.path)
	if err != nil {
		w.log.Warn(context.Background(), "settings unreadable, using defaults", logger.Error(err))
	}
	w.current = s
	return w
}

// Current returns the last successfully loaded settings.
func (w *Watcher) Current() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start watches the file's directory, so the file may be created, replaced
// or removed after Start.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw
	go w.loop(ctx)
	w.log.Info(ctx, "watching settings", logger.String("path", w.path))
	return nil
}

// Stop ends the watch and waits for the loop to exit.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == w.path {
				w.mu.Lock()
				w.dirty = true
				w.mu.Unlock()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error(ctx, "settings watcher error", logger.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return
	}
	w.dirty = false
	w.mu.Unlock()

	s, err := Load(w.path)
	if err != nil {
		w.log.Warn(ctx, "settings reload failed", logger.Error(err))
		return
	}

	w.mu.Lock()
	changed := s != w.current
	w.current = s
	w.mu.Unlock()

	if changed {
		w.log.Info(ctx, "settings changed",
			logger.String("theme", string(s.Theme)),
			logger.Bool("auto_save", s.AutoSave),
		)
		if w.onChange != nil {
			w.onChange(s)
		}
	}
}
