package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// reloadChannelBuffer is the size of the reload event channel.
	reloadChannelBuffer = 8

	// defaultDebounce is how long to wait for more writes before reloading.
	// Editors commonly emit several events per save.
	defaultDebounce = 500 * time.Millisecond
)

// Watcher watches a config file and emits the reloaded Config on change.
type Watcher struct {
	path     string
	loader   *Loader
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	pendingMu sync.Mutex
	pending   bool

	reloads chan *Config
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets the debounce delay before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for the config file at path. The loader is
// re-run on each change so layered precedence still applies.
func NewWatcher(path string, loader *Loader, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		loader:   loader,
		watcher:  fsw,
		logger:   slog.Default(),
		debounce: defaultDebounce,
		reloads:  make(chan *Config, reloadChannelBuffer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reloads returns the channel of reloaded configurations.
func (w *Watcher) Reloads() <-chan *Config {
	return w.reloads
}

// Start begins watching. Watching the parent directory survives the
// rename-then-replace pattern editors use for atomic saves.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started",
		"path", w.path,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The reloads channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.reloads)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent marks a reload pending when the watched file changed.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Config change detected",
		"path", w.path,
		"op", event.Op.String())
}

// flushPending reloads the config if a change accumulated.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !pending {
		return
	}

	config, err := w.loader.Load(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous config",
			"path", w.path,
			"error", err.Error())
		return
	}

	select {
	case w.reloads <- config:
		w.logger.Info("Config reloaded", "path", w.path)
	default:
		w.logger.Warn("Reload channel full, dropping config update", "path", w.path)
	}
}
