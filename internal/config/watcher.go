package config

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a config file's mtime and, whenever it advances,
// reloads it into cfg in place via (*Config).Reload: every
// hot-reloadable EGDE section (decision bounds, mutation rates, cache
// sizing, balance thresholds, catalogue override path) is applied
// immediately, while sections that only take effect at startup
// (Server.DataDir, Cycle) are logged as requiring a restart rather than
// silently ignored. onChange, if set, fires only after a reload that
// actually hot-applied something, so a caller can react — e.g.
// re-sizing the expression cache when CacheConfig changes.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	cfg      *Config
	onChange func(*ReloadResult)
	stop     chan struct{}
	once     sync.Once
	lastMod  time.Time
}

// NewWatcher creates a config file watcher that polls for changes and
// hot-reloads cfg in place.
func NewWatcher(path string, interval time.Duration, logger *slog.Logger, cfg *Config, onChange func(*ReloadResult)) *Watcher {
	return &Watcher{
		path:     path,
		interval: interval,
		logger:   logger,
		cfg:      cfg,
		onChange: onChange,
		stop:     make(chan struct{}),
	}
}

// Start begins polling for file changes in a goroutine.
func (w *Watcher) Start() {
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	}

	go w.poll()
	w.logger.Info("config watcher started", "path", w.path, "interval", w.interval)
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.logger.Info("config watcher stopped")
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("config watcher: cannot stat file", "path", w.path, "error", err)
		return
	}

	modTime := info.ModTime()
	if !modTime.After(w.lastMod) {
		return
	}
	w.lastMod = modTime

	result, err := w.cfg.Reload(w.path)
	if err != nil {
		w.logger.Warn("config watcher: reload failed, keeping previous settings", "path", w.path, "error", err)
		return
	}
	result.LogResult(w.logger)
	if len(result.Applied) > 0 && w.onChange != nil {
		w.onChange(result)
	}
}
