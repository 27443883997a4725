package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay batches the burst of events editors emit for one save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes and applies the new
// control values.
type Watcher struct {
	path     string
	controls *Controls
	logger   *log.Logger

	// OnReload, if set, is called with every successfully reloaded config.
	OnReload func(*Config)
}

// NewWatcher returns a watcher for path that updates controls.
func NewWatcher(path string, controls *Controls, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{path: path, controls: controls, logger: logger}
}

// Run watches until ctx is done. The file's directory is watched rather than
// the file itself so that editors replacing the file by rename are seen.
// Invalid configurations are logged and ignored; the previous values stay.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.logger.Debug("watching config", "path", abs)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(reloadDelay)

		case <-timer.C:
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid config", "path", w.path, "error", err)
		return
	}
	w.controls.Set(cfg.Controls)
	w.logger.Info("config reloaded",
		"gravity", cfg.Controls.Gravity,
		"rejection", cfg.Controls.Rejection,
		"node_size", cfg.Controls.NodeSize)
	if w.OnReload != nil {
		w.OnReload(cfg)
	}
}
