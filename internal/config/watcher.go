package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
)

// Watcher reports config changes made by other processes, such as the
// config subcommand running in another terminal.
type Watcher struct {
	store *Store
	fsw   *fsnotify.Watcher
	log   logger.Logger
	out   chan AppConfig

	mu   sync.Mutex
	last AppConfig
}

// NewWatcher watches the directory holding the store's file. The directory
// is created if needed, since the file itself is replaced on every save.
func NewWatcher(store *Store, last AppConfig, log logger.Logger) (*Watcher, error) {
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Could not create config directory", "Check permissions on "+dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Could not start config watcher", "")
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Could not watch config directory", "Check permissions on "+dir)
	}

	return &Watcher{
		store: store,
		fsw:   fsw,
		log:   logger.OrDefault(log),
		out:   make(chan AppConfig, 1),
		last:  last.Clone(),
	}, nil
}

// Changes delivers each externally modified config.
func (w *Watcher) Changes() <-chan AppConfig {
	return w.out
}

// SetLast records the config the caller already holds, so our own saves
// are not reported back as changes.
func (w *Watcher) SetLast(cfg AppConfig) {
	w.mu.Lock()
	w.last = cfg.Clone()
	w.mu.Unlock()
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.out)
	name := filepath.Clean(w.store.Path())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			cfg, changed := w.reload()
			if !changed {
				continue
			}
			select {
			case w.out <- cfg:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() (AppConfig, bool) {
	cfg, err := w.store.Load()
	if err != nil {
		// Editors often truncate before writing; wait for the next event.
		w.log.Debug("config reload skipped: %v", err)
		return AppConfig{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if cfg.Equal(w.last) {
		return AppConfig{}, false
	}
	w.last = cfg.Clone()
	w.log.Info("config changed on disk, reloading")
	return cfg, true
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
