package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/metrics"
)

// Watcher reloads the catalog when control files change and publishes the
// new snapshot through a Store. A failed reload keeps the previous snapshot.
type Watcher struct {
	dir      string
	store    *Store
	debounce time.Duration
}

// NewWatcher creates a watcher for the given catalog directory.
func NewWatcher(dir string, store *Store) *Watcher {
	return &Watcher{dir: dir, store: store, debounce: 500 * time.Millisecond}
}

// Run watches the catalog directory until ctx is cancelled. Write events are
// debounced so a multi-file sync triggers one reload.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory %s: %w", w.dir, err)
	}
	logging.Infof("Watching catalog directory %s for changes", w.dir)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debugf("Catalog change detected: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warnf("Catalog watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	snap, err := Load(w.dir)
	if err != nil {
		logging.Errorf("Catalog reload failed, keeping previous snapshot: %v", err)
		metrics.RecordCatalogReload("error", 0)
		return
	}
	w.store.Replace(snap)
	metrics.RecordCatalogReload("success", snap.Len())
	logging.Infof("Catalog reloaded: %d controls (snapshot=%s)", snap.Len(), snap.Version())
}
