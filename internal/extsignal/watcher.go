package extsignal

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	derr "github.com/gamesrv/driftwatch/pkg/errors"
	"github.com/gamesrv/driftwatch/pkg/logger"
)

// Watcher is an inotify-backed transport with the same contract as
// FileMarker: creation of the marker file arms one pending extension;
// Consume observes and clears it. Arrivals between two consumes still
// coalesce because arming is a boolean, not a queue.
type Watcher struct {
	path string
	fw   *fsnotify.Watcher

	mu    sync.Mutex
	armed bool
}

// NewWatcher watches the marker's parent directory. A marker already
// present at startup counts as one pending request.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, derr.New(derr.ErrCodeSignalSetup, "extsignal.watch", "creating watcher", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, derr.New(derr.ErrCodeSignalSetup, "extsignal.watch", "watching marker directory", err)
	}

	w := &Watcher{path: path, fw: fw}
	if _, err := os.Stat(path); err == nil {
		w.armed = true
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name == w.path && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.mu.Lock()
				w.armed = true
				w.mu.Unlock()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Extension watcher error", "err", err)
		}
	}
}

func (w *Watcher) Consume() bool {
	w.mu.Lock()
	armed := w.armed
	w.armed = false
	w.mu.Unlock()

	if !armed {
		return false
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("Extension marker could not be removed", "path", w.path, "err", err)
	}
	logger.Log.Info("Extension request consumed", "path", w.path)
	return true
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}
