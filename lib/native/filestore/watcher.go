package filestore

import (
	"fmt"
	"github.com/caplayground/caplay/lib/events"
	"github.com/fsnotify/fsnotify"
	"path/filepath"
	"sync"
)

// Watcher turns changes other contexts make to the storage directory into
// storage events on a channel.
type Watcher struct {
	store  *Store
	events *events.Channel[events.StorageEvent]
	fsw    *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching the directory of s and dispatches changes on ch.
func (s *Store) Watch(ch *events.Channel[events.StorageEvent]) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(s.dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	w := &Watcher{
		store:  s,
		events: ch,
		fsw:    fsw,
		done:   make(chan struct{}),
	}
	go w.loop()

	// changes made between Open and Watch
	w.Rescan()
	return w, nil
}

// Rescan compares the whole directory with the snapshot and dispatches every
// difference. The watcher calls it on start and when fsnotify dropped events.
func (w *Watcher) Rescan() {
	seen := make(map[string]struct{})
	for _, key := range w.store.Keys() {
		seen[key] = struct{}{}
		w.check(key)
	}
	for _, key := range w.store.snapshotKeys() {
		if _, ok := seen[key]; !ok {
			w.check(key)
		}
	}
}

// Close stops the watcher. It is safe to call Close more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
		<-w.done
	})
	return err
}

// --------------------------------------------------------------------------
// Event loop
// --------------------------------------------------------------------------

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			key, ok := decodeKey(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			w.check(key)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			Logger.Warningf("watcher error on %s: %v, rescanning", w.store.dir, err)
			w.Rescan()
		}
	}
}

// check dispatches a storage event if key differs from the snapshot
func (w *Watcher) check(key string) {
	oldValue, newValue, changed := w.store.diff(key)
	if !changed {
		return
	}
	Logger.Debugf("key %q changed by another context", key)
	w.events.Dispatch(events.StorageEvent{
		Key:      key,
		OldValue: oldValue,
		NewValue: newValue,
	})
}
