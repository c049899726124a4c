// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/sessionchat/internal/logging"
)

// =============================================================================
// DOCUMENT WATCHER
// =============================================================================

// Watcher re-reads session documents when their files change on disk.
// Directories are watched rather than files so editors that save by rename
// are picked up too.
type Watcher struct {
	coll     *Collection
	fsw      *fsnotify.Watcher
	log      *log.Logger
	mu       sync.Mutex
	dirs     map[string]bool
	tracked  map[string]bool
	onReload func(Document)
}

// NewWatcher creates a watcher feeding coll.
func NewWatcher(coll *Collection) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		coll:    coll,
		fsw:     fsw,
		log:     logging.NewComponentLogger("rag"),
		dirs:    make(map[string]bool),
		tracked: make(map[string]bool),
	}, nil
}

// OnReload registers a callback invoked after a document was re-read.
func (w *Watcher) OnReload(fn func(Document)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Track starts watching the file at path.
func (w *Watcher) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.tracked[abs] = true
	dir := filepath.Dir(abs)
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Untrack stops reloading every tracked file. Directory watches stay until
// Close.
func (w *Watcher) Untrack() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tracked = make(map[string]bool)
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload(event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) reload(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	tracked := w.tracked[abs]
	fn := w.onReload
	w.mu.Unlock()
	if !tracked {
		return
	}

	doc, err := LoadFile(abs)
	if err != nil {
		w.log.Warn("reload failed", "path", abs, "err", err)
		return
	}

	// Collection entries carry the path they were loaded with.
	n := w.coll.Replace(doc)
	if n == 0 {
		for _, p := range w.coll.Paths() {
			if pa, err := filepath.Abs(p); err == nil && pa == abs {
				doc.Path = p
				n = w.coll.Replace(doc)
				break
			}
		}
	}
	w.log.Debug("document reloaded", "path", abs, "entries", n)
	if n > 0 && fn != nil {
		fn(doc)
	}
}
