// Package reload detects changes to the debug mode configuration file so
// the session can re-read it without an inotify dependency.
package reload

import (
	"os"
	"sync"
	"time"
)

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

// Watcher keeps a snapshot of the configuration file and reports when the
// file on disk diverges from it. A missing file is a valid state; creation
// and deletion both count as changes.
type Watcher struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewWatcher builds a watcher for the given path and takes the initial
// snapshot.
func NewWatcher(path string) *Watcher {
	w := &Watcher{path: path}
	w.Update()
	return w
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

// Update re-snapshots the file, making its current state the new baseline.
func (w *Watcher) Update() {
	if w == nil {
		return
	}
	state := stat(w.path)
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

// Check reports whether the file changed since the last snapshot.
func (w *Watcher) Check() bool {
	if w == nil {
		return false
	}
	current := stat(w.path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if current.exists != w.state.exists {
		return true
	}
	if !current.exists {
		return false
	}
	return current.modTime.After(w.state.modTime) || current.size != w.state.size
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}
}
