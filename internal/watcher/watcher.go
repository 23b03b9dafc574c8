// Package watcher notices external changes to the workspace directory so the
// UI can re-fetch the tree. Events are coalesced into a single pending
// refresh signal; the consumer drains Events and refreshes once per burst.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a workspace root recursively.
type Watcher struct {
	root   string
	ignore []string
	events chan struct{}
}

// New returns a Watcher for root. ignorePatterns are glob patterns matched
// against entry names and workspace-relative paths, same as the tree scan.
func New(root string, ignorePatterns []string) *Watcher {
	return &Watcher{
		root:   root,
		ignore: ignorePatterns,
		// Buffer of one: a burst of events collapses into a single signal.
		events: make(chan struct{}, 1),
	}
}

// Events delivers a signal whenever the workspace changed on disk. Multiple
// changes between reads collapse into one signal.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Run watches until ctx is cancelled. Intended to be run on its own
// goroutine; watch errors are non-fatal.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Walk the directory tree and add a watcher for every subdirectory.
	if err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skip(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.skip(event.Name) {
				continue
			}
			// If a new directory was created, watch it too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = fsw.Add(event.Name)
				}
			}
			w.signal()

		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}

// signal sets the pending-refresh flag without blocking.
func (w *Watcher) signal() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// skip reports whether path is hidden or matches an ignore pattern. Hidden
// entries (dot-prefixed anywhere in the relative path) cover the app's own
// data directory and editors' temp files.
func (w *Watcher) skip(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.ToSlash(rel)); matched {
			return true
		}
	}
	return false
}
