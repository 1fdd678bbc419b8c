package corpus

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current pattern library and supports atomic reloads.
// Readers call Snapshot and work against an immutable Library; Reload
// builds a new Library off to the side and swaps the pointer.
type Store struct {
	path    string
	current atomic.Pointer[Library]

	// onReload is invoked with the new snapshot after a successful swap.
	// The retrieval service hooks this to rebuild its indexes.
	onReload func(*Library)
}

// NewStore loads the library at path and returns a store serving it.
func NewStore(path string) (*Store, error) {
	lib, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	s.current.Store(lib)
	return s, nil
}

// NewStoreFromLibrary wraps an already-built library. Used by tests and
// by callers that assemble patterns in memory.
func NewStoreFromLibrary(lib *Library) *Store {
	s := &Store{}
	s.current.Store(lib)
	return s
}

// Snapshot returns the current immutable library.
func (s *Store) Snapshot() *Library {
	return s.current.Load()
}

// OnReload registers a callback invoked after each successful reload.
// Must be called before Watch.
func (s *Store) OnReload(fn func(*Library)) {
	s.onReload = fn
}

// Reload re-reads the library from disk and swaps it in. On failure the
// previous snapshot stays live and the error is returned.
func (s *Store) Reload() error {
	lib, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.current.Store(lib)
	if s.onReload != nil {
		s.onReload(lib)
	}
	return nil
}

// Watch reloads the library when the file changes on disk. Events are
// debounced so editors that write in multiple syscalls trigger a single
// reload. Blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the parent directory: editors often replace the file via
	// rename, which drops a watch on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("watching pattern library", "path", s.path, "debounce", debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.Reload(); err != nil {
				slog.Warn("pattern library reload failed, keeping previous snapshot",
					"path", s.path, "error", err)
				continue
			}
			slog.Info("pattern library reloaded",
				"path", s.path, "patterns", s.Snapshot().Len())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("pattern library watch error", "error", err)
		}
	}
}
