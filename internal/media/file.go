package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileQuery reads the colour scheme from a file that a desktop integration
// keeps up to date. "dark", "prefer-dark" and the portal value "1" mean
// dark; anything else, including a missing file, means light.
type FileQuery struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	last    bool

	listeners listeners[bool]
}

func NewFileQuery(path string, logger *slog.Logger) *FileQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileQuery{path: filepath.Clean(path), logger: logger}
}

func (q *FileQuery) Matches() (bool, error) {
	return readScheme(q.path)
}

func readScheme(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read colour scheme file: %w", err)
	}
	return ParseScheme(string(b)), nil
}

// ParseScheme interprets colour scheme file contents.
func ParseScheme(s string) bool {
	v := strings.ToLower(strings.Trim(strings.TrimSpace(s), `'"`))
	switch v {
	case "dark", "prefer-dark", "1":
		return true
	}
	return false
}

// Subscribe watches the file's directory so atomic replacements are seen.
func (q *FileQuery) Subscribe(fn func(bool)) (func(), error) {
	q.mu.Lock()
	if q.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			q.mu.Unlock()
			return nil, fmt.Errorf("create file watcher: %w", err)
		}
		if err := w.Add(filepath.Dir(q.path)); err != nil {
			_ = w.Close()
			q.mu.Unlock()
			return nil, fmt.Errorf("watch %s: %w", filepath.Dir(q.path), err)
		}
		q.last, _ = readScheme(q.path)
		q.watcher = w
		go q.run(w)
	}
	q.mu.Unlock()

	cancel := q.listeners.add(fn)
	return func() {
		cancel()
		if q.listeners.len() == 0 {
			q.Close()
		}
	}, nil
}

// Close stops watching. Subscribing again restarts it.
func (q *FileQuery) Close() {
	q.mu.Lock()
	w := q.watcher
	q.watcher = nil
	q.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

func (q *FileQuery) run(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != q.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			q.reload(w)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			q.logger.Warn("colour scheme file watch error", "path", q.path, "error", err)
		}
	}
}

func (q *FileQuery) reload(w *fsnotify.Watcher) {
	dark, err := readScheme(q.path)
	if err != nil {
		q.logger.Warn("failed to read colour scheme file", "path", q.path, "error", err)
		return
	}

	q.mu.Lock()
	if q.watcher != w {
		q.mu.Unlock()
		return
	}
	changed := dark != q.last
	q.last = dark
	q.mu.Unlock()

	if changed {
		q.listeners.notify(dark)
	}
}
