// Package watcher turns filesystem activity under the scan roots into
// debounced rescan requests.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/releasescan/internal/logging"
)

// TriggerFunc is called with the root under which files changed.
type TriggerFunc func(root string)

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	debounce  time.Duration
	onChange  TriggerFunc
	logger    *logging.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

type Option func(*Watcher)

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher watches every directory below roots. onChange fires once per
// root after events stop arriving for the debounce period.
func NewWatcher(roots []string, onChange TriggerFunc, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debounce:  30 * time.Second,
		onChange:  onChange,
		logger:    logging.Nop(),
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		if err := w.addRecursive(abs); err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Debug("watcher", "Watching directory", logging.F("path", path))
		return nil
	})
}

// Run delivers events until ctx ends or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watcher", "Unable to watch new directory", logging.F("path", event.Name), logging.F("error", err))
			}
		}
	}

	root := w.rootOf(event.Name)
	if root == "" {
		return
	}
	w.logger.Debug("watcher", "Change detected", logging.F("op", event.Op.String()), logging.F("path", event.Name))
	w.schedule(root)
}

// rootOf returns the longest watched root containing path.
func (w *Watcher) rootOf(path string) string {
	best := ""
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

func (w *Watcher) schedule(root string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[root]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[root] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, root)
		w.mu.Unlock()

		w.logger.Info("watcher", "Changes settled, requesting rescan", logging.F("root", root))
		w.onChange(root)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for root, timer := range w.pending {
		timer.Stop()
		delete(w.pending, root)
	}
}
