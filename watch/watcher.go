// Package watch notifies about changes below the specification roots.
//
// Every directory the loader would visit is registered with fsnotify;
// directories created later are registered as they appear. Bursts of events
// are debounced into a single OnChange notification listing the affected
// directories.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// ChangeCallback receives the sorted directories that changed during one
// debounce period.
type ChangeCallback func(changed []string) error

// Options configures a Watcher.
type Options struct {
	// CacheDirectory is never watched.
	CacheDirectory string
	// Exclude holds doublestar patterns matched against root-relative paths.
	Exclude  []string
	Debounce time.Duration
	Logger   *zap.SugaredLogger
}

// Watcher watches the specification roots for changes.
type Watcher struct {
	roots    []string
	cacheDir string
	opts     Options
	logger   *zap.SugaredLogger
	watcher  *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []ChangeCallback
	watched   map[string]string // directory -> root
	pending   map[string]struct{}
	timer     *time.Timer
	closed    bool
	inflight  sync.WaitGroup
}

// New registers all directories under roots. Missing roots are an error.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		opts:    opts,
		logger:  log,
		watcher: fw,
		watched: make(map[string]string),
		pending: make(map[string]struct{}),
	}
	if opts.CacheDirectory != "" {
		if w.cacheDir, err = filepath.Abs(opts.CacheDirectory); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "cache directory %s", opts.CacheDirectory)
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "root %s", root)
		}
		if err := w.addTree(abs, abs); err != nil {
			fw.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}

	w.logger.Debugw("Watching specification roots",
		logger.FieldCount, len(w.watched),
		"debounce_ms", opts.Debounce.Milliseconds())
	return w, nil
}

// OnChange registers a callback for debounced change notifications.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Directories returns the watched directories in sorted order.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// Close stops the pending notification, releases the fsnotify watcher and
// waits for running callbacks to return. Callbacks must not call Close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	err := w.watcher.Close()
	w.inflight.Wait()
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	dir := filepath.Dir(event.Name)
	w.mu.Lock()
	root, ok := w.watched[dir]
	w.mu.Unlock()
	if !ok || w.skip(root, event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(root, event.Name); err != nil {
				w.logger.Warnw("Failed to watch new directory",
					logger.FieldDirectory, event.Name,
					logger.FieldError, err)
			}
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.forget(event.Name)
	}

	w.logger.Debugw("Change detected",
		logger.FieldFile, event.Name,
		"op", event.Op.String())
	w.schedule(dir)
	if event.Has(fsnotify.Create) {
		w.schedule(event.Name)
	}
}

// schedule records dir as changed and restarts the debounce timer.
func (w *Watcher) schedule(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if _, watched := w.watched[dir]; !watched {
		return
	}
	w.pending[dir] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	defer w.inflight.Done()
	changed := make([]string, 0, len(w.pending))
	for dir := range w.pending {
		changed = append(changed, dir)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	callbacks := slices.Clone(w.callbacks)
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	for _, cb := range callbacks {
		if err := cb(changed); err != nil {
			// Continue calling other callbacks even if one fails
			w.logger.Warnw("Change callback error", logger.FieldError, err)
		}
	}
}

// addTree registers dir and every directory below it that the loader
// would visit.
func (w *Watcher) addTree(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "cannot walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(root, path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		w.mu.Lock()
		w.watched[path] = root
		w.mu.Unlock()
		return nil
	})
}

// forget drops path and the directories below it.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.watched {
		if dir == path || strings.HasPrefix(dir, path+string(filepath.Separator)) {
			delete(w.watched, dir)
			delete(w.pending, dir)
		}
	}
}

// skip applies the loader's rules: hidden entries, the cache directory and
// exclude patterns.
func (w *Watcher) skip(root, path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	if w.cacheDir != "" && path == w.cacheDir {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
