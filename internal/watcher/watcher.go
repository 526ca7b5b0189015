// Package watcher reports image files that appear in a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is reported
const DefaultSettle = 500 * time.Millisecond

// DefaultExtensions are the image types the watcher picks up
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// Options configures a Watcher
type Options struct {
	Extensions []string
	Settle     time.Duration
}

// Watcher emits the path of every matching file once it stops changing
type Watcher struct {
	dir        string
	extensions map[string]struct{}
	settle     time.Duration

	fs     *fsnotify.Watcher
	paths  chan string
	ready  chan struct{}
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	settled []string
}

// New starts watching dir. Call Run to receive paths and Close when done.
func New(dir string, opts Options, log *zap.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	fs, err := createWatcher(dir)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:        dir,
		extensions: make(map[string]struct{}, len(exts)),
		settle:     settle,
		fs:         fs,
		paths:      make(chan string),
		ready:      make(chan struct{}, 1),
		logger:     logger.OrNop(log).Named("watcher"),
		pending:    make(map[string]*time.Timer),
	}
	for _, ext := range exts {
		w.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return w, nil
}

// createWatcher creates and configures a new file system watcher
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return fs, nil
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Paths delivers settled image paths while Run is active
func (w *Watcher) Paths() <-chan string {
	return w.paths
}

// Matches reports whether path has one of the watched extensions
func (w *Watcher) Matches(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Run processes file system events until ctx is done. Paths is closed on return.
// Settled images queue until the receiver takes them; none are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.paths)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-w.ready:
			for path, ok := w.nextSettled(); ok; path, ok = w.nextSettled() {
				if _, err := os.Stat(path); err != nil {
					w.logger.Debug("settled file vanished", zap.String("path", path))
					continue
				}
				select {
				case w.paths <- path:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// handleEvent restarts the settle timer for created or written images
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.Matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[event.Name]; ok {
		t.Reset(w.settle)
		return
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.settled = append(w.settled, path)
		w.mu.Unlock()
		select {
		case w.ready <- struct{}{}:
		default:
		}
	})
	w.logger.Debug("image changed", zap.String("path", path), zap.String("op", event.Op.String()))
}

// nextSettled pops the oldest settled path
func (w *Watcher) nextSettled() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.settled) == 0 {
		return "", false
	}
	path := w.settled[0]
	w.settled = w.settled[1:]
	return path, true
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// Close stops the underlying file system watcher
func (w *Watcher) Close() error {
	return w.fs.Close()
}
