package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// DefaultSettleDelay is how long a file must stay quiet before it is reported.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher reports files dropped into a directory.
// Bursts of writes are coalesced so a file being copied is reported once.
type Watcher struct {
	dir    string
	settle time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettleDelay sets the quiet period before a batch is reported.
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{dir: dir, settle: DefaultSettleDelay}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Watch blocks until ctx is cancelled, calling onBatch with the paths of
// new or rewritten files once they settle. Paths are sorted.
func (w *Watcher) Watch(ctx context.Context, onBatch func(paths []string)) error {
	fsw, err := w.open()
	if err != nil {
		return err
	}
	return w.loop(ctx, fsw, onBatch)
}

// Start sets up the watch and returns once it is established, reporting
// batches from a background goroutine until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, onBatch func(paths []string)) error {
	fsw, err := w.open()
	if err != nil {
		return err
	}
	go func() {
		if err := w.loop(ctx, fsw, onBatch); err != nil {
			logger.Warn("Watcher on %s stopped: %v", w.dir, err)
		}
	}()
	return nil
}

func (w *Watcher) open() (*fsnotify.Watcher, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory: %w", w.dir, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for new documents", w.dir)
	return fsw, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, onBatch func(paths []string)) error {
	defer fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				pending[path] = struct{}{}
				timer.Reset(w.settle)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error on %s: %v", w.dir, err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			logger.Debug("Watcher reporting %d files", len(paths))
			onBatch(paths)
		}
	}
}

// handleFsEvent returns the path of a created or written regular file with
// a supported format. Hidden files and directories are skipped.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) {
		return "", false
	}
	if !domain.FormatFromFilename(event.Name).IsSupported() {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}
