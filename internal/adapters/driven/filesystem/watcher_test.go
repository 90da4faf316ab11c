package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

func TestWatcher_HandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("%PDF"), 0o644))
	hidden := filepath.Join(dir, ".draft.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))
	binary := filepath.Join(dir, "tool.exe")
	require.NoError(t, os.WriteFile(binary, []byte("x"), 0o644))
	sub := filepath.Join(dir, "nested.txt")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		expected bool
	}{
		{"create", doc, fsnotify.Create, true},
		{"write", doc, fsnotify.Write, true},
		{"write with chmod", doc, fsnotify.Write | fsnotify.Chmod, true},
		{"chmod only", doc, fsnotify.Chmod, false},
		{"remove", filepath.Join(dir, "gone.txt"), fsnotify.Remove, false},
		{"rename", doc, fsnotify.Rename, false},
		{"hidden", hidden, fsnotify.Create, false},
		{"unsupported format", binary, fsnotify.Create, false},
		{"directory", sub, fsnotify.Create, false},
		{"vanished before stat", filepath.Join(dir, "temp.txt"), fsnotify.Create, false},
	}

	w := NewWatcher(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.Equal(t, tt.path, path)
			}
		})
	}
}

func TestWatcher_WatchReportsSettledFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, WithSettleDelay(50*time.Millisecond))

	var mu sync.Mutex
	var batches [][]string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# B"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A again"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	var all []string
	for _, b := range batches {
		all = append(all, b...)
	}
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.md")}, uniq(all))
}

func TestWatcher_RejectsMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"))
	err := w.Watch(context.Background(), func([]string) {})
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err = NewWatcher(file).Watch(context.Background(), func([]string) {})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatcher_StartReportsInBackground(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	w := NewWatcher(dir, WithSettleDelay(50*time.Millisecond))
	require.NoError(t, w.Start(ctx, func(paths []string) {
		mu.Lock()
		got = append(got, paths...)
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.csv"), []byte("a,b\n1,2\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 20*time.Millisecond)

	err := NewWatcher(filepath.Join(dir, "missing")).Start(ctx, func([]string) {})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewWatcher_Defaults(t *testing.T) {
	w := NewWatcher("/tmp/drop", WithSettleDelay(0))
	assert.Equal(t, DefaultSettleDelay, w.settle)
	assert.Equal(t, "/tmp/drop", w.Dir())
}

func uniq(paths []string) []string {
	seen := make(map[string]bool)
	out := paths[:0:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
