package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func collectChanges(t *testing.T, dir string, excludes []string) (*Watcher, func() [][]string) {
	t.Helper()

	var (
		mu      sync.Mutex
		batches [][]string
	)
	w, err := NewWatcher(50*time.Millisecond, excludes, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := w.Watch(dir); err != nil {
		t.Fatalf("watch: %v", err)
	}

	return w, func() [][]string {
		mu.Lock()
		defer mu.Unlock()
		out := make([][]string, len(batches))
		copy(out, batches)
		return out
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	_, snapshotBatches := collectChanges(t, dir, nil)

	path := filepath.Join(dir, "demo.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for {
		batches := snapshotBatches()
		if len(batches) > 0 {
			if len(batches[0]) != 1 || filepath.Base(batches[0][0]) != "demo.json" {
				t.Fatalf("unexpected batch: %v", batches[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for debounced change batch")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWatcher_IgnoresNonSnapshotFiles(t *testing.T) {
	dir := t.TempDir()
	_, snapshotBatches := collectChanges(t, dir, []string{"ignored*.json"})

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored-demo.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if batches := snapshotBatches(); len(batches) != 0 {
		t.Fatalf("expected no batches for excluded files, got %v", batches)
	}
}
