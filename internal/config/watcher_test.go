package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReportsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	writeFile(t, path, "side: east\n")

	var calls atomic.Int32
	notified := make(chan string, 4)
	w := NewWatcher(path, func(p string) {
		calls.Add(1)
		notified <- p
	}, newTestLogger())
	w.debounce = 50 * time.Millisecond

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeFile(t, path, "side: west\n")

	select {
	case p := <-notified:
		if p != path {
			t.Errorf("notified path = %q, want %q", p, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification after a write")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	writeFile(t, path, "side: east\n")

	var calls atomic.Int32
	w := NewWatcher(path, func(string) {
		calls.Add(1)
	}, newTestLogger())
	w.debounce = 100 * time.Millisecond

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, "side: east\n")
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(400 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("notifications for a write burst = %d, want 1", got)
	}
}

func TestWatcherStartFailsOnMissingFile(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent.yaml"), func(string) {}, newTestLogger())
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("Start succeeded for a missing file")
	}
}

func TestWatcherStopBeforeStart(t *testing.T) {
	w := NewWatcher("layout.yaml", func(string) {}, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
}
