package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (c *countingReloader) Reload(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	r := &countingReloader{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, r, Options{Root: dir, Debounce: 150 * time.Millisecond, Logger: quietLogger()}, func(slugs []string) {
			mu.Lock()
			batches = append(batches, slugs)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = os.WriteFile(filepath.Join(dir, "hero.md"), []byte("# v"), 0o644)
	}
	_ = os.WriteFile(filepath.Join(dir, "about.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, "expected one debounced batch")

	mu.Lock()
	got := batches[0]
	mu.Unlock()
	if len(got) != 2 || got[0] != "about" || got[1] != "hero" {
		t.Errorf("slugs = %v, want [about hero]", got)
	}
	if n := r.calls.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_ReloadErrorSkipsCallback(t *testing.T) {
	dir := t.TempDir()
	r := &countingReloader{err: errors.New("boom")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var called atomic.Bool
	go Watch(ctx, r, Options{Root: dir, Debounce: 50 * time.Millisecond, Logger: quietLogger()}, func([]string) {
		called.Store(true)
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644)

	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		return r.calls.Load() >= 1
	}, "reload not attempted")
	time.Sleep(50 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after failed reload")
	}
}

// flakyReloader fails its first failures calls.
type flakyReloader struct {
	calls    atomic.Int32
	failures int32
}

func (f *flakyReloader) Reload(context.Context) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("boom")
	}
	return nil
}

func TestWatch_FailedReloadKeepsPendingSlugs(t *testing.T) {
	dir := t.TempDir()
	r := &flakyReloader{failures: 1}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 4)
	go Watch(ctx, r, Options{Root: dir, Debounce: 50 * time.Millisecond, Logger: quietLogger()}, func(slugs []string) {
		batches <- slugs
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644)
	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		return r.calls.Load() >= 1
	}, "first reload not attempted")

	_ = os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644)
	select {
	case got := <-batches:
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("slugs = %v, want [a b]", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch after the reload recovered")
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	err := Watch(context.Background(), &countingReloader{}, Options{Root: filepath.Join(t.TempDir(), "nope")}, nil)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestRelevant(t *testing.T) {
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/c/.a.md.123", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/c/.draft.md", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/c/notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		if got := relevant(tc.ev); got != tc.want {
			t.Errorf("relevant(%v) = %v, want %v", tc.ev, got, tc.want)
		}
	}
}
