package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/view"
)

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil || !strings.Contains(err.Error(), "config is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewService_LoadsContent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hero.md"), []byte("---\norder: 1\n---\n![a](img/a.png)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Content.Dir = dir

	svc, err := NewService(context.Background(), cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if svc.Site().Len() != 1 {
		t.Fatalf("sections = %d", svc.Site().Len())
	}

	doc, err := svc.Document(context.Background(), view.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, `src="/2026/images/a.png"`) {
		t.Errorf("image base not applied: %s", doc)
	}
	if !strings.Contains(doc, "EventSource") {
		t.Error("live reload script missing")
	}
}

func TestNewService_MissingDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Dir = filepath.Join(t.TempDir(), "absent")
	if _, err := NewService(context.Background(), cfg, false); err == nil {
		t.Fatal("expected error for missing content dir")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Dir = t.TempDir()
	cfg.App.HTTP.Port = 18931
	cfg.App.LogLevel = 12 // above error: silent

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg), WithLogOutput(os.Stderr)) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
