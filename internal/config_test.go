package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/view"
	pkgconfig "github.com/starford/folio/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.View.Mode() != view.Reader {
		t.Errorf("default mode = %q, want reader", cfg.View.Mode())
	}
}

func TestViewConfig_EmptyModeDefaultsReader(t *testing.T) {
	cfg := ViewConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default: %v", err)
	}
	if cfg.DefaultMode != "reader" {
		t.Errorf("mode = %q, want reader", cfg.DefaultMode)
	}
}

func TestViewConfig_InvalidMode(t *testing.T) {
	cfg := ViewConfig{DefaultMode: "fancy"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
	if !strings.Contains(err.Error(), apperr.ErrInvalidMode.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestContentConfig_DirRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch empty content dir")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port out of range should fail")
	}
	if got := (&HTTPConfig{Port: 9000}).Address(); got != ":9000" {
		t.Errorf("address = %q", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("FOLIO_TEST_DIR", "/srv/site")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
content:
  dir: ${FOLIO_TEST_DIR}
render:
  highlight_style: dracula
view:
  default_mode: page
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Content.Dir != "/srv/site" {
		t.Errorf("content dir = %q, want env expansion", cfg.Content.Dir)
	}
	if cfg.Content.ImageBase != "/2026/images" {
		t.Errorf("image base default lost: %q", cfg.Content.ImageBase)
	}
	if !cfg.Render.HardWraps || cfg.Render.HighlightStyle != "dracula" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.View.Mode() != view.Page {
		t.Errorf("mode = %q", cfg.View.Mode())
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("missing file should be allowed: %v", err)
	}
	if cfg.Content.Dir != "./content" {
		t.Errorf("content dir = %q", cfg.Content.Dir)
	}
}
