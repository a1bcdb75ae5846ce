package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/highlight"
	"github.com/starford/folio/internal/view"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Render  RenderConfig      `yaml:"render"`
	View    ViewConfig        `yaml:"view"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return c.View.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	Title    string     `yaml:"title"`
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the section files.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	ImageBase string `yaml:"image_base"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// RenderConfig controls markdown and raw-view rendering.
//
// HardWraps applies to the semantic parser only; the reader view keeps
// soft line breaks.
type RenderConfig struct {
	HardWraps      bool   `yaml:"hard_wraps"`
	HighlightStyle string `yaml:"highlight_style"`
	LiveReload     bool   `yaml:"live_reload"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	if c.HighlightStyle == "" {
		c.HighlightStyle = highlight.DefaultStyle
	}
	return nil
}

// ViewConfig holds view mode defaults.
type ViewConfig struct {
	DefaultMode string `yaml:"default_mode"`
}

// Validate validates the view configuration.
func (c *ViewConfig) Validate() error {
	if c.DefaultMode == "" {
		c.DefaultMode = string(view.DefaultMode)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultMode, validation.Required, validation.By(func(v any) error {
			_, err := view.ParseMode(v.(string))
			return err
		})),
	)
}

// Mode returns the configured default view mode.
func (c *ViewConfig) Mode() view.Mode {
	m, err := view.ParseMode(c.DefaultMode)
	if err != nil {
		return view.DefaultMode
	}
	return m
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			Title:    "folio",
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:       "./content",
			ImageBase: "/2026/images",
		},
		Render: RenderConfig{
			HardWraps:      true,
			HighlightStyle: highlight.DefaultStyle,
			LiveReload:     true,
		},
		View: ViewConfig{
			DefaultMode: string(view.DefaultMode),
		},
	}
}
