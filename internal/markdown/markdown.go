// Package markdown renders markdown to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options controls the goldmark engine.
type Options struct {
	// HardWraps renders soft line breaks inside paragraphs as <br>.
	HardWraps bool
	// Extensions replace the default GFM extension set when non-empty.
	Extensions []goldmark.Extender
}

// Renderer converts markdown to HTML. It is stateless and safe for
// concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// New builds a renderer. Raw HTML in the input is passed through.
func New(opts Options) *Renderer {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []goldmark.Extender{extension.GFM}
	}

	rendererOptions := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(rendererOptions...),
		),
	}
}

// Render returns the HTML for src.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: render: %w", err)
	}
	return buf.String(), nil
}
