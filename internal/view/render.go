package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/starford/folio/internal/highlight"
	"github.com/starford/folio/internal/reconstruct"
	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/semantic"
)

// Options configures a Renderer.
type Options struct {
	Title          string
	ImageBase      string
	HighlightStyle string
	// LiveReload adds a script that reloads the page on server events.
	LiveReload bool
}

// Renderer produces full HTML documents for each mode.
type Renderer struct {
	opts     Options
	sections *section.Renderer
	parser   *semantic.Parser
	hl       *highlight.Highlighter
}

// NewRenderer builds a renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.Title == "" {
		opts.Title = "folio"
	}
	return &Renderer{
		opts:     opts,
		sections: section.NewRenderer(section.RenderOptions{ImageBase: opts.ImageBase}),
		parser:   semantic.NewParser(),
		hl:       highlight.New(highlight.Options{Style: opts.HighlightStyle, LineNumbers: true}),
	}
}

// Render returns the document for mode.
func (r *Renderer) Render(mode Mode, site *Site) (string, error) {
	sections, snap := site.state()
	switch mode {
	case Reader, Source:
		return snap.Get(func() (string, error) { return r.reader(sections) })
	case Raw:
		doc, err := snap.Get(func() (string, error) { return r.reader(sections) })
		if err != nil {
			return "", err
		}
		return r.raw(doc)
	case Page:
		return r.page(sections)
	}
	return "", fmt.Errorf("view: render %q: unknown mode", mode)
}

// Section renders one section in mode as a fragment. Source and reader
// share the section markup.
func (r *Renderer) Section(mode Mode, s section.Section) (string, error) {
	switch mode {
	case Page:
		return r.pageSection(s)
	case Raw:
		return r.rawSection(s)
	default:
		return r.sections.Render(s)
	}
}

func (r *Renderer) reader(sections []section.Section) (string, error) {
	body, err := r.sections.RenderAll(sections)
	if err != nil {
		return "", err
	}
	return r.document(Reader, `<main class="markdown-mode">`+body+`</main>`, ""), nil
}

// raw recovers the sections from the reader document and highlights their
// markdown.
func (r *Renderer) raw(readerDoc string) (string, error) {
	sections, err := reconstruct.Document(strings.NewReader(readerDoc))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(`<main class="raw-mode">`)
	for _, s := range sections {
		frag, err := r.rawSection(s)
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
	sb.WriteString(`</main>`)

	css, err := r.hl.CSS()
	if err != nil {
		return "", err
	}
	return r.document(Raw, sb.String(), css), nil
}

func (r *Renderer) rawSection(s section.Section) (string, error) {
	code, err := r.hl.Raw(s.RawMarkdown)
	if err != nil {
		return "", fmt.Errorf("view: raw %s: %w", s.Slug, err)
	}
	slug := html.EscapeString(s.Slug)
	return `<section class="raw-section" data-slug="` + slug + `"><header>` +
		html.EscapeString(section.FileName(s.Slug)) + `</header>` + code + `</section>`, nil
}

func (r *Renderer) page(sections []section.Section) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<main class="page-mode">`)
	for _, s := range sections {
		frag, err := r.pageSection(s)
		if err != nil {
			return "", fmt.Errorf("view: page %s: %w", s.Slug, err)
		}
		sb.WriteString(frag)
	}
	sb.WriteString(`</main>`)
	return r.document(Page, sb.String(), ""), nil
}

const liveReloadScript = `<script>new EventSource("/api/events").addEventListener("reload", () => location.reload());</script>`

func (r *Renderer) document(mode Mode, body, css string) string {
	var sb strings.Builder
	sb.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\">")
	sb.WriteString("<title>" + html.EscapeString(r.opts.Title) + "</title>")
	if css != "" {
		sb.WriteString("<style>" + css + "</style>")
	}
	sb.WriteString("</head><body data-mode=\"" + string(mode) + "\">")
	sb.WriteString(`<nav class="modes">`)
	for _, m := range Modes {
		class := ""
		if m == mode {
			class = ` class="active"`
		}
		sb.WriteString(`<a href="?mode=` + string(m) + `"` + class + `>` + string(m) + `</a>`)
	}
	sb.WriteString(`</nav>`)
	sb.WriteString(body)
	if r.opts.LiveReload {
		sb.WriteString(liveReloadScript)
	}
	sb.WriteString("</body></html>\n")
	return sb.String()
}
