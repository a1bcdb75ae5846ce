package section

import (
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/markdown"
)

// RenderOptions controls section rendering.
type RenderOptions struct {
	// ImageBase, when set, prefixes the file name of every local image.
	ImageBase string
	// HardWraps renders soft line breaks in the body as <br>.
	HardWraps bool
}

// Renderer produces the section markup that the reconstructor reads back.
type Renderer struct {
	opts RenderOptions
	md   *markdown.Renderer
}

// NewRenderer builds a renderer.
func NewRenderer(opts RenderOptions) *Renderer {
	return &Renderer{
		opts: opts,
		md:   markdown.New(markdown.Options{HardWraps: opts.HardWraps}),
	}
}

// Render writes s as a section element: an aside holding the frontmatter as
// a definition list and a div holding the rendered body.
func (r *Renderer) Render(s Section) (string, error) {
	body, err := r.md.Render(s.Content)
	if err != nil {
		return "", fmt.Errorf("section: render %s: %w", s.Slug, err)
	}
	if r.opts.ImageBase != "" {
		body = rewriteImages(body, r.opts.ImageBase)
	}

	slug := html.EscapeString(s.Slug)
	var sb strings.Builder
	sb.WriteString(`<section data-slug="` + slug + `" id="` + slug + `">`)
	sb.WriteString(FrontmatterHTML(s.Frontmatter))
	sb.WriteString(`<div class="markdown">`)
	sb.WriteString(body)
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

// Render renders s with a one-off renderer.
func Render(s Section, opts RenderOptions) (string, error) {
	return NewRenderer(opts).Render(s)
}

// RenderAll renders sections one after another.
func (r *Renderer) RenderAll(sections []Section) (string, error) {
	var sb strings.Builder
	for _, s := range sections {
		out, err := r.Render(s)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

const separator = `<div class="frontmatter-separator">---</div>`

// FrontmatterHTML renders rec as the frontmatter aside. A label/value list
// becomes a single definition holding a nested list of label and value
// pairs.
func FrontmatterHTML(rec frontmatter.Record) string {
	var sb strings.Builder
	sb.WriteString(`<aside class="frontmatter"><dl>`)
	sb.WriteString(separator)
	for _, k := range rec.Keys() {
		sb.WriteString("<dt>" + html.EscapeString(k) + ": </dt>")
		v, _ := rec.Get(k)
		if items, ok := v.([]frontmatter.MetaItem); ok {
			sb.WriteString("<dd><dl>")
			for _, it := range items {
				sb.WriteString("<dt>label: </dt><dd>" + html.EscapeString(it.Label) + "</dd>")
				sb.WriteString("<dt>value: </dt><dd>" + html.EscapeString(it.Value) + "</dd>")
			}
			sb.WriteString("</dl></dd>")
			continue
		}
		sb.WriteString("<dd>" + html.EscapeString(fmt.Sprint(v)) + "</dd>")
	}
	sb.WriteString(separator)
	sb.WriteString(`</dl></aside>`)
	return sb.String()
}

var imageSrcRe = regexp.MustCompile(`(<img[^>]*?\ssrc=")([^"]*)(")`)

// rewriteImages points local image sources at base. Remote and data URLs
// are left alone.
func rewriteImages(body, base string) string {
	base = strings.TrimSuffix(base, "/")
	return imageSrcRe.ReplaceAllStringFunc(body, func(m string) string {
		parts := imageSrcRe.FindStringSubmatch(m)
		src := parts[2]
		if src == "" || strings.HasPrefix(src, "http") || strings.HasPrefix(src, "//") ||
			strings.HasPrefix(src, "data:") || strings.HasPrefix(src, base+"/") {
			return m
		}
		return parts[1] + base + "/" + path.Base(src) + parts[3]
	})
}
