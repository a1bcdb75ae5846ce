package view

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/semantic"
)

var authorRe = regexp.MustCompile(`^(.+?)\s*[–—-]\s*(.+)$`)

// Keys kept out of the meta sidebar.
var hiddenMeta = map[string]bool{
	"purpose":           true,
	"layout":            true,
	"related_post":      true,
	frontmatter.MetaKey: true,
}

// pageSection lays out one section from its parsed body.
func (r *Renderer) pageSection(s section.Section) (string, error) {
	ast, err := r.parser.Parse(s.Content)
	if err != nil {
		return "", err
	}

	fm := s.Frontmatter
	classes := []string{"page-section"}
	if l := fm.String("layout"); l != "" {
		classes = append(classes, "layout-"+l)
	}
	if st := fm.String("style"); st != "" {
		classes = append(classes, "style-"+st)
	}

	var sb strings.Builder
	sb.WriteString(`<section data-slug="` + html.EscapeString(s.Slug) + `" id="` + html.EscapeString(s.Slug) +
		`" class="` + html.EscapeString(strings.Join(classes, " ")) + `">`)
	sb.WriteString(metaSidebar(fm))
	sb.WriteString(`<div class="page-body">`)
	for _, part := range ast.SplitBy(semantic.KindRule) {
		sb.WriteString(`<div class="part">`)
		writeNodes(&sb, part.Nodes)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func writeNodes(sb *strings.Builder, nodes []semantic.Node) {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.Kind {
		case semantic.KindHeading:
			tag := "h" + strconv.Itoa(n.Level)
			sb.WriteString("<" + tag + ">" + inline.HTML(semantic.NodeText(n)) + "</" + tag + ">")
		case semantic.KindParagraph:
			sb.WriteString("<p>" + inline.HTML(semantic.InlineText(n)) + "</p>")
		case semantic.KindText:
			sb.WriteString("<p>" + inline.HTML(n.Text) + "</p>")
		case semantic.KindList:
			tag := "ul"
			if n.Ordered {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for _, item := range n.Items {
				sb.WriteString("<li>" + inline.HTML(item) + "</li>")
			}
			sb.WriteString("</" + tag + ">")
		case semantic.KindImage:
			j := i
			for j < len(nodes) && nodes[j].Kind == semantic.KindImage {
				j++
			}
			writeImages(sb, nodes[i:j])
			i = j - 1
		case semantic.KindBlockquote:
			writeQuote(sb, n)
		case semantic.KindCode:
			sb.WriteString("<pre><code")
			if n.Language != "" {
				sb.WriteString(` class="language-` + html.EscapeString(n.Language) + `"`)
			}
			sb.WriteString(">" + html.EscapeString(n.Code) + "</code></pre>")
		case semantic.KindRule:
			sb.WriteString("<hr>")
		}
	}
}

// writeImages groups consecutive images into a collage; a single image gets
// its alt text as caption.
func writeImages(sb *strings.Builder, imgs []semantic.Node) {
	if len(imgs) == 1 {
		img := imgs[0]
		sb.WriteString(`<figure>` + imgTag(img))
		if img.Alt != "" {
			sb.WriteString("<figcaption>" + html.EscapeString(img.Alt) + "</figcaption>")
		}
		sb.WriteString(`</figure>`)
		return
	}
	sb.WriteString(`<figure class="collage">`)
	for _, img := range imgs {
		sb.WriteString(imgTag(img))
	}
	sb.WriteString(`</figure>`)
}

func imgTag(n semantic.Node) string {
	return `<img src="` + html.EscapeString(n.Src) + `" alt="` + html.EscapeString(n.Alt) + `" loading="lazy">`
}

func writeQuote(sb *strings.Builder, n semantic.Node) {
	text := strings.Join(strings.Fields(n.Text), " ")
	sb.WriteString("<blockquote>")
	if m := authorRe.FindStringSubmatch(text); m != nil {
		sb.WriteString("<p>" + inline.HTML(strings.TrimSpace(m[1])) + "</p>")
		sb.WriteString("<footer>— " + html.EscapeString(strings.TrimSpace(m[2])) + "</footer>")
	} else {
		sb.WriteString("<p>" + inline.HTML(text) + "</p>")
	}
	sb.WriteString("</blockquote>")
}

// metaSidebar lists the frontmatter fields meant for display.
func metaSidebar(fm frontmatter.Record) string {
	var sb strings.Builder
	sb.WriteString(`<aside class="meta"><dl>`)
	for _, k := range fm.Keys() {
		if hiddenMeta[k] {
			continue
		}
		v, _ := fm.Get(k)
		val := ""
		switch v := v.(type) {
		case string:
			val = `"` + v + `"`
		case int:
			val = strconv.Itoa(v)
		default:
			continue
		}
		sb.WriteString("<dt>" + html.EscapeString(k) + ":</dt><dd>" + html.EscapeString(val) + "</dd>")
	}
	for _, item := range fm.Meta(frontmatter.MetaKey) {
		sb.WriteString(`<dt class="sidebar-meta">` + html.EscapeString(strings.ToLower(item.Label)) + ":</dt>")
		sb.WriteString(`<dd>"` + html.EscapeString(item.Value) + `"</dd>`)
	}
	sb.WriteString("</dl>")
	if rel := fm.String("related_post"); rel != "" {
		sb.WriteString(`<a class="related-post" href="` + html.EscapeString(rel) +
			`" target="_blank" rel="noopener noreferrer">→ related_post</a>`)
	}
	sb.WriteString("</aside>")
	return sb.String()
}
