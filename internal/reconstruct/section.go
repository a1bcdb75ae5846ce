package reconstruct

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/section"
)

// Markers of the section DOM contract.
const (
	SeparatorClass   = "frontmatter-separator"
	FrontmatterClass = "frontmatter"
	ContentClass     = "markdown"
	SlugAttr         = "data-slug"
)

var (
	site     = NewSite()
	digitsRe = regexp.MustCompile(`^\d+$`)
)

// Markdown converts a rendered content container back to markdown with the
// site converter.
func Markdown(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(site.Convert(n))
}

// Frontmatter rebuilds a frontmatter record from the first <dl> under aside.
// Terms and definitions are paired by position so separator markers between
// them do not matter. A definition holding its own <dl> is read as a
// label/value list; pairs whose terms are not "label" and "value" are
// skipped. The reserved keys are not added.
func Frontmatter(aside *html.Node) frontmatter.Record {
	var rec frontmatter.Record
	if aside == nil {
		return rec
	}
	dl := dom.FindFirst(aside, dom.ByTag("dl"))
	if dl == nil {
		return rec
	}

	var terms, defs []*html.Node
	for _, c := range dom.ElementChildren(dl) {
		switch {
		case dom.HasClass(c, SeparatorClass):
		case c.Data == "dt":
			terms = append(terms, c)
		case c.Data == "dd":
			defs = append(defs, c)
		}
	}

	for i, dt := range terms {
		if i >= len(defs) {
			break
		}
		key := termText(dt)
		dd := defs[i]

		if nested := dom.FindFirst(dd, dom.ByTag("dl")); nested != nil {
			rec.Set(key, metaItems(nested))
			continue
		}
		text := frontmatter.OneLine(strings.TrimSpace(dom.TextContent(dd)))
		if digitsRe.MatchString(text) {
			if n, err := strconv.Atoi(text); err == nil {
				rec.Set(key, n)
				continue
			}
		}
		rec.Set(key, text)
	}
	return rec
}

func metaItems(dl *html.Node) []frontmatter.MetaItem {
	terms := dom.FindAll(dl, dom.ByTag("dt"))
	defs := dom.FindAll(dl, dom.ByTag("dd"))
	items := []frontmatter.MetaItem{}
	for i := 0; i+1 < len(terms); i += 2 {
		if termText(terms[i]) != "label" || termText(terms[i+1]) != "value" {
			continue
		}
		items = append(items, frontmatter.MetaItem{
			Label: defText(defs, i),
			Value: defText(defs, i+1),
		})
	}
	return items
}

// termText is the trimmed text of a <dt> without its trailing colon.
func termText(dt *html.Node) string {
	return strings.TrimSuffix(strings.TrimSpace(dom.TextContent(dt)), ":")
}

func defText(defs []*html.Node, i int) string {
	if i >= len(defs) {
		return ""
	}
	return frontmatter.OneLine(strings.TrimSpace(dom.TextContent(defs[i])))
}

// Section rebuilds a section from its rendered element.
func Section(el *html.Node) section.Section {
	aside := dom.FindFirst(el, dom.ByClass("aside", FrontmatterClass))
	content := dom.FindFirst(el, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.HasClass(n, ContentClass)
	})
	fm := frontmatter.WithReserved(Frontmatter(aside))
	return section.Assemble(dom.Attr(el, SlugAttr), fm, Markdown(content))
}

// Sections rebuilds every section[data-slug] under doc in document order.
func Sections(doc *html.Node) []section.Section {
	var out []section.Section
	for _, el := range dom.FindAll(doc, func(n *html.Node) bool {
		_, ok := dom.LookupAttr(n, SlugAttr)
		return dom.IsElement(n, "section") && ok
	}) {
		out = append(out, Section(el))
	}
	return out
}

// Document parses an HTML document and rebuilds its sections.
func Document(r io.Reader) ([]section.Section, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: parse document: %w", err)
	}
	return Sections(doc), nil
}
