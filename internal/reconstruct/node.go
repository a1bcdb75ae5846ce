package reconstruct

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
)

var blockTags = tagSet(
	"address", "article", "aside", "audio", "blockquote", "body", "canvas",
	"center", "dd", "dir", "div", "dl", "dt", "fieldset", "figcaption", "figure",
	"footer", "form", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "header",
	"hgroup", "hr", "html", "isindex", "li", "main", "menu", "nav", "noframes",
	"noscript", "ol", "output", "p", "pre", "section", "table", "tbody", "td",
	"tfoot", "th", "thead", "tr", "ul",
)

var voidTags = tagSet(
	"area", "base", "br", "col", "command", "embed", "hr", "img", "input",
	"keygen", "link", "meta", "param", "source", "track", "wbr",
)

var meaningfulWhenBlankTags = tagSet(
	"a", "table", "thead", "tbody", "tfoot", "th", "td", "iframe", "script",
	"audio", "video",
)

func tagSet(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockTags[n.Data]
}

func isVoid(n *html.Node) bool {
	return n.Type == html.ElementNode && voidTags[n.Data]
}

func isPre(n *html.Node) bool {
	return dom.IsElement(n, "pre")
}

// inCode reports whether n is a code element or sits inside one.
func inCode(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if dom.IsElement(n, "code") {
			return true
		}
	}
	return false
}

func hasDescendant(n *html.Node, set map[string]bool) bool {
	return dom.FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && set[c.Data]
	}) != nil
}

// isBlank reports whether an element renders nothing: it holds only
// whitespace and nothing that means something while empty.
func isBlank(n *html.Node) bool {
	return !isVoid(n) &&
		!meaningfulWhenBlankTags[n.Data] &&
		strings.TrimFunc(dom.TextContent(n), unicode.IsSpace) == "" &&
		!hasDescendant(n, voidTags) &&
		!hasDescendant(n, meaningfulWhenBlankTags)
}

// flanking is the whitespace moved outside an inline element's markers.
type flanking struct {
	leading, trailing string
}

func isASCIISpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func flankingWhitespace(n *html.Node) flanking {
	if isBlock(n) {
		return flanking{}
	}
	text := dom.TextContent(n)

	leadingASCII := text[:len(text)-len(strings.TrimLeftFunc(text, isASCIISpace))]
	rest := text[len(leadingASCII):]
	leadingOther := rest[:len(rest)-len(strings.TrimLeftFunc(rest, unicode.IsSpace))]
	leading := leadingASCII + leadingOther

	var trailing, trailingASCII, trailingOther string
	if len(leading) < len(text) {
		body := text[len(leading):]
		trailing = body[len(strings.TrimRightFunc(body, unicode.IsSpace)):]
		trailingASCII = trailing[len(strings.TrimRightFunc(trailing, isASCIISpace)):]
		trailingOther = trailing[:len(trailing)-len(trailingASCII)]
	}

	if leadingASCII != "" && flankedLeft(n) {
		leading = leadingOther
	}
	if trailingASCII != "" && flankedRight(n) {
		trailing = trailingOther
	}
	return flanking{leading: leading, trailing: trailing}
}

func flankedLeft(n *html.Node) bool {
	s, ok := siblingText(n.PrevSibling)
	return ok && strings.HasSuffix(s, " ")
}

func flankedRight(n *html.Node) bool {
	s, ok := siblingText(n.NextSibling)
	return ok && strings.HasPrefix(s, " ")
}

func siblingText(s *html.Node) (string, bool) {
	switch {
	case s == nil:
		return "", false
	case s.Type == html.TextNode:
		return s.Data, true
	case s.Type == html.ElementNode && !isBlock(s):
		return dom.TextContent(s), true
	}
	return "", false
}
