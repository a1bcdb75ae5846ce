// Package inline converts inline markup between rendered HTML and markdown
// spans: bold, italic, code and links.
package inline

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
)

// Parse walks the children of n and returns its inline content as a sequence
// of fragments. Plain text is whitespace-collapsed but not trimmed, so
// neighbouring fragments keep their separating spaces. Formatting elements
// become markdown fragments ("**b**", "*i*", "`c`", "[t](href)"); <br>
// becomes a single space; any other element is descended into.
func Parse(n *html.Node) []string {
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendNode(out, c)
	}
	return out
}

// ParseHTML parses fragment as HTML and returns its inline fragments.
func ParseHTML(fragment string) ([]string, error) {
	root, err := dom.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return Parse(root), nil
}

func appendNode(out []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if s := dom.CollapseSpaces(n.Data); s != "" {
			out = append(out, s)
		}
		return out
	case html.ElementNode:
	default:
		return out
	}

	switch n.Data {
	case "strong", "b":
		if s := spanText(n); s != "" {
			out = append(out, "**"+s+"**")
		}
	case "em", "i":
		if s := spanText(n); s != "" {
			out = append(out, "*"+s+"*")
		}
	case "a":
		href := dom.Attr(n, "href")
		if s := spanText(n); s != "" && href != "" {
			out = append(out, "["+s+"]("+href+")")
		}
	case "code":
		if s := spanText(n); s != "" {
			out = append(out, "`"+s+"`")
		}
	case "br":
		out = append(out, " ")
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = appendNode(out, c)
		}
	}
	return out
}

// spanText is the collapsed and trimmed text of a formatting element.
func spanText(n *html.Node) string {
	return strings.TrimSpace(dom.CollapseSpaces(dom.TextContent(n)))
}

// ListItem re-linearizes a rendered list item into markdown-flavoured text.
// Direct links, bold, italic and code children are re-encoded; other elements
// are opened one level deep, where only bold and links are re-encoded and
// everything else contributes its text. An item without any usable content
// falls back to its trimmed text.
func ListItem(li *html.Node) string {
	var sb strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type != html.ElementNode:
		case dom.IsElement(c, "a"):
			writeLink(&sb, c)
		case dom.IsElement(c, "strong", "b"):
			writeWrapped(&sb, c, "**")
		case dom.IsElement(c, "em", "i"):
			writeWrapped(&sb, c, "*")
		case dom.IsElement(c, "code"):
			writeWrapped(&sb, c, "`")
		default:
			for g := c.FirstChild; g != nil; g = g.NextSibling {
				switch {
				case g.Type == html.TextNode:
					sb.WriteString(g.Data)
				case dom.IsElement(g, "strong", "b"):
					writeWrapped(&sb, g, "**")
				case dom.IsElement(g, "a"):
					writeLink(&sb, g)
				case g.Type == html.ElementNode:
					sb.WriteString(dom.TextContent(g))
				}
			}
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		return s
	}
	return strings.TrimSpace(dom.TextContent(li))
}

func writeWrapped(sb *strings.Builder, n *html.Node, marker string) {
	if s := strings.TrimSpace(dom.TextContent(n)); s != "" {
		sb.WriteString(marker + s + marker)
	}
}

func writeLink(sb *strings.Builder, n *html.Node) {
	text := strings.TrimSpace(dom.TextContent(n))
	href := dom.Attr(n, "href")
	if text != "" && href != "" {
		sb.WriteString("[" + text + "](" + href + ")")
	}
}
