// Package dom provides small helpers over golang.org/x/net/html trees shared by
// the markdown parser and the HTML reconstructor.
package dom

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var spaceRunRe = regexp.MustCompile(`[ \t\n\r]+`)

// CollapseSpaces replaces every run of ASCII whitespace (space, tab, CR, LF)
// with a single space. Leading and trailing spaces are kept.
//
// It is the one whitespace policy of the module: the inline parser applies it
// to re-parsed text nodes and the reconstructor applies it to the cloned DOM
// before conversion.
func CollapseSpaces(s string) string {
	return spaceRunRe.ReplaceAllString(s, " ")
}

// ParseFragment parses an HTML fragment in a <body> context and returns a
// detached container element holding the parsed nodes.
func ParseFragment(fragment string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// IsElement reports whether n is an element, optionally with one of the given
// tag names.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns the value of the named attribute and whether it exists.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute of n contains class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// TextContent concatenates the data of every descendant text node, like the
// DOM textContent property.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return sb.String()
}

// Children returns the direct child nodes of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns the direct element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// LastElementChild returns the last element child of n, or nil.
func LastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// PrevElementSibling returns the element directly before n, skipping
// whitespace-only text and comments. Any other text in between yields nil.
func PrevElementSibling(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		switch c.Type {
		case html.ElementNode:
			return c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		case html.CommentNode:
		default:
			return nil
		}
	}
	return nil
}

// FindAll returns every descendant of n (excluding n) matching pred, in
// document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// FindFirst returns the first descendant of n matching pred, or nil.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// ByTag returns a predicate matching elements with one of the given tag names.
func ByTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n, tags...) }
}

// ByClass returns a predicate matching elements carrying class, optionally
// restricted to a tag name.
func ByClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || (tag != "" && n.Data != tag) {
			return false
		}
		return HasClass(n, class)
	}
}

// Clone returns a deep copy of n detached from any parent.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// OuterHTML renders n including its own tag.
func OuterHTML(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
