// Package semantic turns a markdown body into a typed block tree.
//
// Parsing is two-stage: goldmark renders the markdown to HTML, then the HTML
// is parsed into a DOM and interpreted element by element. CommonMark edge
// cases stay with the renderer; this package only assigns meaning.
package semantic

import (
	"regexp"
	"strings"
)

// Kind is the type of a Node.
type Kind string

const (
	KindHeading    Kind = "heading"
	KindParagraph  Kind = "paragraph"
	KindList       Kind = "list"
	KindImage      Kind = "image"
	KindBlockquote Kind = "blockquote"
	KindCode       Kind = "code"
	KindRule       Kind = "rule"
	KindText       Kind = "text"
)

// Node is one block of parsed content. Which fields are set depends on Kind:
// headings carry Level, Text and inline Children; paragraphs Text and
// Children; lists Items and Ordered; images Src and Alt; blockquotes Text and
// block Children; code blocks Language and Code; text nodes Text.
type Node struct {
	Kind     Kind     `json:"type"`
	Level    int      `json:"level,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []Node   `json:"children,omitempty"`
	Items    []string `json:"items,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Src      string   `json:"src,omitempty"`
	Alt      string   `json:"alt,omitempty"`
	Language string   `json:"language,omitempty"`
	Code     string   `json:"code,omitempty"`
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// NodeText joins the text of n's children without a separator.
func NodeText(n Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// InlineText joins the text of n's children and collapses whitespace runs.
func InlineText(n Node) string {
	return spaceRunRe.ReplaceAllString(NodeText(n), " ")
}
