package semantic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/markdown"
)

var languageRe = regexp.MustCompile(`language-(\w+)`)

// Option configures a Parser.
type Option func(*markdown.Options)

// WithHardWraps toggles rendering of soft line breaks as <br>. On by default.
func WithHardWraps(on bool) Option {
	return func(o *markdown.Options) { o.HardWraps = on }
}

// WithExtensions replaces the default GFM extension set.
func WithExtensions(exts ...goldmark.Extender) Option {
	return func(o *markdown.Options) { o.Extensions = exts }
}

// Parser converts markdown bodies into ASTs. It is safe for concurrent use.
type Parser struct {
	md *markdown.Renderer
}

// NewParser builds a parser.
func NewParser(opts ...Option) *Parser {
	o := markdown.Options{HardWraps: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{md: markdown.New(o)}
}

var defaultParser = NewParser()

// Parse parses src with the default parser.
func Parse(src string) (*AST, error) {
	return defaultParser.Parse(src)
}

// Parse renders src to HTML and interprets the result.
func (p *Parser) Parse(src string) (*AST, error) {
	rendered, err := p.md.Render(src)
	if err != nil {
		return nil, fmt.Errorf("semantic: render markdown: %w", err)
	}
	root, err := dom.ParseFragment(rendered)
	if err != nil {
		return nil, fmt.Errorf("semantic: parse html: %w", err)
	}
	return &AST{Nodes: Interpret(root)}, nil
}

// Interpret maps the children of root to nodes. Unknown elements are
// transparent: their children are interpreted in place.
func Interpret(root *html.Node) []Node {
	var out []Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		out = interpretNode(out, c)
	}
	return out
}

func interpretNode(out []Node, n *html.Node) []Node {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			out = append(out, Node{Kind: KindText, Text: s})
		}
		return out
	case html.ElementNode:
	default:
		return out
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return append(out, Node{
			Kind:     KindHeading,
			Level:    int(n.Data[1] - '0'),
			Text:     strings.TrimSpace(dom.TextContent(n)),
			Children: inlineChildren(n),
		})
	case "p":
		if img := soleImage(n); img != nil {
			return append(out, imageNode(img))
		}
		return append(out, Node{
			Kind:     KindParagraph,
			Text:     strings.TrimSpace(dom.TextContent(n)),
			Children: inlineChildren(n),
		})
	case "ul", "ol":
		var items []string
		for _, li := range dom.FindAll(n, dom.ByTag("li")) {
			items = append(items, inline.ListItem(li))
		}
		return append(out, Node{Kind: KindList, Items: items, Ordered: n.Data == "ol"})
	case "img":
		return append(out, imageNode(n))
	case "blockquote":
		return append(out, Node{
			Kind:     KindBlockquote,
			Text:     strings.TrimSpace(dom.TextContent(n)),
			Children: Interpret(n),
		})
	case "pre":
		code := dom.FindFirst(n, dom.ByTag("code"))
		if code == nil {
			return append(out, Interpret(n)...)
		}
		node := Node{Kind: KindCode, Code: dom.TextContent(code)}
		if m := languageRe.FindStringSubmatch(dom.Attr(code, "class")); m != nil {
			node.Language = m[1]
		}
		return append(out, node)
	case "code":
		return out
	case "hr":
		return append(out, Node{Kind: KindRule})
	default:
		return append(out, Interpret(n)...)
	}
}

// soleImage returns the img when it is the only child node of p.
func soleImage(p *html.Node) *html.Node {
	c := p.FirstChild
	if c != nil && c.NextSibling == nil && dom.IsElement(c, "img") {
		return c
	}
	return nil
}

func imageNode(img *html.Node) Node {
	return Node{Kind: KindImage, Src: dom.Attr(img, "src"), Alt: dom.Attr(img, "alt")}
}

func inlineChildren(n *html.Node) []Node {
	frags := inline.Parse(n)
	if len(frags) == 0 {
		return nil
	}
	out := make([]Node, len(frags))
	for i, f := range frags {
		out[i] = Node{Kind: KindText, Text: f}
	}
	return out
}
