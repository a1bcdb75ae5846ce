// Package highlight renders raw section markdown as highlighted HTML for the
// raw view.
package highlight

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/starford/folio/internal/frontmatter"
)

// DefaultStyle is used when Options.Style is empty.
const DefaultStyle = "monokai"

// Options controls highlighting.
type Options struct {
	Style       string
	LineNumbers bool
}

// Highlighter formats raw markdown. It is safe for concurrent use.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	yaml      chroma.Lexer
	markdown  chroma.Lexer
}

// New builds a highlighter. Unknown style names fall back to chroma's
// default style.
func New(opts Options) *Highlighter {
	name := opts.Style
	if name == "" {
		name = DefaultStyle
	}
	return &Highlighter{
		style: styles.Get(name),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.WithLineNumbers(opts.LineNumbers),
		),
		yaml:     lexer("yaml"),
		markdown: lexer("markdown"),
	}
}

func lexer(name string) chroma.Lexer {
	l := lexers.Get(name)
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// Raw highlights src. A leading frontmatter block is lexed as YAML and the
// rest as markdown; line numbers run across both.
func (h *Highlighter) Raw(src string) (string, error) {
	head, body := "", src
	if _, rest, ok := frontmatter.Split(src); ok {
		head, body = src[:len(src)-len(rest)], rest
	}

	var tokens []chroma.Token
	for _, part := range []struct {
		lexer chroma.Lexer
		text  string
	}{{h.yaml, head}, {h.markdown, body}} {
		if part.text == "" {
			continue
		}
		it, err := part.lexer.Tokenise(nil, part.text)
		if err != nil {
			return "", fmt.Errorf("highlight: tokenise: %w", err)
		}
		tokens = append(tokens, it.Tokens()...)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, chroma.Literator(tokens...)); err != nil {
		return "", fmt.Errorf("highlight: format: %w", err)
	}
	return buf.String(), nil
}

// CSS returns the stylesheet for the highlighter's classes.
func (h *Highlighter) CSS() (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("highlight: css: %w", err)
	}
	return buf.String(), nil
}

// StyleName returns the name of the style in use.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}
