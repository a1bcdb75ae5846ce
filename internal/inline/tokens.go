package inline

import (
	"html"
	"regexp"
	"strings"
)

// Kind identifies a span produced by Tokenize.
type Kind int

const (
	Text Kind = iota
	Bold
	Italic
	Link
	Code
)

// Span is one piece of tokenized inline markdown.
type Span struct {
	Kind Kind
	Text string
	Href string // Link only
}

// External reports whether a link span points off-site.
func (s Span) External() bool {
	return s.Kind == Link && strings.HasPrefix(s.Href, "http")
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Ordered by priority for matches starting at the same offset.
var patterns = []pattern{
	{Bold, regexp.MustCompile(`\*\*(.+?)\*\*`)},
	{Italic, regexp.MustCompile(`\*([^*]+?)\*`)},
	{Link, regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)},
	{Code, regexp.MustCompile("`(.+?)`")},
}

// Tokenize splits inline markdown into spans. At each step the earliest
// match of any pattern wins; text between matches becomes Text spans.
// Nesting is not supported: the inner text of a span is literal.
func Tokenize(s string) []Span {
	var out []Span
	for s != "" {
		var (
			best  []int
			bestK Kind
		)
		for _, p := range patterns {
			m := p.re.FindStringSubmatchIndex(s)
			if m == nil {
				continue
			}
			if best == nil || m[0] < best[0] {
				best, bestK = m, p.kind
			}
		}
		if best == nil {
			out = append(out, Span{Kind: Text, Text: s})
			break
		}
		if best[0] > 0 {
			out = append(out, Span{Kind: Text, Text: s[:best[0]]})
		}
		sp := Span{Kind: bestK, Text: s[best[2]:best[3]]}
		if bestK == Link {
			sp.Href = s[best[4]:best[5]]
		}
		out = append(out, sp)
		s = s[best[1]:]
	}
	return out
}

// RenderHTML writes spans as escaped HTML. External links open in a new tab.
func RenderHTML(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		text := html.EscapeString(sp.Text)
		switch sp.Kind {
		case Bold:
			sb.WriteString("<strong>" + text + "</strong>")
		case Italic:
			sb.WriteString("<em>" + text + "</em>")
		case Code:
			sb.WriteString("<code>" + text + "</code>")
		case Link:
			sb.WriteString(`<a href="` + html.EscapeString(sp.Href) + `"`)
			if sp.External() {
				sb.WriteString(` target="_blank" rel="noopener noreferrer"`)
			}
			sb.WriteString(">" + text + "</a>")
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// HTML tokenizes s and renders it.
func HTML(s string) string {
	return RenderHTML(Tokenize(s))
}
