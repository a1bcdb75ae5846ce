// Package reconstruct recovers markdown, frontmatter included, from rendered
// section markup.
//
// The Converter is a rule-based HTML to markdown engine. Elements are matched
// against registered rules (most recent first), then the built-in rules,
// then keep rules, then remove rules; anything left is emitted as its
// content. Conversions share no state.
package reconstruct

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
)

// Converter converts HTML trees to markdown. It is safe for concurrent use
// once all rules have been registered.
type Converter struct {
	opts   Options
	rules  []compiledRule
	keep   []FilterFunc
	remove []FilterFunc
}

// New returns a converter with the built-in rules. Empty option fields take
// their defaults.
func New(opts Options) *Converter {
	return &Converter{
		opts:  opts.withDefaults(),
		rules: builtinRules(),
	}
}

// NewSite returns the converter used for section content: SiteOptions plus
// the GFM strikethrough and task list rules.
func NewSite() *Converter {
	c := New(SiteOptions())
	c.MustAddRule("strikethrough", strikethrough)
	c.MustAddRule("taskListItem", taskListItem)
	return c
}

// Options returns the converter options.
func (c *Converter) Options() Options { return c.opts }

// AddRule registers r ahead of every rule registered before it.
func (c *Converter) AddRule(name string, r Rule) error {
	match, err := compileFilter(r.Filter)
	if err != nil {
		return fmt.Errorf("reconstruct: add rule %q: %w", name, err)
	}
	if r.Replacement == nil {
		r.Replacement = func(content string, _ *html.Node, _ *Pass) string { return content }
	}
	c.rules = append([]compiledRule{{name: name, match: match, rule: r}}, c.rules...)
	return nil
}

// MustAddRule is AddRule that panics on an invalid filter.
func (c *Converter) MustAddRule(name string, r Rule) {
	if err := c.AddRule(name, r); err != nil {
		panic(err)
	}
}

// Keep makes matching elements render as their HTML.
func (c *Converter) Keep(filter any) error {
	match, err := compileFilter(filter)
	if err != nil {
		return fmt.Errorf("reconstruct: keep: %w", err)
	}
	c.keep = append(c.keep, match)
	return nil
}

// Remove makes matching elements render as nothing.
func (c *Converter) Remove(filter any) error {
	match, err := compileFilter(filter)
	if err != nil {
		return fmt.Errorf("reconstruct: remove: %w", err)
	}
	c.remove = append(c.remove, match)
	return nil
}

// ConvertString parses fragment as HTML and converts it.
func (c *Converter) ConvertString(fragment string) (string, error) {
	root, err := dom.ParseFragment(fragment)
	if err != nil {
		return "", fmt.Errorf("reconstruct: parse html: %w", err)
	}
	return c.Convert(root), nil
}

// Convert returns the markdown for the children of n. n is not modified.
func (c *Converter) Convert(n *html.Node) string {
	root := dom.Clone(n)
	collapse(root)

	p := &Pass{Options: c.opts}
	out := c.process(root, p)
	for _, r := range c.rules {
		if r.rule.Append != nil {
			out = join(out, r.rule.Append(p))
		}
	}
	out = strings.TrimLeft(out, "\t\r\n")
	return strings.TrimRightFunc(out, unicode.IsSpace)
}

func (c *Converter) process(parent *html.Node, p *Pass) string {
	out := ""
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		var replacement string
		switch n.Type {
		case html.TextNode:
			if inCode(n) {
				replacement = n.Data
			} else {
				replacement = c.Escape(n.Data)
			}
		case html.ElementNode:
			replacement = c.replacementFor(n, p)
		}
		out = join(out, replacement)
	}
	return out
}

func (c *Converter) replacementFor(n *html.Node, p *Pass) string {
	replace := c.ruleFor(n)
	content := c.process(n, p)
	ws := flankingWhitespace(n)
	if ws.leading != "" || ws.trailing != "" {
		content = strings.TrimSpace(content)
	}
	return ws.leading + replace(content, n, p) + ws.trailing
}

func (c *Converter) ruleFor(n *html.Node) ReplacementFunc {
	if isBlank(n) {
		return blankReplacement
	}
	for _, r := range c.rules {
		if r.match(n, c.opts) {
			return r.rule.Replacement
		}
	}
	for _, match := range c.keep {
		if match(n, c.opts) {
			return keepReplacement
		}
	}
	for _, match := range c.remove {
		if match(n, c.opts) {
			return removeReplacement
		}
	}
	return defaultReplacement
}

func blankReplacement(_ string, n *html.Node, _ *Pass) string {
	if isBlock(n) {
		return "\n\n"
	}
	return ""
}

func keepReplacement(_ string, n *html.Node, _ *Pass) string {
	if isBlock(n) {
		return "\n\n" + dom.OuterHTML(n) + "\n\n"
	}
	return dom.OuterHTML(n)
}

func removeReplacement(string, *html.Node, *Pass) string { return "" }

func defaultReplacement(content string, n *html.Node, _ *Pass) string {
	if isBlock(n) {
		return "\n\n" + content + "\n\n"
	}
	return content
}

// join concatenates two outputs, keeping at most two newlines between them.
func join(a, b string) string {
	s1 := strings.TrimRight(a, "\n")
	s2 := strings.TrimLeft(b, "\n")
	nls := max(len(a)-len(s1), len(b)-len(s2))
	return s1 + "\n\n"[:min(nls, 2)] + s2
}

var escapes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\\`), `\\`},
	{regexp.MustCompile(`\*`), `\*`},
	{regexp.MustCompile(`^-`), `\-`},
	{regexp.MustCompile(`^\+ `), `\+ `},
	{regexp.MustCompile(`^(=+)`), `\$1`},
	{regexp.MustCompile(`^(#{1,6}) `), `\$1 `},
	{regexp.MustCompile("`"), "\\`"},
	{regexp.MustCompile(`^~~~`), `\~~~`},
	{regexp.MustCompile(`\[`), `\[`},
	{regexp.MustCompile(`\]`), `\]`},
	{regexp.MustCompile(`^>`), `\>`},
	{regexp.MustCompile(`_`), `\_`},
	{regexp.MustCompile(`<([A-Za-z/!?])`), `\<$1`},
	{regexp.MustCompile(`&(#?[A-Za-z0-9]+;)`), `\&$1`},
	{regexp.MustCompile(`^(\d+)\. `), `$1\. `},
}

// Escape backslash-escapes markdown syntax in text. Anchored patterns apply
// at the start of text only.
func (c *Converter) Escape(text string) string {
	for _, e := range escapes {
		text = e.re.ReplaceAllString(text, e.repl)
	}
	return text
}
