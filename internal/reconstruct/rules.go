package reconstruct

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
)

// ErrInvalidFilter is returned when a rule filter is not a tag name, a list
// of tag names or a FilterFunc.
var ErrInvalidFilter = errors.New("reconstruct: filter must be a string, []string or FilterFunc")

// FilterFunc selects the elements a rule applies to.
type FilterFunc func(n *html.Node, opts Options) bool

// ReplacementFunc returns the markdown for an element given the markdown of
// its content.
type ReplacementFunc func(content string, n *html.Node, p *Pass) string

// Rule converts the elements its Filter matches. Filter is a tag name, a
// []string of tag names or a FilterFunc. Append, when set, contributes text
// after the whole document has been converted.
type Rule struct {
	Filter      any
	Replacement ReplacementFunc
	Append      func(p *Pass) string
}

type compiledRule struct {
	name  string
	match FilterFunc
	rule  Rule
}

func compileFilter(filter any) (FilterFunc, error) {
	switch f := filter.(type) {
	case string:
		tag := strings.ToLower(f)
		return func(n *html.Node, _ Options) bool { return n.Data == tag }, nil
	case []string:
		tags := make([]string, len(f))
		for i, t := range f {
			tags[i] = strings.ToLower(t)
		}
		return func(n *html.Node, _ Options) bool { return dom.IsElement(n, tags...) }, nil
	case FilterFunc:
		if f == nil {
			break
		}
		return f, nil
	case func(*html.Node, Options) bool:
		if f == nil {
			break
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrInvalidFilter, filter)
}

// Pass is the state of one conversion. Rules read options from it and
// reference links collect their definitions in it.
type Pass struct {
	Options    Options
	references []string
}

// AddReference records a link reference definition and returns how many
// have been recorded so far.
func (p *Pass) AddReference(def string) int {
	p.references = append(p.references, def)
	return len(p.references)
}

// References returns the recorded link reference definitions.
func (p *Pass) References() []string {
	return p.references
}

var (
	fencedLangRe  = regexp.MustCompile(`language-(\S+)`)
	linkParenRe   = regexp.MustCompile(`([()])`)
	attrNewlineRe = regexp.MustCompile(`(\n+\s*)+`)
	codeSpaceRe   = regexp.MustCompile(`^` + "`" + `|^ .*?[^ ].* $|` + "`" + `$`)
	backtickRunRe = regexp.MustCompile("`+")
	codeNewlineRe = regexp.MustCompile(`\r?\n|\r`)
	// closingHashRe matches a trailing run of # that an ATX heading would
	// read as its closing sequence.
	closingHashRe = regexp.MustCompile(`(^|[ \t])(#+[ \t]*)$`)
)

func cleanAttribute(s string) string {
	return attrNewlineRe.ReplaceAllString(s, "\n")
}

func trimNewlines(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "\n"), "\n")
}

func hrefFilter(style string) FilterFunc {
	return func(n *html.Node, opts Options) bool {
		return opts.LinkStyle == style && n.Data == "a" && dom.Attr(n, "href") != ""
	}
}

func codeBlockFilter(style string) FilterFunc {
	return func(n *html.Node, opts Options) bool {
		return opts.CodeBlockStyle == style && n.Data == "pre" &&
			n.FirstChild != nil && dom.IsElement(n.FirstChild, "code")
	}
}

// builtinRules lists the standard rules in lookup order.
func builtinRules() []compiledRule {
	defs := []struct {
		name string
		rule Rule
	}{
		{"paragraph", Rule{
			Filter: "p",
			Replacement: func(content string, _ *html.Node, _ *Pass) string {
				return "\n\n" + content + "\n\n"
			},
		}},
		{"lineBreak", Rule{
			Filter: "br",
			Replacement: func(_ string, _ *html.Node, p *Pass) string {
				return p.Options.BR + "\n"
			},
		}},
		{"heading", Rule{
			Filter:      []string{"h1", "h2", "h3", "h4", "h5", "h6"},
			Replacement: heading,
		}},
		{"blockquote", Rule{
			Filter: "blockquote",
			Replacement: func(content string, _ *html.Node, _ *Pass) string {
				lines := strings.Split(trimNewlines(content), "\n")
				for i := range lines {
					lines[i] = "> " + lines[i]
				}
				return "\n\n" + strings.Join(lines, "\n") + "\n\n"
			},
		}},
		{"list", Rule{
			Filter: []string{"ul", "ol"},
			Replacement: func(content string, n *html.Node, _ *Pass) string {
				if dom.IsElement(n.Parent, "li") && dom.LastElementChild(n.Parent) == n {
					return "\n" + content
				}
				return "\n\n" + content + "\n\n"
			},
		}},
		{"listItem", Rule{Filter: "li", Replacement: listItem}},
		{"indentedCodeBlock", Rule{
			Filter: codeBlockFilter(CodeIndented),
			Replacement: func(_ string, n *html.Node, _ *Pass) string {
				code := dom.TextContent(n.FirstChild)
				return "\n\n    " + strings.ReplaceAll(code, "\n", "\n    ") + "\n\n"
			},
		}},
		{"fencedCodeBlock", Rule{Filter: codeBlockFilter(CodeFenced), Replacement: fencedCodeBlock}},
		{"horizontalRule", Rule{
			Filter: "hr",
			Replacement: func(_ string, _ *html.Node, p *Pass) string {
				return "\n\n" + p.Options.HR + "\n\n"
			},
		}},
		{"inlineLink", Rule{Filter: hrefFilter(LinkInlined), Replacement: inlineLink}},
		{"referenceLink", Rule{
			Filter:      hrefFilter(LinkReferenced),
			Replacement: referenceLink,
			Append: func(p *Pass) string {
				if len(p.references) == 0 {
					return ""
				}
				return "\n\n" + strings.Join(p.references, "\n") + "\n\n"
			},
		}},
		{"emphasis", Rule{
			Filter: []string{"em", "i"},
			Replacement: func(content string, _ *html.Node, p *Pass) string {
				if strings.TrimSpace(content) == "" {
					return ""
				}
				return p.Options.EmDelimiter + content + p.Options.EmDelimiter
			},
		}},
		{"strong", Rule{
			Filter: []string{"strong", "b"},
			Replacement: func(content string, _ *html.Node, p *Pass) string {
				if strings.TrimSpace(content) == "" {
					return ""
				}
				return p.Options.StrongDelimiter + content + p.Options.StrongDelimiter
			},
		}},
		{"code", Rule{
			Filter: FilterFunc(func(n *html.Node, _ Options) bool {
				hasSiblings := n.PrevSibling != nil || n.NextSibling != nil
				isCodeBlock := dom.IsElement(n.Parent, "pre") && !hasSiblings
				return n.Data == "code" && !isCodeBlock
			}),
			Replacement: inlineCode,
		}},
		{"image", Rule{Filter: "img", Replacement: image}},
	}

	out := make([]compiledRule, 0, len(defs))
	for _, d := range defs {
		match, err := compileFilter(d.rule.Filter)
		if err != nil {
			panic(fmt.Sprintf("reconstruct: builtin rule %s: %v", d.name, err))
		}
		out = append(out, compiledRule{name: d.name, match: match, rule: d.rule})
	}
	return out
}

func heading(content string, n *html.Node, p *Pass) string {
	level := int(n.Data[1] - '0')
	if p.Options.HeadingStyle == HeadingSetext && level < 3 {
		mark := "="
		if level == 2 {
			mark = "-"
		}
		return "\n\n" + content + "\n" + strings.Repeat(mark, len([]rune(content))) + "\n\n"
	}
	return "\n\n" + strings.Repeat("#", level) + " " + closingHashRe.ReplaceAllString(content, `$1\$2`) + "\n\n"
}

// followsSameList reports whether list comes right after a list of the
// same type, counting the whole run. Odd runs switch marker, otherwise
// the lists would merge when the markdown is read back.
func followsSameList(list *html.Node) bool {
	odd := false
	for prev := dom.PrevElementSibling(list); prev != nil && prev.Data == list.Data; prev = dom.PrevElementSibling(prev) {
		odd = !odd
	}
	return odd
}

func bulletMarker(list *html.Node, marker string) string {
	if list == nil || !followsSameList(list) {
		return marker
	}
	if marker == "-" {
		return "*"
	}
	return "-"
}

func orderedDelimiter(list *html.Node) string {
	if followsSameList(list) {
		return ")"
	}
	return "."
}

func listItem(content string, n *html.Node, p *Pass) string {
	prefix := bulletMarker(n.Parent, p.Options.BulletListMarker) + "   "
	if parent := n.Parent; dom.IsElement(parent, "ol") {
		index := 0
		for _, c := range dom.ElementChildren(parent) {
			if c == n {
				break
			}
			index++
		}
		num := index + 1
		if start := dom.Attr(parent, "start"); start != "" {
			if s, err := strconv.Atoi(strings.TrimSpace(start)); err == nil {
				num = s + index
			}
		}
		prefix = strconv.Itoa(num) + orderedDelimiter(parent) + "  "
	}

	trailingNewline := strings.HasSuffix(content, "\n")
	content = trimNewlines(content)
	if trailingNewline {
		content += "\n"
	}
	content = strings.ReplaceAll(content, "\n", "\n"+strings.Repeat(" ", len(prefix)))

	out := prefix + content
	if n.NextSibling != nil {
		out += "\n"
	}
	return out
}

func fencedCodeBlock(_ string, n *html.Node, p *Pass) string {
	code := n.FirstChild
	language := ""
	if m := fencedLangRe.FindStringSubmatch(dom.Attr(code, "class")); m != nil {
		language = m[1]
	}
	text := dom.TextContent(code)

	fenceChar := p.Options.Fence[:1]
	size := 3
	runRe := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(fenceChar) + `{3,}`)
	for _, m := range runRe.FindAllString(text, -1) {
		if len(m) >= size {
			size = len(m) + 1
		}
	}
	fence := strings.Repeat(fenceChar, size)

	return "\n\n" + fence + language + "\n" + strings.TrimSuffix(text, "\n") + "\n" + fence + "\n\n"
}

func inlineLink(content string, n *html.Node, _ *Pass) string {
	href := linkParenRe.ReplaceAllString(dom.Attr(n, "href"), `\$1`)
	title := cleanAttribute(dom.Attr(n, "title"))
	if title != "" {
		title = ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
	}
	return "[" + content + "](" + href + title + ")"
}

func referenceLink(content string, n *html.Node, p *Pass) string {
	href := dom.Attr(n, "href")
	title := cleanAttribute(dom.Attr(n, "title"))
	if title != "" {
		title = ` "` + title + `"`
	}
	switch p.Options.LinkReferenceStyle {
	case RefCollapsed:
		p.AddReference("[" + content + "]: " + href + title)
		return "[" + content + "][]"
	case RefShortcut:
		p.AddReference("[" + content + "]: " + href + title)
		return "[" + content + "]"
	default:
		id := strconv.Itoa(len(p.references) + 1)
		p.AddReference("[" + id + "]: " + href + title)
		return "[" + content + "][" + id + "]"
	}
}

func inlineCode(content string, _ *html.Node, _ *Pass) string {
	if content == "" {
		return ""
	}
	content = codeNewlineRe.ReplaceAllString(content, " ")

	extra := ""
	if codeSpaceRe.MatchString(content) {
		extra = " "
	}

	runs := map[string]bool{}
	for _, r := range backtickRunRe.FindAllString(content, -1) {
		runs[r] = true
	}
	delim := "`"
	for runs[delim] {
		delim += "`"
	}
	return delim + extra + content + extra + delim
}

func image(_ string, n *html.Node, _ *Pass) string {
	src := dom.Attr(n, "src")
	if src == "" {
		return ""
	}
	alt := cleanAttribute(dom.Attr(n, "alt"))
	title := cleanAttribute(dom.Attr(n, "title"))
	if title != "" {
		title = ` "` + title + `"`
	}
	return "![" + alt + "](" + src + title + ")"
}

// taskListItem renders a GFM task checkbox.
var taskListItem = Rule{
	Filter: FilterFunc(func(n *html.Node, _ Options) bool {
		return n.Data == "input" && dom.Attr(n, "type") == "checkbox" && dom.IsElement(n.Parent, "li")
	}),
	Replacement: func(_ string, n *html.Node, _ *Pass) string {
		box := "[ ]"
		if _, checked := dom.LookupAttr(n, "checked"); checked {
			box = "[x]"
		}
		if next := n.NextSibling; next != nil && next.Type == html.TextNode && strings.HasPrefix(next.Data, " ") {
			return box
		}
		return box + " "
	},
}

// strikethrough renders deleted text with GFM tildes.
var strikethrough = Rule{
	Filter: []string{"del", "s", "strike"},
	Replacement: func(content string, _ *html.Node, _ *Pass) string {
		return "~~" + content + "~~"
	},
}
