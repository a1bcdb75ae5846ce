package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	blockRe   = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n(.*)$`)
	scalarRe  = regexp.MustCompile(`^(\w+):\s*(.*)$`)
	itemRe    = regexp.MustCompile(`^\s+-\s+label:\s*(.*)$`)
	itemValRe = regexp.MustCompile(`^\s+value:\s*(.*)$`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
	breakRe   = regexp.MustCompile(`[ \t]*[\r\n]+[ \t]*`)
)

// Split separates the frontmatter block from the body. ok is false when text
// does not start with a delimited block.
func Split(text string) (block, body string, ok bool) {
	m := blockRe.FindStringSubmatch(text)
	if m == nil {
		return "", text, false
	}
	return m[1], m[2], true
}

// Decode parses the frontmatter block at the start of text and returns the
// record and the trimmed body. It never fails: text without a block yields a
// record holding only the reserved keys and the whole trimmed text as body.
func Decode(text string) (Record, string) {
	block, body, ok := Split(text)
	if !ok {
		return WithReserved(Record{}), strings.TrimSpace(text)
	}
	return WithReserved(decodeBlock(block)), strings.TrimSpace(body)
}

func decodeBlock(block string) Record {
	var (
		rec     Record
		listKey string
		list    []MetaItem
		open    bool
	)
	flush := func() {
		if open {
			rec.Set(listKey, list)
		}
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if open {
			if m := itemRe.FindStringSubmatch(line); m != nil {
				list = append(list, MetaItem{Label: unquote(m[1])})
				rec.Set(listKey, list)
				continue
			}
			if m := itemValRe.FindStringSubmatch(line); m != nil && len(list) > 0 {
				list[len(list)-1].Value = unquote(m[1])
				continue
			}
		}

		m := scalarRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		flush()
		key, raw := m[1], strings.TrimSpace(m[2])
		if raw == "" {
			listKey, list, open = key, []MetaItem{}, true
			rec.Set(key, list)
			continue
		}
		open = false
		rec.Set(key, scalar(unquote(raw)))
	}
	flush()
	return rec
}

// scalar converts an all-digit value to an int.
func scalar(s string) any {
	if digitsRe.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return s
}

// unquote strips one quote character from each end of s.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

// OneLine joins the lines of a string value with single spaces; the
// format has no multi-line scalars.
func OneLine(s string) string {
	return breakRe.ReplaceAllString(s, " ")
}

// Encode writes r in the frontmatter text format, keys in insertion order.
// The result starts and ends with a "---" line and has no trailing newline.
// Line breaks inside string values become spaces.
func Encode(r Record) string {
	lines := []string{"---"}
	for _, k := range r.keys {
		switch v := r.values[k].(type) {
		case []MetaItem:
			lines = append(lines, k+":")
			for _, item := range v {
				lines = append(lines,
					fmt.Sprintf(`  - label: "%s"`, OneLine(item.Label)),
					fmt.Sprintf(`    value: "%s"`, OneLine(item.Value)),
				)
			}
		case string:
			lines = append(lines, fmt.Sprintf(`%s: "%s"`, k, OneLine(v)))
		default:
			lines = append(lines, fmt.Sprintf("%s: %v", k, v))
		}
	}
	lines = append(lines, "---")
	return strings.Join(lines, "\n")
}
