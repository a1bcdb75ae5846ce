package reconstruct

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/folio/internal/dom"
)

// collapse normalizes whitespace in the tree under root in place, the way a
// browser lays out inline text: runs become one space, spaces at block
// boundaries go away and text nodes left empty are removed. Comments are
// dropped. Content of <pre> is left alone.
func collapse(root *html.Node) {
	if root.FirstChild == nil || isPre(root) {
		return
	}

	var (
		prevText      *html.Node
		keepLeadingWs bool
		prev          *html.Node
	)
	node := nextNode(nil, root)
	for node != root {
		switch node.Type {
		case html.TextNode:
			text := dom.CollapseSpaces(node.Data)
			if (prevText == nil || strings.HasSuffix(prevText.Data, " ")) &&
				!keepLeadingWs && strings.HasPrefix(text, " ") {
				text = text[1:]
			}
			if text == "" {
				node = removeNode(node)
				continue
			}
			node.Data = text
			prevText = node
		case html.ElementNode:
			switch {
			case isBlock(node) || node.Data == "br":
				if prevText != nil {
					prevText.Data = strings.TrimSuffix(prevText.Data, " ")
				}
				prevText = nil
				keepLeadingWs = false
			case isVoid(node) || isPre(node):
				prevText = nil
				keepLeadingWs = true
			case prevText != nil:
				keepLeadingWs = false
			}
		default:
			node = removeNode(node)
			continue
		}

		next := nextNode(prev, node)
		prev = node
		node = next
	}

	if prevText != nil {
		prevText.Data = strings.TrimSuffix(prevText.Data, " ")
		if prevText.Data == "" {
			removeNode(prevText)
		}
	}
}

// removeNode detaches n and returns the node the walk continues from.
func removeNode(n *html.Node) *html.Node {
	next := n.NextSibling
	if next == nil {
		next = n.Parent
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return next
}

// nextNode steps a depth-first walk. Arriving from a child means the subtree
// is done; <pre> subtrees are skipped.
func nextNode(prev, cur *html.Node) *html.Node {
	if (prev != nil && prev.Parent == cur) || isPre(cur) {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
		return cur.Parent
	}
	if cur.FirstChild != nil {
		return cur.FirstChild
	}
	if cur.NextSibling != nil {
		return cur.NextSibling
	}
	return cur.Parent
}
