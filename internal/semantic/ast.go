package semantic

import (
	"encoding/json"
	"strings"
)

// AST is the ordered list of top-level nodes of one markdown body.
type AST struct {
	Nodes []Node
}

// MarshalJSON encodes the AST as its node array.
func (a *AST) MarshalJSON() ([]byte, error) {
	if a.Nodes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Nodes)
}

// Filter narrows FindAll results.
type Filter func(*Node) bool

// Level matches headings of level n.
func Level(n int) Filter {
	return func(node *Node) bool { return node.Level == n }
}

// FindAll returns every node of kind k, depth first through Children.
// The returned pointers alias the tree.
func (a *AST) FindAll(k Kind, filters ...Filter) []*Node {
	var out []*Node
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for i := range nodes {
			n := &nodes[i]
			if n.Kind == k && matches(n, filters) {
				out = append(out, n)
			}
			walk(n.Children)
		}
	}
	walk(a.Nodes)
	return out
}

func matches(n *Node, filters []Filter) bool {
	for _, f := range filters {
		if !f(n) {
			return false
		}
	}
	return true
}

// FindFirst returns the first node FindAll would return, or nil.
func (a *AST) FindFirst(k Kind, filters ...Filter) *Node {
	if all := a.FindAll(k, filters...); len(all) > 0 {
		return all[0]
	}
	return nil
}

// Has reports whether any node of kind k passing filters exists.
func (a *AST) Has(k Kind, filters ...Filter) bool {
	return a.FindFirst(k, filters...) != nil
}

// SplitBy partitions the top-level nodes at every node of kind k. The
// separators are dropped and so are empty partitions.
func (a *AST) SplitBy(k Kind) []*AST {
	var (
		out []*AST
		cur []Node
	)
	for _, n := range a.Nodes {
		if n.Kind == k {
			if len(cur) > 0 {
				out = append(out, &AST{Nodes: cur})
			}
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	if len(cur) > 0 {
		out = append(out, &AST{Nodes: cur})
	}
	return out
}

// Text flattens the tree to text: one line per non-empty piece.
func (a *AST) Text() string {
	return strings.Join(collectText(a.Nodes), "\n")
}

func collectText(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		var s string
		switch {
		case n.Text != "":
			s = n.Text
		case len(n.Items) > 0:
			s = strings.Join(n.Items, "\n")
		case n.Code != "":
			s = n.Code
		case len(n.Children) > 0:
			s = strings.Join(collectText(n.Children), "\n")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
