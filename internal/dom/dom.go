// Package dom wraps a parsed HTML snapshot of the chat page so extractor
// probes can query it the same way against the live page and against test
// fixtures. The page is treated as untrusted input: parsing never fails hard
// and queries on missing structure return nil.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Snapshot is a parsed, read-only view of the page at one instant.
type Snapshot struct {
	root *html.Node
}

// Node wraps a single element in a snapshot.
type Node struct {
	n *html.Node
}

// Parse builds a snapshot from raw HTML. x/net/html repairs malformed input,
// so this only fails on reader-level errors.
func Parse(src string) (*Snapshot, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return &Snapshot{root: root}, nil
}

// First returns the first element matching the selector, or nil.
func (s *Snapshot) First(selector string) *Node {
	if s == nil || s.root == nil {
		return nil
	}
	return first(s.root, parseSelector(selector))
}

// All returns every element matching the selector in document order.
func (s *Snapshot) All(selector string) []*Node {
	if s == nil || s.root == nil {
		return nil
	}
	return collect(s.root, parseSelector(selector), nil)
}

// First returns the first matching descendant of n, or nil.
func (n *Node) First(selector string) *Node {
	if n == nil {
		return nil
	}
	return first(n.n, parseSelector(selector))
}

// All returns every matching descendant of n in document order.
func (n *Node) All(selector string) []*Node {
	if n == nil {
		return nil
	}
	return collect(n.n, parseSelector(selector), nil)
}

// Tag returns the lowercase element name.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.n.Data
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether the class attribute contains c as a whole token.
func (n *Node) HasClass(c string) bool {
	if n == nil {
		return false
	}
	for _, token := range strings.Fields(n.Attr("class")) {
		if token == c {
			return true
		}
	}
	return false
}

// Text returns all descendant text, whitespace-normalized.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(h *html.Node) {
		if h.Type == html.TextNode {
			sb.WriteString(h.Data)
			sb.WriteString(" ")
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// DirectText returns the first non-empty text content that is an immediate
// child of n, skipping text nested inside child elements. Used for title
// extraction so nested decoration is not swallowed.
func (n *Node) DirectText() string {
	if n == nil {
		return ""
	}
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if t := strings.TrimSpace(c.Data); t != "" {
			return strings.Join(strings.Fields(t), " ")
		}
	}
	return ""
}

// Children returns the immediate element children of n.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Node{n: c})
		}
	}
	return out
}

// Parent returns the enclosing element, or nil at the document root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	for p := n.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &Node{n: p}
		}
	}
	return nil
}

func first(root *html.Node, sel selector) *Node {
	var found *Node
	visit(root, sel, func(n *Node) bool {
		found = n
		return false
	})
	return found
}

func collect(root *html.Node, sel selector, acc []*Node) []*Node {
	visit(root, sel, func(n *Node) bool {
		acc = append(acc, n)
		return true
	})
	return acc
}

// visit walks the tree in document order calling fn for every match.
// fn returns false to stop the walk.
func visit(root *html.Node, sel selector, fn func(*Node) bool) {
	if len(sel) == 0 {
		return
	}
	var walk func(h *html.Node) bool
	walk = func(h *html.Node) bool {
		if h.Type == html.ElementNode && matchesChain(h, sel) {
			if !fn(&Node{n: h}) {
				return false
			}
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// matchesChain checks the final simple selector against h and the preceding
// ones against h's ancestors (descendant combinator only).
func matchesChain(h *html.Node, sel selector) bool {
	if !matchesSimple(h, sel[len(sel)-1]) {
		return false
	}
	idx := len(sel) - 2
	for p := h.Parent; p != nil && idx >= 0; p = p.Parent {
		if p.Type == html.ElementNode && matchesSimple(p, sel[idx]) {
			idx--
		}
	}
	return idx < 0
}

func matchesSimple(h *html.Node, s simpleSelector) bool {
	if s.tag != "" && h.Data != s.tag {
		return false
	}
	if s.id != "" && attrOf(h, "id") != s.id {
		return false
	}
	for _, class := range s.classes {
		if !hasClassToken(h, class) {
			return false
		}
	}
	for _, am := range s.attrs {
		val := attrOf(h, am.name)
		switch am.op {
		case attrPresent:
			if !hasAttr(h, am.name) {
				return false
			}
		case attrEquals:
			if val != am.value {
				return false
			}
		case attrContains:
			if !strings.Contains(val, am.value) {
				return false
			}
		case attrPrefix:
			if !strings.HasPrefix(val, am.value) {
				return false
			}
		}
	}
	return true
}

func attrOf(h *html.Node, name string) string {
	for _, a := range h.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(h *html.Node, name string) bool {
	for _, a := range h.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func hasClassToken(h *html.Node, c string) bool {
	for _, token := range strings.Fields(attrOf(h, "class")) {
		if token == c {
			return true
		}
	}
	return false
}
