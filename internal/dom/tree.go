// Package dom provides the tree primitives the highlight and navigation
// engines need on top of golang.org/x/net/html: boundary points, ranges,
// document-order traversal, text splicing and computed visibility.
package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Position is a boundary point. Offset counts runes when Node is a text node
// and children otherwise.
type Position struct {
	Node   *html.Node
	Offset int
}

// IsZero reports whether p refers to no node.
func (p Position) IsZero() bool { return p.Node == nil }

func IsText(n *html.Node) bool    { return n != nil && n.Type == html.TextNode }
func IsElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }

// Len returns the DOM length of n: runes for character data, children otherwise.
func Len(n *html.Node) int {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return utf8.RuneCountInString(n.Data)
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Substring returns runes [start, end) of s, clamped to its bounds.
func Substring(s string, start, end int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

// TextContent concatenates the data of every text node under n, n included.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// InnerHTML serialises the children of n.
func InnerHTML(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// Attr returns the value of attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets attribute key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Root returns the topmost ancestor of n.
func Root(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Contains reports whether other is n or one of its descendants.
func Contains(n, other *html.Node) bool {
	for c := other; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}
	return false
}

// ChildIndex returns the index of n among its siblings.
func ChildIndex(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

// Child returns the i-th child of n, or nil.
func Child(n *html.Node, i int) *html.Node {
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// ParentElement returns the closest element ancestor of n.
func ParentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// ancestry returns the path from the root down to n, inclusive.
func ancestry(n *html.Node) []*html.Node {
	var path []*html.Node
	for c := n; c != nil; c = c.Parent {
		path = append(path, c)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Order compares a and b in tree order: -1 if a precedes b, 1 if it follows,
// 0 if they are the same node. ok is false when they live in different trees.
func Order(a, b *html.Node) (cmp int, ok bool) {
	if a == b {
		return 0, true
	}
	pa, pb := ancestry(a), ancestry(b)
	if pa[0] != pb[0] {
		return 0, false
	}
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	switch {
	case i == len(pa):
		return -1, true // a is an ancestor of b
	case i == len(pb):
		return 1, true
	}
	for c := pa[i].NextSibling; c != nil; c = c.NextSibling {
		if c == pb[i] {
			return -1, true
		}
	}
	return 1, true
}

// CommonAncestor returns the deepest node containing both a and b.
func CommonAncestor(a, b *html.Node) *html.Node {
	for c := a; c != nil; c = c.Parent {
		if Contains(c, b) {
			return c
		}
	}
	return nil
}
