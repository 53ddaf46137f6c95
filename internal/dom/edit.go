package dom

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewText creates a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// NewElement creates a detached element with the given attributes.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// InsertAfter inserts nodes, in order, as the siblings immediately following ref.
func InsertAfter(ref *html.Node, nodes ...*html.Node) error {
	parent := ref.Parent
	if parent == nil {
		return ErrDetached
	}
	next := ref.NextSibling
	for _, n := range nodes {
		parent.InsertBefore(n, next)
	}
	return nil
}

// SplitText truncates n to its first offset runes and inserts the remainder
// as a new text node right after it. The new node is returned even when empty.
func SplitText(n *html.Node, offset int) (*html.Node, error) {
	if n.Type != html.TextNode {
		return nil, fmt.Errorf("split %v: not a text node", n.Type)
	}
	r := []rune(n.Data)
	if offset < 0 || offset > len(r) {
		return nil, fmt.Errorf("%w: split offset %d of %d", ErrInvalidBoundary, offset, len(r))
	}
	rest := NewText(string(r[offset:]))
	if err := InsertAfter(n, rest); err != nil {
		return nil, err
	}
	n.Data = string(r[:offset])
	return rest, nil
}

// WrapText moves runes [start, end) of text node n into wrapper, which must be
// a detached element. n keeps the prefix (possibly empty); the wrapper and,
// when non-empty, a new suffix text node follow it in that order.
func WrapText(n *html.Node, start, end int, wrapper *html.Node) error {
	if n.Type != html.TextNode {
		return fmt.Errorf("wrap %v: not a text node", n.Type)
	}
	if n.Parent == nil {
		return ErrDetached
	}
	r := []rune(n.Data)
	if start < 0 || end > len(r) || start >= end {
		return fmt.Errorf("%w: wrap span [%d,%d) of %d", ErrInvalidBoundary, start, end, len(r))
	}
	wrapper.AppendChild(NewText(string(r[start:end])))
	siblings := []*html.Node{wrapper}
	if end < len(r) {
		siblings = append(siblings, NewText(string(r[end:])))
	}
	if err := InsertAfter(n, siblings...); err != nil {
		return err
	}
	n.Data = string(r[:start])
	return nil
}

// ReplaceWithText swaps n for a text node holding its text content and
// returns the new node.
func ReplaceWithText(n *html.Node) (*html.Node, error) {
	parent := n.Parent
	if parent == nil {
		return nil, ErrDetached
	}
	text := NewText(TextContent(n))
	parent.InsertBefore(text, n)
	parent.RemoveChild(n)
	return text, nil
}
