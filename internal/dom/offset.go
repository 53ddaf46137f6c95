package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// PositionAtTextOffset maps a rune offset into root's text content to a
// point inside a text node. On a node boundary the point opens the following
// node, unless preferEnd asks for the end of the preceding one.
func PositionAtTextOffset(root *html.Node, offset int, preferEnd bool) (Position, error) {
	if offset < 0 {
		return Position{}, fmt.Errorf("%w: negative text offset %d", ErrInvalidBoundary, offset)
	}
	var last *html.Node
	cum := 0
	for _, t := range TextNodes(root) {
		n := Len(t)
		if preferEnd && offset > cum && offset == cum+n {
			return Position{Node: t, Offset: n}, nil
		}
		if offset >= cum && offset < cum+n {
			return Position{Node: t, Offset: offset - cum}, nil
		}
		cum += n
		last = t
	}
	if last != nil && offset == cum {
		return Position{Node: last, Offset: Len(last)}, nil
	}
	return Position{}, fmt.Errorf("%w: text offset %d beyond length %d", ErrInvalidBoundary, offset, cum)
}

// TextOffsetOf is the inverse of PositionAtTextOffset. ok is false when p does
// not lie under root.
func TextOffsetOf(root *html.Node, p Position) (offset int, ok bool) {
	if p.Node == nil || !Contains(root, p.Node) {
		return 0, false
	}
	total := 0
	for _, t := range TextNodes(root) {
		if t == p.Node {
			return total + p.Offset, true
		}
		c, err := CompareBoundary(Position{Node: t, Offset: Len(t)}, p)
		if err != nil {
			return 0, false
		}
		if c > 0 {
			return total, true
		}
		total += Len(t)
	}
	return total, true
}
