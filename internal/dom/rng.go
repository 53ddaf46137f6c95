package dom

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

var (
	ErrInvalidBoundary = errors.New("invalid boundary point")
	ErrDetached        = errors.New("node is not attached to a parent")
)

// CompareBoundary orders two boundary points: -1 if a is before b, 0 if equal,
// 1 if a is after b.
func CompareBoundary(a, b Position) (int, error) {
	if a.Node == nil || b.Node == nil {
		return 0, ErrInvalidBoundary
	}
	if a.Node == b.Node {
		switch {
		case a.Offset < b.Offset:
			return -1, nil
		case a.Offset > b.Offset:
			return 1, nil
		}
		return 0, nil
	}
	order, ok := Order(a.Node, b.Node)
	if !ok {
		return 0, fmt.Errorf("%w: nodes belong to different trees", ErrInvalidBoundary)
	}
	if order > 0 {
		c, err := CompareBoundary(b, a)
		return -c, err
	}
	if Contains(a.Node, b.Node) {
		child := b.Node
		for child.Parent != a.Node {
			child = child.Parent
		}
		if ChildIndex(child) < a.Offset {
			return 1, nil
		}
	}
	return -1, nil
}

// Range is a static selection between two boundary points. It is not live:
// mutating the tree does not adjust its offsets.
type Range struct {
	Start Position
	End   Position
}

// NewRange validates both boundary points and returns the range between them.
func NewRange(start, end Position) (Range, error) {
	for _, p := range []Position{start, end} {
		if p.Node == nil {
			return Range{}, fmt.Errorf("%w: missing container", ErrInvalidBoundary)
		}
		if p.Node.Type == html.DoctypeNode {
			return Range{}, fmt.Errorf("%w: doctype container", ErrInvalidBoundary)
		}
		if p.Offset < 0 || p.Offset > Len(p.Node) {
			return Range{}, fmt.Errorf("%w: offset %d out of bounds", ErrInvalidBoundary, p.Offset)
		}
	}
	c, err := CompareBoundary(start, end)
	if err != nil {
		return Range{}, err
	}
	if c > 0 {
		return Range{}, fmt.Errorf("%w: start is after end", ErrInvalidBoundary)
	}
	return Range{Start: start, End: end}, nil
}

// Collapsed reports whether the range is empty.
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// CommonAncestor returns the deepest node containing both containers.
func (r Range) CommonAncestor() *html.Node {
	return CommonAncestor(r.Start.Node, r.End.Node)
}

// IntersectsNode reports whether any part of n lies inside the range.
func (r Range) IntersectsNode(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return Root(r.Start.Node) == n
	}
	idx := ChildIndex(n)
	before, err := CompareBoundary(Position{parent, idx}, r.End)
	if err != nil || before >= 0 {
		return false
	}
	after, err := CompareBoundary(Position{parent, idx + 1}, r.Start)
	return err == nil && after > 0
}

// Span is the node-local part of a range inside one text node.
type Span struct {
	Node       *html.Node
	Start, End int
}

// TextSpans decomposes the range into per-text-node spans in document order.
// Empty spans are dropped. The walk stops after limit intersected text nodes
// when limit is positive; truncated reports whether that happened.
func (r Range) TextSpans(limit int) (spans []Span, truncated bool) {
	root := r.CommonAncestor()
	if root == nil {
		return nil, false
	}
	count := 0
	for _, n := range TextNodes(root) {
		if !r.IntersectsNode(n) {
			continue
		}
		count++
		if limit > 0 && count > limit {
			return spans, true
		}
		start, end := 0, Len(n)
		if n == r.Start.Node {
			start = r.Start.Offset
		}
		if n == r.End.Node {
			end = r.End.Offset
		}
		if start < end {
			spans = append(spans, Span{Node: n, Start: start, End: end})
		}
		if n == r.End.Node {
			break
		}
	}
	return spans, false
}
