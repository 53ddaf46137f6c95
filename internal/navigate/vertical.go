package navigate

import (
	"math"

	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

const fallbackLineHeight = 20

// moveLine moves the cursor to the nearest position on the adjacent line,
// dir > 0 for down.
func (n *Navigator) moveLine(dir int) {
	p, ok := n.nearestVertically(dir)
	if !ok {
		return
	}
	n.updatePositionIfValid(p)
}

// nearestVertically probes a vertical scan line starting just outside the
// cursor's box and keeps the closest position that left the current node.
func (n *Navigator) nearestVertically(dir int) (dom.Position, bool) {
	cur := n.cursor
	if cur.Node == nil || dom.ParentElement(cur.Node) == nil {
		n.log.Debug("vertical move without a parent element")
		return dom.Position{}, false
	}
	rect, err := n.geo.RectOf(cur)
	if err != nil {
		n.log.Debug("vertical move: cursor not rendered", "error", err)
		return dom.Position{}, false
	}

	lineHeight := n.geo.LineHeight(dom.ParentElement(cur.Node))
	if lineHeight <= 0 {
		lineHeight = fallbackLineHeight
	}
	x := rect.Left
	y := rect.Bottom() + 1
	if dir < 0 {
		y = rect.Top - 1
	}

	var best dom.Position
	bestDist := math.Inf(1)
	found := false
	for i := 0; float64(i) < lineHeight*1.5; i++ {
		probe := y + float64(i)
		if dir < 0 {
			probe = y - float64(i)
		}
		if p, ok := n.geo.PositionAtPoint(x, probe); ok && p.Node != cur.Node {
			r, err := n.geo.RectOf(p)
			if err != nil {
				n.log.Debug("vertical move: candidate not rendered", "error", err)
				continue
			}
			if d := math.Abs(r.Top - rect.Top); d < bestDist {
				best, bestDist, found = p, d, true
			}
		}
		if found && float64(i) > lineHeight {
			break
		}
	}
	return best, found
}

// updatePositionIfValid walks p forward to a text node and accepts it only
// when its parent element is content.
func (n *Navigator) updatePositionIfValid(p dom.Position) {
	node, off := p.Node, p.Offset
	for node != nil && !dom.IsText(node) {
		node = NextContentNode(node)
	}
	if node == nil {
		n.log.Debug("vertical move: no text node after candidate")
		return
	}
	parent := dom.ParentElement(node)
	if parent == nil || !IsContentNode(parent) {
		n.log.Debug("vertical move rejected", "parent", tagOf(parent))
		return
	}
	if node != p.Node {
		off = 0
	}
	if l := dom.Len(node); off > l {
		off = l
	}
	n.cursor = dom.Position{Node: node, Offset: off}
}

// moveLineEdge moves to the first (end false) or last position on the
// cursor's line.
func (n *Navigator) moveLineEdge(end bool) {
	rect, err := n.geo.RectOf(n.cursor)
	if err != nil {
		n.log.Debug("line edge: cursor not rendered", "error", err)
		return
	}
	x := 0.0
	if end {
		x = n.geo.ViewportWidth() - 1
	}
	if p, ok := n.geo.PositionAtPoint(x, rect.Top+rect.Height/2); ok {
		n.cursor = p
	}
}

func tagOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	return n.Data
}
