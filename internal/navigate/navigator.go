// Package navigate implements vim-style movement of a virtual cursor over the
// visible text of a document.
package navigate

import (
	"log/slog"

	"github.com/dgallion1/docmark/internal/dom"
	"github.com/dgallion1/docmark/internal/layout"
	"golang.org/x/net/html"
)

// Geometry is what the navigator needs from the rendering host. Results are
// only valid for the current layout.
type Geometry interface {
	RectOf(p dom.Position) (layout.Rect, error)
	PositionAtPoint(x, y float64) (dom.Position, bool)
	LineHeight(n *html.Node) float64
	ViewportWidth() float64
	ScrollOffset() (x, y float64)
}

// Navigator owns the cursor position and its caret. It is not safe for
// concurrent use; callers serialise commands.
type Navigator struct {
	root   *html.Node
	anchor *html.Node
	geo    Geometry
	cursor dom.Position
	caret  *Caret
	log    *slog.Logger
}

// New creates a navigator over the document rooted at root and chooses its
// main content anchor. The cursor starts unset.
func New(root *html.Node, geo Geometry, log *slog.Logger) *Navigator {
	return &Navigator{
		root:   root,
		anchor: MainContent(root),
		geo:    geo,
		caret:  NewCaret(),
		log:    log,
	}
}

// Anchor returns the main content element chosen at construction.
func (n *Navigator) Anchor() *html.Node { return n.anchor }

// Caret returns the cursor indicator.
func (n *Navigator) Caret() *Caret { return n.caret }

// Cursor returns the current position; IsZero until the first command.
func (n *Navigator) Cursor() dom.Position { return n.cursor }

// SetCursor moves the cursor to p and repositions the caret.
func (n *Navigator) SetCursor(p dom.Position) {
	n.cursor = p
	n.syncCaret()
}

// InMainContent reports whether the cursor lies inside the anchor.
func (n *Navigator) InMainContent() bool {
	return n.cursor.Node != nil && dom.Contains(n.anchor, n.cursor.Node)
}

// HandleKey runs the command bound to key and reports whether it was
// consumed. Keys aimed at text inputs, and unbound keys, are left alone.
func (n *Navigator) HandleKey(key, target string) bool {
	if target == "input" || target == "textarea" {
		return false
	}
	var cmd func()
	switch key {
	case "h":
		cmd = func() { n.moveChar(-1) }
	case "l":
		cmd = func() { n.moveChar(1) }
	case "j":
		cmd = func() { n.moveLine(1) }
	case "k":
		cmd = func() { n.moveLine(-1) }
	case "w":
		cmd = n.moveWordForward
	case "b":
		cmd = n.moveWordBackward
	case "0":
		cmd = func() { n.moveLineEdge(false) }
	case "$":
		cmd = func() { n.moveLineEdge(true) }
	default:
		return false
	}
	n.revalidate()
	cmd()
	n.syncCaret()
	return true
}

// revalidate puts the cursor back on solid ground: unset or detached cursors
// restart at the anchor, and offsets past a node shortened by a highlight are
// clamped.
func (n *Navigator) revalidate() {
	if n.cursor.Node == nil || !dom.Contains(n.root, n.cursor.Node) {
		n.cursor = dom.Position{Node: n.anchor, Offset: 0}
		return
	}
	if l := dom.Len(n.cursor.Node); n.cursor.Offset > l {
		n.cursor.Offset = l
	}
}

func (n *Navigator) syncCaret() {
	if n.cursor.Node == nil {
		return
	}
	r, err := n.geo.RectOf(n.cursor)
	if err != nil {
		n.log.Debug("caret not placed", "error", err)
		return
	}
	sx, sy := n.geo.ScrollOffset()
	n.caret.Place(r, sx, sy)
}

// CurrentWord returns the whitespace-delimited word under the cursor.
func (n *Navigator) CurrentWord() string {
	if !dom.IsText(n.cursor.Node) {
		return ""
	}
	text := []rune(n.cursor.Node.Data)
	start, end := n.cursor.Offset, n.cursor.Offset
	if start > len(text) {
		start, end = len(text), len(text)
	}
	for start > 0 && !isSpaceRune(text[start-1]) {
		start--
	}
	for end < len(text) && !isSpaceRune(text[end]) {
		end++
	}
	return string(text[start:end])
}
