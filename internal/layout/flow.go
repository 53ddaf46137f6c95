// Package layout is the rendering host for loaded documents: a monospace flow
// layout that assigns every rendered character a box on a line, and answers
// the caret geometry queries navigation needs.
package layout

import (
	"errors"
	"math"
	"unicode"

	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

// ErrNotRendered is returned for positions that produce no boxes.
var ErrNotRendered = errors.New("position is not rendered")

// Rect is a box in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Metrics are the fixed font and viewport dimensions, in pixels.
type Metrics struct {
	ViewportWidth float64
	CharWidth     float64
	LineHeight    float64
}

type glyph struct {
	line        int
	left, width float64
}

type glyphRef struct {
	node   *html.Node
	offset int
}

// Flow is a computed layout. It is only valid for the tree as it was when
// Compute ran.
type Flow struct {
	metrics          Metrics
	scrollX, scrollY float64
	glyphs           map[*html.Node][]glyph
	lines            [][]glyphRef
}

// Compute lays out the subtree under root.
func Compute(root *html.Node, m Metrics) *Flow {
	f := &Flow{
		metrics: m,
		glyphs:  make(map[*html.Node][]glyph),
	}
	f.place(collect(root))
	return f
}

type breakKind int

const (
	noBreak breakKind = iota
	softBreak
	hardBreak
)

type item struct {
	node   *html.Node
	offset int
	r      rune
	pre    bool
	brk    breakKind
}

func collect(root *html.Node) []item {
	var items []item
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if dom.Display(n) == "none" {
				return
			}
			if n.Data == "br" {
				items = append(items, item{brk: hardBreak})
				return
			}
			block := dom.IsBlock(n)
			if block {
				items = append(items, item{brk: softBreak})
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				items = append(items, item{brk: softBreak})
			}
		case html.TextNode:
			if !dom.Rendered(n) {
				return
			}
			pre := dom.PreservesWhitespace(n)
			for i, r := range []rune(n.Data) {
				items = append(items, item{node: n, offset: i, r: r, pre: pre})
			}
		case html.DocumentNode:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(root)
	return items
}

func (f *Flow) place(items []item) {
	cw, width := f.metrics.CharWidth, f.metrics.ViewportWidth
	x, line := 0.0, 0
	atStart, prevSpace := true, false

	newline := func() {
		line++
		x = 0
		atStart, prevSpace = true, false
	}
	emit := func(it item, w float64) {
		for len(f.lines) <= line {
			f.lines = append(f.lines, nil)
		}
		f.glyphs[it.node] = append(f.glyphs[it.node], glyph{line: line, left: x, width: w})
		f.lines[line] = append(f.lines[line], glyphRef{node: it.node, offset: it.offset})
		x += w
	}

	for i, it := range items {
		switch it.brk {
		case softBreak:
			if !atStart {
				newline()
			}
			continue
		case hardBreak:
			newline()
			continue
		}

		switch {
		case it.pre && it.r == '\n':
			emit(it, 0)
			newline()
		case it.pre:
			if !atStart && x+cw > width {
				newline()
			}
			emit(it, cw)
			atStart = false
		case unicode.IsSpace(it.r):
			// Collapsible whitespace: one visible space between words, none at
			// the start of a line or hanging past its end.
			if atStart || prevSpace || x+cw > width {
				emit(it, 0)
			} else {
				emit(it, cw)
			}
			prevSpace = true
		default:
			if !atStart && startsWord(items, i) && x+float64(wordLen(items, i))*cw > width {
				newline()
			}
			if !atStart && x+cw > width {
				newline()
			}
			emit(it, cw)
			atStart, prevSpace = false, false
		}
	}
}

func isSpace(it item) bool {
	return it.brk != noBreak || unicode.IsSpace(it.r)
}

func startsWord(items []item, i int) bool {
	return i == 0 || isSpace(items[i-1])
}

func wordLen(items []item, i int) int {
	n := 0
	for j := i; j < len(items) && !isSpace(items[j]); j++ {
		n++
	}
	return n
}

// Scroll sets the viewport scroll offset in document coordinates.
func (f *Flow) Scroll(x, y float64) {
	f.scrollX, f.scrollY = x, y
}

// ScrollOffset returns the current scroll offset.
func (f *Flow) ScrollOffset() (x, y float64) {
	return f.scrollX, f.scrollY
}

// Lines returns the number of line boxes.
func (f *Flow) Lines() int { return len(f.lines) }

// LineHeight returns the line height used for text under n.
func (f *Flow) LineHeight(*html.Node) float64 { return f.metrics.LineHeight }

// ViewportWidth returns the viewport width in pixels.
func (f *Flow) ViewportWidth() float64 { return f.metrics.ViewportWidth }

// RectOf returns the zero-width caret box at p in viewport coordinates.
func (f *Flow) RectOf(p dom.Position) (Rect, error) {
	if p.Node == nil {
		return Rect{}, ErrNotRendered
	}
	if p.Node.Type != html.TextNode {
		return f.elementRect(p)
	}
	gs := f.glyphs[p.Node]
	if len(gs) == 0 {
		return Rect{}, ErrNotRendered
	}
	var left float64
	var line int
	switch {
	case p.Offset < 0:
		return Rect{}, ErrNotRendered
	case p.Offset < len(gs):
		left, line = gs[p.Offset].left, gs[p.Offset].line
	default:
		last := gs[len(gs)-1]
		left, line = last.left+last.width, last.line
	}
	return f.caret(left, line), nil
}

// elementRect resolves a boundary point inside an element to the first
// rendered text at or after it, falling back to the end of the last rendered
// text before it.
func (f *Flow) elementRect(p dom.Position) (Rect, error) {
	var after, before *html.Node
	idx := 0
	for c := p.Node.FirstChild; c != nil; c = c.NextSibling {
		for _, t := range dom.TextNodes(c) {
			if len(f.glyphs[t]) == 0 {
				continue
			}
			if idx >= p.Offset {
				after = t
				break
			}
			before = t
		}
		if after != nil {
			break
		}
		idx++
	}
	switch {
	case after != nil:
		return f.RectOf(dom.Position{Node: after, Offset: 0})
	case before != nil:
		return f.RectOf(dom.Position{Node: before, Offset: len(f.glyphs[before])})
	}
	return Rect{}, ErrNotRendered
}

func (f *Flow) caret(left float64, line int) Rect {
	return Rect{
		Left:   left - f.scrollX,
		Top:    float64(line)*f.metrics.LineHeight - f.scrollY,
		Width:  0,
		Height: f.metrics.LineHeight,
	}
}

// PositionAtPoint returns the caret position under viewport point (x, y).
// Points left of a line's text resolve to its start and points right of it to
// its end. ok is false when no line box lies at y.
func (f *Flow) PositionAtPoint(x, y float64) (dom.Position, bool) {
	docX, docY := x+f.scrollX, y+f.scrollY
	if docY < 0 || f.metrics.LineHeight <= 0 {
		return dom.Position{}, false
	}
	line := int(math.Floor(docY / f.metrics.LineHeight))
	if line >= len(f.lines) || len(f.lines[line]) == 0 {
		return dom.Position{}, false
	}
	refs := f.lines[line]
	for _, ref := range refs {
		g := f.glyphs[ref.node][ref.offset]
		if g.width > 0 && docX >= g.left && docX < g.left+g.width {
			return dom.Position{Node: ref.node, Offset: ref.offset}, true
		}
	}
	first := refs[0]
	if docX < f.glyphs[first.node][first.offset].left {
		return dom.Position{Node: first.node, Offset: first.offset}, true
	}
	last := refs[len(refs)-1]
	return dom.Position{Node: last.node, Offset: last.offset + 1}, true
}
