package navigate

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

var (
	// Optional rest of a word, the gap after it, and the first rune of the next.
	nextWordRe = regexp.MustCompile(`[^\s\p{Z}]*[\s\p{Z}]+[^\s\p{Z}]`)
	prevWordRe = regexp.MustCompile(`[^\s\p{Z}]+[\s\p{Z}]*$`)
	nonSpaceRe = regexp.MustCompile(`[^\s\p{Z}]`)
)

func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r)
}

// byteOffset converts a rune offset into s to a byte offset, clamped to len(s).
func byteOffset(s string, runes int) int {
	i := 0
	for b := range s {
		if i == runes {
			return b
		}
		i++
	}
	return len(s)
}

func lastIndex(n *html.Node) int {
	if l := dom.Len(n); l > 0 {
		return l - 1
	}
	return 0
}

func (n *Navigator) moveChar(dir int) {
	cur := n.cursor
	if !dom.IsText(cur.Node) {
		nodes := VisibleTextNodesIn(cur.Node)
		if len(nodes) == 0 {
			return
		}
		first := nodes[0]
		off := 0
		if dir < 0 {
			off = lastIndex(first)
		}
		n.cursor = dom.Position{Node: first, Offset: off}
		return
	}

	off := cur.Offset + dir
	switch {
	case off < 0:
		if prev := PrevVisibleTextNode(cur.Node); prev != nil {
			n.cursor = dom.Position{Node: prev, Offset: lastIndex(prev)}
		} else {
			n.cursor.Offset = 0
		}
	case off > lastIndex(cur.Node):
		if next := NextVisibleTextNode(cur.Node); next != nil {
			n.cursor = dom.Position{Node: next, Offset: 0}
		} else {
			n.cursor.Offset = lastIndex(cur.Node)
		}
	default:
		n.cursor.Offset = off
	}
}

func (n *Navigator) moveWordForward() {
	if p, ok := findNextWord(n.cursor); ok {
		n.cursor = p
	}
}

func (n *Navigator) moveWordBackward() {
	if p, ok := findPrevWord(n.cursor); ok {
		n.cursor = p
	}
}

// firstWordStart returns the first non-space rune of visible text node t.
func firstWordStart(t *html.Node) dom.Position {
	off := 0
	if loc := nonSpaceRe.FindStringIndex(t.Data); loc != nil {
		off = utf8.RuneCountInString(t.Data[:loc[0]])
	}
	return dom.Position{Node: t, Offset: off}
}

// findNextWord finds the start of the word after p. Within a node the next
// word begins after the first whitespace gap; once the node is exhausted the
// search continues at the first word of the next visible text node.
func findNextWord(p dom.Position) (dom.Position, bool) {
	if !dom.IsText(p.Node) {
		nodes := VisibleTextNodesIn(p.Node)
		if len(nodes) == 0 {
			return dom.Position{}, false
		}
		return firstWordStart(nodes[0]), true
	}
	text := p.Node.Data
	start := byteOffset(text, p.Offset)
	rest := text[start:]
	if loc := nextWordRe.FindStringIndex(rest); loc != nil {
		return dom.Position{Node: p.Node, Offset: p.Offset + utf8.RuneCountInString(rest[:loc[1]]) - 1}, true
	}
	next := NextVisibleTextNode(p.Node)
	if next == nil {
		return dom.Position{}, false
	}
	return firstWordStart(next), true
}

// findPrevWord finds the start of the word before p, walking back through
// previous visible text nodes when the text before p holds none.
func findPrevWord(p dom.Position) (dom.Position, bool) {
	node, off := p.Node, p.Offset
	for node != nil {
		if dom.IsText(node) {
			before := node.Data[:byteOffset(node.Data, off)]
			if loc := prevWordRe.FindStringIndex(before); loc != nil {
				return dom.Position{Node: node, Offset: utf8.RuneCountInString(before[:loc[0]])}, true
			}
		}
		node = PrevVisibleTextNode(node)
		if node != nil {
			off = dom.Len(node)
		}
	}
	return dom.Position{}, false
}
