package page

import (
	"time"
	"unicode/utf8"

	"github.com/dgallion1/docmark/internal/dom"
	"github.com/dgallion1/docmark/internal/navigate"
)

// HighlightInfo describes one committed highlight.
type HighlightInfo struct {
	Color   string `json:"color"`
	Text    string `json:"text"`
	Markers int    `json:"markers"`
}

// CursorInfo locates the virtual cursor.
type CursorInfo struct {
	TextOffset    int    `json:"text_offset"`
	NodeOffset    int    `json:"node_offset"`
	Parent        string `json:"parent"`
	InMainContent bool   `json:"in_main_content"`
	CurrentWord   string `json:"current_word"`
}

// Snapshot is a JSON-safe copy of a page's state.
type Snapshot struct {
	ID         string               `json:"page_id"`
	Meta       Meta                 `json:"meta"`
	CreatedAt  time.Time            `json:"created_at"`
	Enabled    bool                 `json:"enabled"`
	TextLength int                  `json:"text_length"`
	Lines      int                  `json:"lines"`
	Anchor     string               `json:"anchor,omitempty"`
	Highlights []HighlightInfo      `json:"highlights"`
	Cursor     *CursorInfo          `json:"cursor,omitempty"`
	Caret      *navigate.CaretState `json:"caret,omitempty"`
}

// Summary is the list view of a page.
type Summary struct {
	ID         string    `json:"page_id"`
	Meta       Meta      `json:"meta"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
	Enabled    bool      `json:"enabled"`
	Highlights int       `json:"highlights"`
}

// Snapshot returns the page state.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	body := dom.Body(p.doc)
	snap := Snapshot{
		ID:         p.ID,
		Meta:       p.Meta,
		CreatedAt:  p.CreatedAt,
		Enabled:    p.engine != nil,
		TextLength: utf8.RuneCountInString(dom.TextContent(body)),
		Lines:      p.layout().Lines(),
		Highlights: []HighlightInfo{},
	}
	if p.engine == nil {
		return snap
	}

	nav := p.engine.nav
	snap.Anchor = nav.Anchor().Data
	for _, r := range p.engine.highlighter.Records() {
		snap.Highlights = append(snap.Highlights, HighlightInfo{
			Color:   r.Color,
			Text:    r.Text(),
			Markers: len(r.Markers),
		})
	}
	if cur := nav.Cursor(); !cur.IsZero() {
		info := &CursorInfo{
			NodeOffset:    cur.Offset,
			InMainContent: nav.InMainContent(),
			CurrentWord:   nav.CurrentWord(),
		}
		if off, ok := dom.TextOffsetOf(body, cur); ok {
			info.TextOffset = off
		}
		if parent := dom.ParentElement(cur.Node); parent != nil {
			info.Parent = parent.Data
		}
		snap.Cursor = info
		caret := nav.Caret().State()
		snap.Caret = &caret
	}
	return snap
}

// Summary returns the list view of the page.
func (p *Page) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Summary{
		ID:        p.ID,
		Meta:      p.Meta,
		CreatedAt: p.CreatedAt,
		LastUsed:  p.lastUsed,
		Enabled:   p.engine != nil,
	}
	if p.engine != nil {
		s.Highlights = len(p.engine.highlighter.Records())
	}
	return s
}
