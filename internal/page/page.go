// Package page hosts loaded documents as live sessions: the document tree,
// its layout, the current selection and input events, and the highlighting
// engine that a toggle switches on and off.
package page

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/dgallion1/docmark/internal/dom"
	"github.com/dgallion1/docmark/internal/layout"
	"github.com/dgallion1/docmark/internal/navigate"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Recorder observes engine activity. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Command(key string, handled bool, d time.Duration)
	Highlight(markers int)
}

type nopRecorder struct{}

func (nopRecorder) Command(string, bool, time.Duration) {}
func (nopRecorder) Highlight(int)                       {}

// Options configure the engines of a page.
type Options struct {
	Palette           []string
	MaxHighlightNodes int
	BlinkInterval     time.Duration
	Metrics           layout.Metrics
	Recorder          Recorder
}

// Meta describes where a page came from.
type Meta struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
}

// Page is one loaded document. All methods are safe for concurrent use and
// serialise on the page mutex.
type Page struct {
	ID        string
	Meta      Meta
	CreatedAt time.Time

	mu        sync.Mutex
	doc       *html.Node
	events    EventTarget
	selection dom.Range
	flow      *layout.Flow
	dirty     bool
	scrollX   float64
	scrollY   float64
	engine    *Engine
	lastUsed  time.Time

	opts Options
	rec  Recorder
	log  *slog.Logger
}

// New wraps doc in a page with a fresh id. Highlighting starts disabled.
func New(doc *html.Node, meta Meta, opts Options, log *slog.Logger) *Page {
	id := uuid.NewString()
	now := time.Now()
	p := &Page{
		ID:        id,
		Meta:      meta,
		CreatedAt: now,
		doc:       doc,
		dirty:     true,
		lastUsed:  now,
		opts:      opts,
		rec:       opts.Recorder,
		log:       log.With("page_id", id),
	}
	if p.rec == nil {
		p.rec = nopRecorder{}
	}
	return p
}

// Toggle switches highlighting and navigation on or off and returns the new
// state. Switching off clears every highlight and releases the engine.
func (p *Page) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	if p.engine != nil {
		removed := p.engine.highlighter.Clear()
		p.engine.Close()
		p.engine = nil
		p.invalidate()
		p.log.Info("highlighting disabled", "markers_removed", removed)
		return false
	}
	p.engine = newEngine(p)
	p.invalidate()
	p.log.Info("highlighting enabled")
	return true
}

// Clear removes every highlight. It is a no-op while disabled.
func (p *Page) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()
	if p.engine == nil {
		return 0
	}
	removed := p.engine.highlighter.Clear()
	if removed > 0 {
		p.invalidate()
	}
	return removed
}

// Enabled reports whether an engine is active.
func (p *Page) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine != nil
}

// Engine returns the active engine, or nil.
func (p *Page) Engine() *Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine
}

// Select replaces the selection with the text between two rune offsets into
// the body's text content. Reversed offsets select the same text.
func (p *Page) Select(start, end int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	if start > end {
		start, end = end, start
	}
	body := dom.Body(p.doc)
	s, err := dom.PositionAtTextOffset(body, start, false)
	if err != nil {
		return fmt.Errorf("selection start: %w", err)
	}
	e := s
	if end != start {
		if e, err = dom.PositionAtTextOffset(body, end, true); err != nil {
			return fmt.Errorf("selection end: %w", err)
		}
	}
	r, err := dom.NewRange(s, e)
	if err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	p.selection = r
	return nil
}

// Selection returns the current selection.
func (p *Page) Selection() dom.Range {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Dispatch delivers ev to the page's listeners and reports whether one of
// them consumed it.
func (p *Page) Dispatch(ev Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()
	p.events.Dispatch(&ev)
	return ev.DefaultPrevented()
}

// Scroll sets the viewport scroll offset.
func (p *Page) Scroll(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()
	p.scrollX, p.scrollY = x, y
	if p.flow != nil {
		p.flow.Scroll(x, y)
	}
}

// LastUsed returns when the page last received a command.
func (p *Page) LastUsed() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsed
}

// Listeners returns the number of attached event listeners.
func (p *Page) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events.Count()
}

// RenderHTML writes the document, markers included.
func (p *Page) RenderHTML(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.doc)
}

// Markdown converts the page's main content to Markdown.
func (p *Page) Markdown() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, err := htmltomarkdown.ConvertNode(navigate.MainContent(p.doc))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return string(out), nil
}

// Close releases the engine, if any. The document is left as it is.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine != nil {
		p.engine.Close()
		p.engine = nil
	}
}

// invalidate marks the layout stale after a tree mutation. Callers hold mu.
func (p *Page) invalidate() { p.dirty = true }

// layout returns the current layout, recomputing it when stale. Callers hold mu.
func (p *Page) layout() *layout.Flow {
	if p.flow == nil || p.dirty {
		p.flow = layout.Compute(p.doc, p.opts.Metrics)
		p.flow.Scroll(p.scrollX, p.scrollY)
		p.dirty = false
	}
	return p.flow
}

// host is the rendering host seen by the navigator. It is only used from
// engine commands, which run under the page mutex.
type host struct{ p *Page }

func (h host) RectOf(pos dom.Position) (layout.Rect, error) {
	return h.p.layout().RectOf(pos)
}

func (h host) PositionAtPoint(x, y float64) (dom.Position, bool) {
	return h.p.layout().PositionAtPoint(x, y)
}

func (h host) LineHeight(n *html.Node) float64 { return h.p.layout().LineHeight(n) }
func (h host) ViewportWidth() float64          { return h.p.layout().ViewportWidth() }

func (h host) ScrollOffset() (x, y float64) { return h.p.layout().ScrollOffset() }
