package page

import (
	"time"

	"github.com/dgallion1/docmark/internal/dom"
	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/navigate"
	"golang.org/x/net/html"
)

// StyleID identifies the injected marker stylesheet.
const StyleID = "docmark-highlight-styles"

// Engine is one activation of highlighting and navigation on a page. It is
// built by Page.Toggle and torn down with Close; all of its work runs under
// the page mutex except the caret blink.
type Engine struct {
	page        *Page
	scope       *Scope
	highlighter *highlight.Engine
	nav         *navigate.Navigator
}

func newEngine(p *Page) *Engine {
	injectStyles(p.doc)
	e := &Engine{
		page:  p,
		scope: NewScope(),
		highlighter: highlight.New(p.doc, highlight.Options{
			Palette:  p.opts.Palette,
			MaxNodes: p.opts.MaxHighlightNodes,
		}, p.log),
		nav: navigate.New(p.doc, host{p}, p.log),
	}
	e.scope.AddListener(&p.events, EventPointerUp, e.onPointerUp)
	e.scope.AddListener(&p.events, EventKeyDown, e.onKeyDown)
	e.scope.Every(p.opts.BlinkInterval, e.nav.Caret().Blink)
	p.log.Debug("engine attached", "anchor", e.nav.Anchor().Data)
	return e
}

// Scope returns the resources held by this activation.
func (e *Engine) Scope() *Scope { return e.scope }

// Navigator returns the cursor engine.
func (e *Engine) Navigator() *navigate.Navigator { return e.nav }

// Highlighter returns the highlight engine.
func (e *Engine) Highlighter() *highlight.Engine { return e.highlighter }

// Close releases every listener and timer of the activation.
func (e *Engine) Close() {
	e.scope.Close()
}

func (e *Engine) onPointerUp(*Event) {
	p := e.page
	sel := p.selection
	if sel.Start.Node == nil || sel.Collapsed() {
		return
	}
	if rec, ok := e.highlighter.Commit(sel); ok {
		p.invalidate()
		p.rec.Highlight(len(rec.Markers))
	}
	p.selection = dom.Range{}
}

func (e *Engine) onKeyDown(ev *Event) {
	start := time.Now()
	handled := e.nav.HandleKey(ev.Key, ev.Target)
	if handled {
		ev.PreventDefault()
	}
	e.page.rec.Command(ev.Key, handled, time.Since(start))
}

// injectStyles adds the marker stylesheet to the document head once.
func injectStyles(doc *html.Node) {
	if n, _ := dom.QueryFirst(doc, "style#"+StyleID); n != nil {
		return
	}
	parent := dom.Head(doc)
	if parent == nil {
		parent = dom.Body(doc)
	}
	style := dom.NewElement("style", html.Attribute{Key: "id", Val: StyleID})
	style.AppendChild(dom.NewText(highlight.Stylesheet))
	parent.AppendChild(style)
}
