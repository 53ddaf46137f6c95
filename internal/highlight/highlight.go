// Package highlight wraps selected text in inline mark elements and removes
// them again on clear.
package highlight

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

// MarkerClass is carried by every marker element.
const MarkerClass = "docmark-highlight"

// Stylesheet lets markers pass every typographic property of their context
// through untouched. Only the inline background colour differs.
const Stylesheet = `mark.docmark-highlight {
  color: inherit;
  padding: 0;
  margin: 0;
  display: inline;
  font: inherit;
  font-size: inherit;
  font-weight: inherit;
  line-height: inherit;
  letter-spacing: inherit;
  text-decoration: inherit;
}`

// Record is one committed highlight. It owns its markers exclusively.
type Record struct {
	Markers []*html.Node
	Color   string
}

// Text returns the concatenated text of the record's markers.
func (r Record) Text() string {
	var s string
	for _, m := range r.Markers {
		s += dom.TextContent(m)
	}
	return s
}

// Options configure an Engine.
type Options struct {
	Palette  []string
	MaxNodes int // text nodes per commit; 0 means unlimited
}

// Engine tracks the highlights committed against one document.
type Engine struct {
	root     *html.Node
	palette  *Palette
	maxNodes int
	records  []Record
	log      *slog.Logger
}

// New creates an engine for the document rooted at root.
func New(root *html.Node, opts Options, log *slog.Logger) *Engine {
	return &Engine{
		root:     root,
		palette:  NewPalette(opts.Palette),
		maxNodes: opts.MaxNodes,
		log:      log,
	}
}

// NewMarker creates a detached marker element for color.
func NewMarker(color string) *html.Node {
	return dom.NewElement("mark",
		html.Attribute{Key: "class", Val: MarkerClass},
		html.Attribute{Key: "data-color", Val: color},
		html.Attribute{Key: "style", Val: fmt.Sprintf("background-color: %s; color: inherit", color)},
	)
}

// IsMarker reports whether n is a marker element.
func IsMarker(n *html.Node) bool {
	return dom.IsElement(n) && n.Data == "mark" && dom.ClassName(n) == MarkerClass
}

// Commit wraps every non-empty text span of r in a marker of the next palette
// colour. Collapsed ranges and ranges covering no text are ignored.
func (e *Engine) Commit(r dom.Range) (Record, bool) {
	if r.Start.Node == nil || r.Collapsed() {
		return Record{}, false
	}
	spans, truncated := r.TextSpans(e.maxNodes)
	if truncated {
		e.log.Warn("selection exceeds text node limit, highlighting partially", "limit", e.maxNodes)
	}
	if len(spans) == 0 {
		return Record{}, false
	}

	rec := Record{Color: e.palette.Next()}
	for _, s := range spans {
		mark := NewMarker(rec.Color)
		if err := dom.WrapText(s.Node, s.Start, s.End, mark); err != nil {
			e.log.Warn("skipping text span", "error", err)
			continue
		}
		rec.Markers = append(rec.Markers, mark)
	}
	if len(rec.Markers) == 0 {
		return Record{}, false
	}
	e.records = append(e.records, rec)
	e.log.Debug("highlight committed", "color", rec.Color, "markers", len(rec.Markers))
	return rec, true
}

// Clear unwraps every marker still attached to the document, in creation
// order, and forgets all records. It returns the number of markers removed.
// Adjacent text nodes are left unmerged.
func (e *Engine) Clear() int {
	removed := 0
	for _, rec := range e.records {
		for _, m := range rec.Markers {
			// Markers nested inside an already flattened marker are gone.
			if !dom.Contains(e.root, m) {
				continue
			}
			if _, err := dom.ReplaceWithText(m); err != nil {
				e.log.Warn("unwrapping marker", "error", err)
				continue
			}
			removed++
		}
	}
	e.records = nil
	return removed
}

// Records returns the committed highlights in creation order.
func (e *Engine) Records() []Record {
	out := make([]Record, len(e.records))
	copy(out, e.records)
	return out
}
