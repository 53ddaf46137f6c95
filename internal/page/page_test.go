package page

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docmark/internal/dom"
	"github.com/dgallion1/docmark/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type countingRecorder struct {
	mu         sync.Mutex
	commands   []string
	handled    int
	highlights int
}

func (r *countingRecorder) Command(key string, handled bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, key)
	if handled {
		r.handled++
	}
}

func (r *countingRecorder) Highlight(markers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlights += markers
}

func testOptions() Options {
	return Options{
		Palette:           []string{"yellow", "lightgreen"},
		MaxHighlightNodes: 500,
		BlinkInterval:     time.Hour,
		Metrics:           layout.Metrics{ViewportWidth: 80, CharWidth: 8, LineHeight: 16},
	}
}

func newTestPage(t *testing.T, src string, opts Options) *Page {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	p := New(doc, Meta{Title: "test"}, opts, slog.New(slog.DiscardHandler))
	t.Cleanup(p.Close)
	return p
}

func render(t *testing.T, p *Page) string {
	t.Helper()
	var buf strings.Builder
	require.NoError(t, p.RenderHTML(&buf))
	return buf.String()
}

func TestToggle_AttachesAndReleases(t *testing.T) {
	p := newTestPage(t, "<p>hello world</p>", testOptions())
	assert.False(t, p.Enabled())
	assert.Zero(t, p.Listeners())

	require.True(t, p.Toggle())
	eng := p.Engine()
	require.NotNil(t, eng)
	assert.Equal(t, 2, p.Listeners())
	assert.Equal(t, 2, eng.Scope().Listeners())
	assert.Equal(t, 1, eng.Scope().Timers())

	require.False(t, p.Toggle())
	assert.Nil(t, p.Engine())
	assert.Zero(t, p.Listeners())
	assert.Zero(t, eng.Scope().Timers())
	assert.Zero(t, eng.Scope().Listeners())
}

func TestToggle_RepeatedActivationLeavesOneTimer(t *testing.T) {
	p := newTestPage(t, "<p>hello world</p>", testOptions())

	require.True(t, p.Toggle())
	first := p.Engine()
	require.False(t, p.Toggle())
	require.True(t, p.Toggle())
	second := p.Engine()

	assert.NotSame(t, first, second)
	assert.Zero(t, first.Scope().Timers())
	assert.Equal(t, 1, second.Scope().Timers())
	assert.Equal(t, 2, p.Listeners())
}

func TestToggle_InjectsStylesOnce(t *testing.T) {
	p := newTestPage(t, "<p>hello</p>", testOptions())
	p.Toggle()
	p.Toggle()
	p.Toggle()

	out := render(t, p)
	assert.Equal(t, 1, strings.Count(out, `id="`+StyleID+`"`))
	assert.Contains(t, out, "mark.docmark-highlight")
}

func TestPointerUp_Highlights(t *testing.T) {
	rec := &countingRecorder{}
	opts := testOptions()
	opts.Recorder = rec
	p := newTestPage(t, "<p>Hello <b>world</b>!</p>", opts)
	p.Toggle()

	require.NoError(t, p.Select(0, 11))
	assert.False(t, p.Dispatch(Event{Type: EventPointerUp}))

	snap := p.Snapshot()
	require.Len(t, snap.Highlights, 1)
	assert.Equal(t, "Hello world", snap.Highlights[0].Text)
	assert.Equal(t, "yellow", snap.Highlights[0].Color)
	assert.Equal(t, 2, snap.Highlights[0].Markers)
	assert.Equal(t, 12, snap.TextLength)
	assert.Nil(t, p.Selection().Start.Node, "selection is cleared after a commit")
	assert.Equal(t, 2, rec.highlights)

	require.NoError(t, p.Select(6, 12))
	p.Dispatch(Event{Type: EventPointerUp})
	snap = p.Snapshot()
	require.Len(t, snap.Highlights, 2)
	assert.Equal(t, "lightgreen", snap.Highlights[1].Color)
	assert.Equal(t, 12, snap.TextLength)
}

func TestPointerUp_IgnoredWhileDisabled(t *testing.T) {
	p := newTestPage(t, "<p>Hello world</p>", testOptions())
	before := render(t, p)

	require.NoError(t, p.Select(0, 5))
	p.Dispatch(Event{Type: EventPointerUp})

	assert.Equal(t, before, render(t, p))
	assert.NotNil(t, p.Selection().Start.Node)
}

func TestPointerUp_CollapsedSelection(t *testing.T) {
	p := newTestPage(t, "<p>one</p><p>two</p>", testOptions())
	p.Toggle()

	require.NoError(t, p.Select(3, 3))
	assert.True(t, p.Selection().Collapsed())
	p.Dispatch(Event{Type: EventPointerUp})
	assert.Empty(t, p.Snapshot().Highlights)
}

func TestToggleOff_ClearsHighlights(t *testing.T) {
	p := newTestPage(t, "<p>Hello world</p>", testOptions())
	p.Toggle()
	require.NoError(t, p.Select(0, 5))
	p.Dispatch(Event{Type: EventPointerUp})
	require.Contains(t, render(t, p), "<mark")

	p.Toggle()
	out := render(t, p)
	assert.NotContains(t, out, "<mark")
	assert.Contains(t, out, "world")
	assert.Empty(t, p.Snapshot().Highlights)
}

func TestClear(t *testing.T) {
	p := newTestPage(t, "<p>Hello world</p>", testOptions())
	assert.Zero(t, p.Clear(), "clear is harmless while disabled")

	p.Toggle()
	require.NoError(t, p.Select(0, 5))
	p.Dispatch(Event{Type: EventPointerUp})
	assert.Equal(t, 1, p.Clear())
	assert.Zero(t, p.Clear())
	assert.True(t, p.Enabled(), "clear does not disable")
	assert.NotContains(t, render(t, p), "<mark")
}

func TestKeyDown(t *testing.T) {
	rec := &countingRecorder{}
	opts := testOptions()
	opts.Recorder = rec
	p := newTestPage(t, "<p>Hi there</p>", opts)

	assert.False(t, p.Dispatch(Event{Type: EventKeyDown, Key: "l"}), "no listener while disabled")

	p.Toggle()
	assert.True(t, p.Dispatch(Event{Type: EventKeyDown, Key: "l"}))
	assert.True(t, p.Dispatch(Event{Type: EventKeyDown, Key: "w"}))
	assert.False(t, p.Dispatch(Event{Type: EventKeyDown, Key: "l", Target: "input"}))
	assert.False(t, p.Dispatch(Event{Type: EventKeyDown, Key: "q"}))

	snap := p.Snapshot()
	require.NotNil(t, snap.Cursor)
	assert.Equal(t, 3, snap.Cursor.TextOffset)
	assert.Equal(t, "there", snap.Cursor.CurrentWord)
	assert.Equal(t, "p", snap.Cursor.Parent)
	assert.True(t, snap.Cursor.InMainContent)
	require.NotNil(t, snap.Caret)
	assert.Equal(t, 24.0, snap.Caret.Left)

	assert.Equal(t, []string{"l", "w", "l", "q"}, rec.commands)
	assert.Equal(t, 2, rec.handled)
}

func TestKeyDown_AfterHighlight(t *testing.T) {
	p := newTestPage(t, "<p>hello world</p>", testOptions())
	p.Toggle()
	require.NoError(t, p.Select(0, 3))
	p.Dispatch(Event{Type: EventPointerUp})

	for i := 0; i < 4; i++ {
		p.Dispatch(Event{Type: EventKeyDown, Key: "l"})
	}
	snap := p.Snapshot()
	require.NotNil(t, snap.Cursor)
	assert.Equal(t, 3, snap.Cursor.TextOffset)
	assert.Equal(t, 24.0, snap.Caret.Left)
}

func TestScroll_CaretInDocumentCoordinates(t *testing.T) {
	p := newTestPage(t, "<p>first</p><p>second</p>", testOptions())
	p.Toggle()
	p.Scroll(0, 16)

	p.Dispatch(Event{Type: EventKeyDown, Key: "l"})
	p.Dispatch(Event{Type: EventKeyDown, Key: "j"})

	snap := p.Snapshot()
	require.NotNil(t, snap.Caret)
	assert.Equal(t, 16.0, snap.Caret.Top)
	assert.Equal(t, 5, snap.Cursor.TextOffset, "cursor on the second line")
}

func TestCaretBlinks(t *testing.T) {
	opts := testOptions()
	opts.BlinkInterval = 2 * time.Millisecond
	p := newTestPage(t, "<p>hello</p>", opts)
	p.Toggle()
	caret := p.Engine().Navigator().Caret()

	assert.Eventually(t, func() bool { return !caret.State().Visible }, time.Second, time.Millisecond)

	p.Toggle()
	stopped := caret.State().Visible
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, caret.State().Visible, "no blink after deactivation")
}

func TestSelect(t *testing.T) {
	p := newTestPage(t, "<p>Hello <b>world</b></p>", testOptions())

	require.NoError(t, p.Select(8, 2))
	sel := p.Selection()
	assert.Equal(t, "Hello ", sel.Start.Node.Data)
	assert.Equal(t, 2, sel.Start.Offset)
	assert.Equal(t, "world", sel.End.Node.Data)
	assert.Equal(t, 2, sel.End.Offset)

	require.NoError(t, p.Select(0, 6))
	assert.Equal(t, "Hello ", p.Selection().End.Node.Data, "end on a boundary closes the preceding node")

	err := p.Select(0, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dom.ErrInvalidBoundary))
}

func TestMarkdown(t *testing.T) {
	p := newTestPage(t, `<nav>menu</nav><article><h1>Title</h1><p>Hello <b>world</b></p></article>`, testOptions())
	md, err := p.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**world**")
	assert.NotContains(t, md, "menu")
}

func TestScope_CloseIsIdempotent(t *testing.T) {
	var target EventTarget
	s := NewScope()
	calls := 0
	s.AddListener(&target, EventKeyDown, func(*Event) { calls++ })
	s.Every(time.Hour, func() {})
	s.Every(0, func() {})
	assert.Equal(t, 1, s.Timers())

	target.Dispatch(&Event{Type: EventKeyDown})
	assert.Equal(t, 1, calls)

	s.Close()
	s.Close()
	assert.Zero(t, target.Count())
	assert.Zero(t, s.Timers())
	target.Dispatch(&Event{Type: EventKeyDown})
	assert.Equal(t, 1, calls)
}

func TestEventTarget_RemoveKeepsOthers(t *testing.T) {
	var target EventTarget
	var got []string
	a := target.Add("x", func(*Event) { got = append(got, "a") })
	target.Add("x", func(*Event) { got = append(got, "b") })
	target.Add("y", func(*Event) { got = append(got, "c") })

	target.Remove("x", a)
	target.Dispatch(&Event{Type: "x"})
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 2, target.Count())
}
