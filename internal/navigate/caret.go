package navigate

import (
	"sync"

	"github.com/dgallion1/docmark/internal/layout"
)

// Caret sizes, in pixels.
const (
	CaretWidth  = 8
	CaretHeight = 16
)

// CaretState is a snapshot of the on-screen cursor indicator.
type CaretState struct {
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
}

// Caret is the blinking cursor indicator, positioned in document coordinates.
// Blink may be called from a timer goroutine.
type Caret struct {
	mu      sync.Mutex
	left    float64
	top     float64
	visible bool
}

func NewCaret() *Caret {
	return &Caret{visible: true}
}

// Place moves the caret to viewport rect r, shifted by the scroll offset.
func (c *Caret) Place(r layout.Rect, scrollX, scrollY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = r.Left + scrollX
	c.top = r.Top + scrollY
}

// Blink toggles visibility.
func (c *Caret) Blink() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = !c.visible
}

func (c *Caret) State() CaretState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CaretState{
		Left:    c.left,
		Top:     c.top,
		Width:   CaretWidth,
		Height:  CaretHeight,
		Visible: c.visible,
	}
}
