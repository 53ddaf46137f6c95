package highlight

// Palette rotates through a fixed list of colours.
type Palette struct {
	colors []string
	index  int
}

// NewPalette copies colors into a new rotation starting at the first entry.
func NewPalette(colors []string) *Palette {
	c := make([]string, len(colors))
	copy(c, colors)
	if len(c) == 0 {
		c = []string{"yellow"}
	}
	return &Palette{colors: c}
}

// Next returns the current colour and advances the rotation.
func (p *Palette) Next() string {
	c := p.colors[p.index]
	p.index = (p.index + 1) % len(p.colors)
	return c
}

// Len returns the period of the rotation.
func (p *Palette) Len() int { return len(p.colors) }
