// Package palette holds named color palettes, reads and writes GIMP palette
// files, resolves palettes by name and finds the perceptually closest entry
// of a palette for a given color.
package palette

import (
	"errors"
	"image/color"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

var (
	// ErrInvalidColor is returned when a color channel lies outside [0,1].
	ErrInvalidColor = errors.New("palette: color channel outside [0,1]")
	// ErrNotFound is returned when a named palette cannot be resolved.
	ErrNotFound = errors.New("palette: not found")
	// ErrEmptyPalette is returned when a palette has no entries to choose from.
	ErrEmptyPalette = errors.New("palette: no entries")
	// ErrFormat is returned for malformed palette files.
	ErrFormat = errors.New("palette: malformed file")
)

// Entry is a palette color with an optional name. Color channels are
// normalized to [0,1].
type Entry struct {
	Name  string
	Color colorful.Color
}

// Label returns the entry name, or its hex code when the entry is unnamed.
func (e Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Color.Hex()
}

type Palette struct {
	Name    string
	Columns int
	Entries []Entry
}

// New builds an unnamed-entry palette from colors.
func New(name string, colors ...colorful.Color) *Palette {
	return &Palette{
		Name: name,
		Entries: lo.Map(colors, func(c colorful.Color, _ int) Entry {
			return Entry{Color: c}
		}),
	}
}

func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Clone returns a copy of p that shares no entries with it.
func (p *Palette) Clone() *Palette {
	if p == nil {
		return nil
	}
	c := *p
	c.Entries = slices.Clone(p.Entries)
	return &c
}

// Colors returns the entry colors in palette order.
func (p *Palette) Colors() []colorful.Color {
	return lo.Map(p.Entries, func(e Entry, _ int) colorful.Color { return e.Color })
}

// Std converts the palette to a standard library palette of opaque colors,
// usable with image.Paletted and draw.FloydSteinberg.
func (p *Palette) Std() color.Palette {
	out := make(color.Palette, len(p.Entries))
	for i, e := range p.Entries {
		r, g, b := e.Color.Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}
