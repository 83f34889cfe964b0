package inksplit

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
	"github.com/setanarut/inksplit/palette"
)

type LayerKind int

const (
	KindInk LayerKind = iota
	KindUnderbase
	KindRegistration
)

func (k LayerKind) String() string {
	switch k {
	case KindUnderbase:
		return "underbase"
	case KindRegistration:
		return "registration"
	default:
		return "ink"
	}
}

// Layer is one film of the separation. Mask holds the printed coverage on
// the canvas, labels included; the ink itself is always printed solid black.
type Layer struct {
	Name string
	Kind LayerKind
	// Source ink color. Black for the underbase and registration layers.
	Ink colorful.Color
	// Ink index in the sheet palette, -1 for non-ink layers.
	Index int
	// Art pixels covered before labeling.
	Pixels int
	Mask   *image.Alpha
}

// Film renders the layer as print film: black ink on white.
func (l *Layer) Film() *image.Gray {
	film := image.NewGray(l.Mask.Rect)
	for i, a := range l.Mask.Pix {
		film.Pix[i] = 255 - a
	}
	return film
}

// Colorize renders the layer in its ink color with coverage as alpha.
func (l *Layer) Colorize() *image.NRGBA {
	r, g, b := l.Ink.Clamped().RGB255()
	out := image.NewNRGBA(l.Mask.Rect)
	for i, a := range l.Mask.Pix {
		o := i * 4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = r, g, b, a
	}
	return out
}

// ColorMatch records the reference entry chosen for an ink.
type ColorMatch struct {
	Ink   palette.Entry
	Match palette.Match
}

func (m ColorMatch) String() string {
	return fmt.Sprintf("%s (%s)", m.Ink.Label(), m.Match.Entry.Label())
}

// Sheet is the finished separation: print layers in print order plus the
// registration mark shared by every film.
type Sheet struct {
	Width, Height int
	Resolution    int
	// Art placement on the canvas, before clipping.
	Art          image.Rectangle
	Layers       []*Layer // underbase first, then inks in palette order
	Registration *Layer
	Matches      []ColorMatch
	Indexed      *Indexed
}

func (s *Sheet) canvasRect() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

func (s *Sheet) Underbase() *Layer {
	l, _ := lo.Find(s.Layers, func(l *Layer) bool { return l.Kind == KindUnderbase })
	return l
}

func (s *Sheet) Inks() []*Layer {
	return lo.Filter(s.Layers, func(l *Layer, _ int) bool { return l.Kind == KindInk })
}

// Lookup returns the layer called name, or nil.
func (s *Sheet) Lookup(name string) *Layer {
	if s.Registration != nil && s.Registration.Name == name {
		return s.Registration
	}
	l, _ := lo.Find(s.Layers, func(l *Layer) bool { return l.Name == name })
	return l
}

// Names lists the print layer names in print order.
func (s *Sheet) Names() []string {
	return lo.Map(s.Layers, func(l *Layer, _ int) string { return l.Name })
}

// Report lists one "ink (match)" line per matched ink.
func (s *Sheet) Report() string {
	var sb strings.Builder
	for _, m := range s.Matches {
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Film renders l as print film with the registration mark added.
func (s *Sheet) Film(l *Layer) *image.Gray {
	film := l.Film()
	if s.Registration == nil || l == s.Registration {
		return film
	}
	for i, a := range s.Registration.Mask.Pix {
		if a == 0 {
			continue
		}
		film.Pix[i] = min(film.Pix[i], 255-a)
	}
	return film
}

// Preview composites the ink layers in their colors over white, bottom to
// top in palette order, with the registration mark on top.
func (s *Sheet) Preview() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	inks := s.Inks()
	for y := range s.Height {
		for x := range s.Width {
			outR, outG, outB := 1.0, 1.0, 1.0
			for _, l := range inks {
				a := float64(l.Mask.AlphaAt(x, y).A) / 255.0
				if a == 0 {
					continue
				}
				oneMinusA := 1 - a
				outR = a*l.Ink.R + oneMinusA*outR
				outG = a*l.Ink.G + oneMinusA*outG
				outB = a*l.Ink.B + oneMinusA*outB
			}
			if s.Registration != nil {
				a := float64(s.Registration.Mask.AlphaAt(x, y).A) / 255.0
				outR, outG, outB = (1-a)*outR, (1-a)*outG, (1-a)*outB
			}
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(max(0, min(255, outR*255+0.5))),
				G: uint8(max(0, min(255, outG*255+0.5))),
				B: uint8(max(0, min(255, outB*255+0.5))),
				A: 255,
			})
		}
	}
	return out
}
