package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Match is the palette entry closest to a target color.
type Match struct {
	Entry    Entry
	Index    int
	Distance float64 // CIE76 delta-E
}

// labScale converts go-colorful Lab, whose L runs 0..1, to the CIE scale
// with L in 0..100.
const labScale = 100

// Distance returns the CIE76 delta-E between a and b: the Euclidean distance
// of their Lab coordinates on the CIE scale, so black to white is 100.
func Distance(a, b colorful.Color) float64 {
	l1, a1, b1 := a.Lab()
	l2, a2, b2 := b.Lab()
	return labScale * math.Sqrt(sq(l1-l2)+sq(a1-a2)+sq(b1-b2))
}

func sq(v float64) float64 { return v * v }

// Validate reports ErrInvalidColor when a channel of c is outside [0,1] or NaN.
func Validate(c colorful.Color) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: (%g, %g, %g)", ErrInvalidColor, c.R, c.G, c.B)
	}
	return nil
}

// Nearest tracks the best entry seen so far while scanning a palette.
// Only a strictly smaller distance replaces the current best, so among exact
// ties the first entry offered wins.
type Nearest struct {
	target colorful.Color
	best   Match
	seen   bool
}

func NewNearest(target colorful.Color) *Nearest {
	return &Nearest{
		target: target,
		best:   Match{Index: -1, Distance: math.Inf(1)},
	}
}

// Offer compares the entry at palette index i against the current best.
func (n *Nearest) Offer(i int, e Entry) {
	d := Distance(n.target, e.Color)
	if d < n.best.Distance {
		n.best = Match{Entry: e, Index: i, Distance: d}
	}
	n.seen = true
}

// Result returns the best match, or ErrEmptyPalette if nothing was offered.
func (n *Nearest) Result() (Match, error) {
	if !n.seen || n.best.Index < 0 {
		return Match{}, ErrEmptyPalette
	}
	return n.best, nil
}

// Closest returns the entry of p with the smallest CIE76 distance to target.
// The target is validated before any entry is examined.
func Closest(target colorful.Color, p *Palette) (Match, error) {
	if err := Validate(target); err != nil {
		return Match{}, err
	}
	if p.Len() == 0 {
		return Match{}, fmt.Errorf("%w: %q", ErrEmptyPalette, paletteName(p))
	}
	n := NewNearest(target)
	for i, e := range p.Entries {
		n.Offer(i, e)
	}
	return n.Result()
}

// FindClosest resolves the palette called name and returns its entry closest
// to target. Invalid targets fail before the palette is resolved.
func (l *Library) FindClosest(target colorful.Color, name string) (Match, error) {
	if err := Validate(target); err != nil {
		return Match{}, err
	}
	p, err := l.Lookup(name)
	if err != nil {
		return Match{}, err
	}
	return Closest(target, p)
}

func paletteName(p *Palette) string {
	if p == nil {
		return ""
	}
	return p.Name
}
