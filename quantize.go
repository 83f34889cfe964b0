package inksplit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/inksplit/palette"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Transparent marks a pixel that belongs to no ink.
const Transparent = -1

// opaqueAlpha is the lowest alpha that still counts as a printed pixel.
const opaqueAlpha = 128

// Indexed is art reduced to a palette of inks: one ink index per pixel.
type Indexed struct {
	W, H  int
	Index []int // len = W*H, Transparent for unprinted pixels
	Inks  *palette.Palette
}

func (ix *Indexed) At(x, y int) int {
	return ix.Index[y*ix.W+x]
}

// Counts returns the number of pixels per ink.
func (ix *Indexed) Counts() []int {
	counts := make([]int, ix.Inks.Len())
	for _, i := range ix.Index {
		if i != Transparent {
			counts[i]++
		}
	}
	return counts
}

// Paletted renders the indexed art. Transparent pixels use an extra fully
// transparent palette slot.
func (ix *Indexed) Paletted() *image.Paletted {
	pal := append(ix.Inks.Std(), color.NRGBA{})
	none := uint8(len(pal) - 1)
	out := image.NewPaletted(image.Rect(0, 0, ix.W, ix.H), pal)
	for i, v := range ix.Index {
		if v == Transparent {
			out.Pix[i] = none
			continue
		}
		out.Pix[i] = uint8(v)
	}
	return out
}

// Quantize maps every opaque pixel of img to an ink. With dither the
// conversion diffuses RGB error Floyd-Steinberg style; without it each pixel
// takes the ink nearest in Lab.
func Quantize(img image.Image, inks *palette.Palette, dither bool) (*Indexed, error) {
	if inks.Len() == 0 {
		return nil, fmt.Errorf("quantize: %w", palette.ErrEmptyPalette)
	}
	if inks.Len() > 255 {
		return nil, fmt.Errorf("%w: %d inks, at most 255", ErrInvalidOptions, inks.Len())
	}
	src := toNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}
	ix := &Indexed{W: w, H: h, Index: make([]int, w*h), Inks: inks}

	if dither {
		quantizeDither(src, ix)
	} else {
		quantizeNearest(src, ix)
	}

	for y := range h {
		for x := range w {
			if src.NRGBAAt(x, y).A < opaqueAlpha {
				ix.Index[y*w+x] = Transparent
			}
		}
	}
	return ix, nil
}

func quantizeDither(src *image.NRGBA, ix *Indexed) {
	opaque := image.NewNRGBA(src.Rect)
	draw.Draw(opaque, opaque.Bounds(), src, src.Rect.Min, draw.Src)
	pal := ix.Inks.Std()
	fillTransparent(opaque, src, color.NRGBAModel.Convert(pal[0]).(color.NRGBA))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}
	dst := image.NewPaletted(src.Rect, pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), opaque, image.Point{})
	for i, v := range dst.Pix {
		ix.Index[i] = int(v)
	}
}

// fillTransparent paints every transparent pixel of m with the nearest
// opaque color to its left in the row, or the first opaque one for a leading
// run. Rows with no opaque pixel take fill. The RGB stored in unprinted
// pixels never reaches the dither.
func fillTransparent(m, src *image.NRGBA, fill color.NRGBA) {
	b := m.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		first := b.Max.X
		var last color.NRGBA
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.NRGBAAt(x, y).A >= opaqueAlpha {
				if first == b.Max.X {
					first = x
				}
				last = m.NRGBAAt(x, y)
				continue
			}
			if first < x {
				m.SetNRGBA(x, y, last)
			}
		}
		lead := fill
		if first < b.Max.X {
			lead = m.NRGBAAt(first, y)
		}
		for x := b.Min.X; x < first; x++ {
			m.SetNRGBA(x, y, lead)
		}
	}
}

func quantizeNearest(src *image.NRGBA, ix *Indexed) {
	tree := newInkTree(ix.Inks)
	memo := make(map[[3]uint8]int)
	for y := range ix.H {
		for x := range ix.W {
			c := src.NRGBAAt(x, y)
			key := [3]uint8{c.R, c.G, c.B}
			i, ok := memo[key]
			if !ok {
				i = tree.nearest(colorful.Color{
					R: float64(c.R) / 255.0,
					G: float64(c.G) / 255.0,
					B: float64(c.B) / 255.0,
				})
				memo[key] = i
			}
			ix.Index[y*ix.W+x] = i
		}
	}
}

// inkTree is a k-d tree over the Lab coordinates of a palette.
type inkTree struct {
	tree  *kdtree.Tree
	index map[[3]float64]int
}

func newInkTree(inks *palette.Palette) *inkTree {
	pts := make(kdtree.Points, 0, inks.Len())
	index := make(map[[3]float64]int, inks.Len())
	for i, e := range inks.Entries {
		l, a, b := e.Color.Lab()
		key := [3]float64{l, a, b}
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = i
		pts = append(pts, kdtree.Point{l, a, b})
	}
	return &inkTree{tree: kdtree.New(pts, false), index: index}
}

func (t *inkTree) nearest(c colorful.Color) int {
	l, a, b := c.Lab()
	got, _ := t.tree.Nearest(kdtree.Point{l, a, b})
	p := got.(kdtree.Point)
	return t.index[[3]float64{p[0], p[1], p[2]}]
}
