package inksplit

import (
	"fmt"
	"image"
	"image/color"
	"maps"
	"math"
	"slices"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// registrationDrop is the distance from the vertical offset to the top of
// the registration mark, below the printer's safe area.
const registrationDrop = 0.8

// labelGap separates the label bottom from the registration mark, in pixels.
const labelGap = 5

// placeX returns the left edge of an element of the given width on a canvas
// of canvasW pixels. Left prints sit right of the centre line, as seen
// from the back of the film.
func placeX(loc Location, canvasW, width int, offsetPx float64) int {
	switch loc {
	case Right:
		return int(float64(canvasW/2) - offsetPx - float64(width/2))
	case Center:
		return canvasW/2 - width/2
	default:
		return int(float64(canvasW/2) + offsetPx - float64(width/2))
	}
}

// artOrigin returns where the top-left corner of the art goes on the canvas.
func artOrigin(opt Options, canvasW int, art image.Point) image.Point {
	return image.Point{
		X: placeX(opt.Location, canvasW, art.X, opt.CenterOffset*float64(opt.Resolution)),
		Y: int(opt.CanvasMargin*float64(opt.Resolution) + opt.VerticalOffset*float64(opt.Resolution)),
	}
}

// registrationRect returns the registration mark bounds on the canvas.
func registrationRect(opt Options, canvasW int) image.Rectangle {
	size := max(1, opt.px(opt.RegistrationSize))
	x := placeX(opt.Location, canvasW, size, opt.CenterOffset*float64(opt.Resolution))
	y := int(opt.VerticalOffset*float64(opt.Resolution) + registrationDrop*float64(opt.Resolution))
	return image.Rect(x, y, x+size, y+size)
}

// drawRegistration draws a ring with a crosshair into r. Pixels outside the
// mask bounds are dropped.
func drawRegistration(m *image.Alpha, r image.Rectangle, resolution int) {
	size := float64(min(r.Dx(), r.Dy()))
	half := max(0.5, float64(resolution)/200)
	cx := float64(r.Min.X) + size/2
	cy := float64(r.Min.Y) + size/2
	radius := size * 0.3
	on := color.Alpha{A: 255}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			ring := math.Abs(math.Hypot(dx, dy)-radius) <= half
			cross := math.Abs(dx) <= half || math.Abs(dy) <= half
			if ring || cross {
				m.SetAlpha(x, y, on)
			}
		}
	}
}

// ============ LABELS ============

var fonts = map[string][]byte{
	"sans-serif":      goregular.TTF,
	"sans-serif-bold": gobold.TTF,
	"sans":            goregular.TTF,
	"sans-bold":       gobold.TTF,
	"monospace":       gomono.TTF,
	"monospace-bold":  gomonobold.TTF,
	"go":              goregular.TTF,
	"go-bold":         gobold.TTF,
	"go-mono":         gomono.TTF,
	"go-mono-bold":    gomonobold.TTF,
}

// FontNames lists the accepted label font names.
func FontNames() []string {
	return slices.Sorted(maps.Keys(fonts))
}

// loadFace returns a face whose em size is sizePx pixels.
func loadFace(name string, sizePx int) (font.Face, error) {
	key := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(name)))
	ttf, ok := fonts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawLabel draws text with its top-left corner at pt and returns the
// advance width in pixels.
func drawLabel(m *image.Alpha, face font.Face, pt image.Point, text string) int {
	ascent := face.Metrics().Ascent
	d := &font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(pt.X), Y: fixed.I(pt.Y) + ascent},
	}
	d.DrawString(text)
	return font.MeasureString(face, text).Ceil()
}
