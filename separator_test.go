package inksplit

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/inksplit/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func testInks() *palette.Palette {
	return &palette.Palette{
		Name: "test",
		Entries: []palette.Entry{
			{Name: "Black", Color: colorful.Color{R: 0, G: 0, B: 0}},
			{Name: "Red", Color: colorful.Color{R: 1, G: 0, B: 0}},
			{Name: "White", Color: colorful.Color{R: 1, G: 1, B: 1}},
		},
	}
}

// halves returns a w x h image, red on the left half and black on the right.
func halves(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, black)
			}
		}
	}
	return img
}

// smallOptions lays out a 200x200 px film: art at (80,50), registration mark
// at (95,28)-(105,38), labels from y=15.
func smallOptions() Options {
	opt := DefaultOptions()
	opt.Resolution = 10
	opt.CanvasWidth = 20
	opt.CanvasHeight = 20
	opt.CanvasMargin = 3
	opt.VerticalOffset = 2
	opt.Location = Center
	opt.PrintWidth = 0
	opt.PrintHeight = 0
	opt.FontSize = 8
	opt.LabelSpacing = 4
	opt.RegistrationSize = 1
	opt.Dither = false
	return opt
}

func build(t *testing.T, img image.Image, opt Options) (*Separator, *Sheet) {
	t.Helper()
	sep := NewSeparator(img, testInks())
	sheet, err := sep.Build(opt)
	require.NoError(t, err)
	return sep, sheet
}

func TestBuildLayers(t *testing.T) {
	_, sheet := build(t, halves(40, 20), smallOptions())

	assert.Equal(t, 200, sheet.Width)
	assert.Equal(t, 200, sheet.Height)
	assert.Equal(t, image.Rect(80, 50, 120, 70), sheet.Art)
	// White is unused and gets no layer.
	assert.Equal(t, []string{"UB", "Black", "Red"}, sheet.Names())

	redL := sheet.Lookup("Red")
	blackL := sheet.Lookup("Black")
	require.NotNil(t, redL)
	require.NotNil(t, blackL)
	assert.Equal(t, 400, redL.Pixels)
	assert.Equal(t, 400, blackL.Pixels)

	assert.EqualValues(t, 255, redL.Mask.AlphaAt(85, 55).A)
	assert.EqualValues(t, 0, redL.Mask.AlphaAt(110, 55).A)
	assert.EqualValues(t, 255, blackL.Mask.AlphaAt(110, 55).A)
	assert.EqualValues(t, 0, redL.Mask.AlphaAt(10, 190).A)
}

func TestBuildUnderbaseSkipsDarkInks(t *testing.T) {
	_, sheet := build(t, halves(40, 20), smallOptions())
	ub := sheet.Underbase()
	require.NotNil(t, ub)
	assert.Equal(t, KindUnderbase, ub.Kind)
	assert.EqualValues(t, 255, ub.Mask.AlphaAt(85, 55).A, "red is light enough for the underbase")
	assert.EqualValues(t, 0, ub.Mask.AlphaAt(110, 55).A, "black is cut from the underbase")
	assert.Equal(t, 400, ub.Pixels)

	opt := smallOptions()
	opt.UnderbaseThreshold = 0
	_, sheet = build(t, halves(40, 20), opt)
	assert.EqualValues(t, 255, sheet.Underbase().Mask.AlphaAt(110, 55).A)

	opt.Underbase = false
	_, sheet = build(t, halves(40, 20), opt)
	assert.Nil(t, sheet.Underbase())
	assert.Equal(t, []string{"Black", "Red"}, sheet.Names())
}

func TestInkLightness(t *testing.T) {
	assert.Equal(t, 0.0, inkLightness(colorful.Color{}))
	assert.InDelta(t, 1.0, inkLightness(colorful.Color{R: 1, G: 1, B: 1}), 1e-6)
	assert.InDelta(t, 0.5339, inkLightness(colorful.Color{R: 0.5, G: 0.5, B: 0.5}), 1e-3)
}

func TestBuildRegistrationAndLabels(t *testing.T) {
	_, sheet := build(t, halves(40, 20), smallOptions())
	require.NotNil(t, sheet.Registration)
	assert.EqualValues(t, 255, sheet.Registration.Mask.AlphaAt(100, 33).A)
	assert.EqualValues(t, 0, sheet.Registration.Mask.AlphaAt(95, 28).A)

	// Every print layer carries its own label in the band above the mark.
	for _, l := range sheet.Layers {
		inked := 0
		for y := 15; y < 28; y++ {
			for x := 95; x < 200; x++ {
				if l.Mask.AlphaAt(x, y).A > 0 {
					inked++
				}
			}
		}
		assert.Positive(t, inked, l.Name)
	}
}

func TestBuildTransparentPixels(t *testing.T) {
	img := halves(40, 20)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 20})
	_, sheet := build(t, img, smallOptions())
	assert.EqualValues(t, 0, sheet.Lookup("Red").Mask.AlphaAt(80, 50).A)
	assert.Equal(t, 399, sheet.Lookup("Red").Pixels)
}

func TestBuildScalesToPrintWidth(t *testing.T) {
	// 80x30 of art inside a 10px transparent border.
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	for y := 10; y < 40; y++ {
		for x := 10; x < 90; x++ {
			img.SetNRGBA(x, y, red)
		}
	}
	opt := smallOptions()
	opt.PrintWidth = 4
	opt.PrintHeight = 3
	sep, sheet := build(t, img, opt)
	assert.Equal(t, 0.5, sep.Scale)
	assert.Equal(t, image.Pt(40, 15), sep.Art.Rect.Size())
	assert.Equal(t, image.Pt(40, 15), sheet.Art.Size())

	opt.PrintWidth = 16
	opt.PrintHeight = 0
	sep, _ = build(t, img, opt)
	assert.Equal(t, 2.0, sep.Scale)
	assert.Equal(t, image.Pt(160, 60), sep.Art.Rect.Size())
}

func TestBuildColorMatch(t *testing.T) {
	dir := t.TempDir()
	gpl := "GIMP Palette\nName: Graphic Design\n240 20 20\tWarm Red\n10 10 10\tJet\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graphic-design.gpl"), []byte(gpl), 0o644))

	opt := smallOptions()
	opt.ColorMatch = true
	sep := NewSeparator(halves(40, 20), testInks())
	sep.Library = palette.NewLibrary(dir)
	sheet, err := sep.Build(opt)
	require.NoError(t, err)

	assert.Equal(t, []string{"UB", "Jet", "Warm Red"}, sheet.Names())
	require.Len(t, sheet.Matches, 2)
	assert.Equal(t, "Black (Jet)\nRed (Warm Red)\n", sheet.Report())
	assert.Greater(t, sheet.Matches[0].Match.Distance, 0.0)

	opt.MatchPalette = "missing"
	sep = NewSeparator(halves(40, 20), testInks())
	sep.Library = palette.NewLibrary(dir)
	_, err = sep.Build(opt)
	assert.ErrorIs(t, err, palette.ErrNotFound)
}

func TestBuildErrors(t *testing.T) {
	opt := smallOptions()
	_, err := NewSeparator(image.NewNRGBA(image.Rect(0, 0, 0, 0)), testInks()).Build(opt)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewSeparator(halves(4, 4), &palette.Palette{}).Build(opt)
	assert.ErrorIs(t, err, palette.ErrEmptyPalette)

	opt.Font = "Comic Sans"
	_, err = NewSeparator(halves(4, 4), testInks()).Build(opt)
	assert.ErrorIs(t, err, ErrUnknownFont)

	opt = smallOptions()
	opt.Resolution = 0
	_, err = NewSeparator(halves(4, 4), testInks()).Build(opt)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestSheetPreviewAndFilm(t *testing.T) {
	_, sheet := build(t, halves(40, 20), smallOptions())
	preview := sheet.Preview()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, preview.RGBAAt(85, 55))
	assert.Equal(t, color.RGBA{A: 255}, preview.RGBAAt(110, 55))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, preview.RGBAAt(10, 190))
	assert.Equal(t, color.RGBA{A: 255}, preview.RGBAAt(100, 33), "registration mark")

	film := sheet.Film(sheet.Lookup("Red"))
	assert.EqualValues(t, 0, film.GrayAt(85, 55).Y)
	assert.EqualValues(t, 255, film.GrayAt(110, 55).Y)
	assert.EqualValues(t, 0, film.GrayAt(100, 33).Y, "registration mark on every film")

	colored := sheet.Lookup("Red").Colorize()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, colored.NRGBAAt(85, 55))
	assert.Equal(t, color.NRGBA{R: 255}, colored.NRGBAAt(110, 55))
}
