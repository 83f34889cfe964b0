package inksplit

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/inksplit/palette"
)

// Separator turns an image into spot color films, one per ink of its
// palette, plus an optional underbase.
type Separator struct {
	Input image.Image
	Inks  *palette.Palette
	// Resolves Options.MatchPalette. Defaults to a library over
	// palette.DefaultDirs.
	Library *palette.Library
	Logger  *slog.Logger

	// Intermediate results, kept for inspection after Build.
	Art     *image.NRGBA // cropped and scaled art
	Scale   float64
	Indexed *Indexed
}

func NewSeparator(input image.Image, inks *palette.Palette) *Separator {
	return &Separator{
		Input:  input,
		Inks:   inks,
		Logger: slog.Default(),
	}
}

func (s *Separator) Build(opt Options) (*Sheet, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if s.Input == nil || s.Input.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	s.scale(opt)
	if err := s.quantize(opt); err != nil {
		return nil, err
	}
	sheet := s.newSheet(opt)
	s.separate(sheet, opt)
	if opt.ColorMatch {
		if err := s.matchColors(sheet, opt); err != nil {
			return nil, err
		}
	}
	s.register(sheet, opt)
	if err := s.label(sheet, opt); err != nil {
		return nil, err
	}
	s.Logger.Info("separation done",
		"layers", sheet.Names(),
		"canvas", fmt.Sprintf("%dx%d", sheet.Width, sheet.Height),
	)
	return sheet, nil
}

// ============ SCALE ============

func (s *Separator) scale(opt Options) {
	src := toNRGBA(s.Input)
	s.Art, s.Scale = scaleArt(src, opt)
	if s.Scale > 1 {
		s.Logger.Warn("image was scaled up", "factor", fmt.Sprintf("%.2f", s.Scale))
	}
	s.Logger.Debug("art scaled",
		"from", src.Rect.Size(),
		"to", s.Art.Rect.Size(),
		"factor", s.Scale,
	)
}

// ============ INDEXED CONVERSION ============

func (s *Separator) quantize(opt Options) error {
	ix, err := Quantize(s.Art, s.Inks, opt.Dither)
	if err != nil {
		return err
	}
	s.Indexed = ix
	s.Logger.Debug("art indexed", "inks", s.Inks.Len(), "dither", opt.Dither)
	return nil
}

// ============ SEPARATIONS ============

func (s *Separator) newSheet(opt Options) *Sheet {
	w, h := opt.px(opt.CanvasWidth), opt.px(opt.CanvasHeight)
	origin := artOrigin(opt, w, s.Art.Rect.Size())
	return &Sheet{
		Width:      w,
		Height:     h,
		Resolution: opt.Resolution,
		Art:        image.Rectangle{Min: origin, Max: origin.Add(s.Art.Rect.Size())},
		Indexed:    s.Indexed,
	}
}

// separate builds one solid layer per used ink and the underbase. Inks darker
// than the threshold are cut out of the underbase.
func (s *Separator) separate(sheet *Sheet, opt Options) {
	ix := s.Indexed
	canvas := sheet.canvasRect()
	visible := sheet.Art.Intersect(canvas)
	counts := ix.Counts()

	inkLayers := make([]*Layer, len(counts))
	for i, n := range counts {
		if n == 0 {
			continue
		}
		e := s.Inks.Entries[i]
		inkLayers[i] = &Layer{
			Name:   e.Label(),
			Kind:   KindInk,
			Ink:    e.Color,
			Index:  i,
			Pixels: n,
			Mask:   image.NewAlpha(canvas),
		}
	}

	var ub *Layer
	if opt.Underbase {
		ub = &Layer{Name: "UB", Kind: KindUnderbase, Index: -1, Mask: image.NewAlpha(canvas)}
	}

	cut := make([]bool, len(counts))
	if ub != nil {
		for i, l := range inkLayers {
			if l == nil {
				continue
			}
			lightness := inkLightness(l.Ink)
			cut[i] = lightness < opt.UnderbaseThreshold
			if cut[i] {
				s.Logger.Debug("ink removed from underbase", "ink", l.Name, "lightness", lightness)
			}
		}
	}

	ox, oy := sheet.Art.Min.X, sheet.Art.Min.Y
	for y := visible.Min.Y; y < visible.Max.Y; y++ {
		for x := visible.Min.X; x < visible.Max.X; x++ {
			i := ix.At(x-ox, y-oy)
			if i == Transparent {
				continue
			}
			off := inkLayers[i].Mask.PixOffset(x, y)
			inkLayers[i].Mask.Pix[off] = 255
			if ub != nil && !cut[i] {
				ub.Mask.Pix[off] = 255
			}
		}
	}

	if ub != nil {
		for i, n := range counts {
			if !cut[i] {
				ub.Pixels += n
			}
		}
		sheet.Layers = append(sheet.Layers, ub)
	}
	for _, l := range inkLayers {
		if l == nil {
			continue
		}
		s.Logger.Debug("ink separated", "ink", l.Name, "pixels", l.Pixels)
		sheet.Layers = append(sheet.Layers, l)
	}
}

// inkLightness returns the LCh lightness of c in [0,1]. Pure black comes out
// of the Lab conversion a hair below zero.
func inkLightness(c colorful.Color) float64 {
	_, _, l := c.Hcl()
	return min(1, max(0, l))
}

// ============ COLOR MATCH ============

func (s *Separator) matchColors(sheet *Sheet, opt Options) error {
	lib := s.Library
	if lib == nil {
		lib = palette.NewLibrary(palette.DefaultDirs()...)
		lib.Logger = s.Logger
	}
	for _, l := range sheet.Inks() {
		ink := s.Inks.Entries[l.Index]
		m, err := lib.FindClosest(ink.Color, opt.MatchPalette)
		if err != nil {
			return fmt.Errorf("match %s: %w", ink.Label(), err)
		}
		sheet.Matches = append(sheet.Matches, ColorMatch{Ink: ink, Match: m})
		l.Name = m.Entry.Label()
		s.Logger.Info("ink matched",
			"ink", ink.Label(),
			"match", m.Entry.Label(),
			"deltaE", fmt.Sprintf("%.2f", m.Distance),
		)
	}
	return nil
}

// ============ REGISTRATION & LABELS ============

func (s *Separator) register(sheet *Sheet, opt Options) {
	reg := &Layer{
		Name:  "REG",
		Kind:  KindRegistration,
		Index: -1,
		Mask:  image.NewAlpha(sheet.canvasRect()),
	}
	r := registrationRect(opt, sheet.Width)
	drawRegistration(reg.Mask, r, opt.Resolution)
	sheet.Registration = reg
	s.Logger.Debug("registration mark placed", "rect", r)
}

// label writes each print layer's name into the layer itself, left to right
// starting above the registration mark.
func (s *Separator) label(sheet *Sheet, opt Options) error {
	face, err := loadFace(opt.Font, opt.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	reg := registrationRect(opt, sheet.Width)
	pt := image.Point{X: reg.Min.X, Y: reg.Min.Y - opt.FontSize - labelGap}
	for _, l := range sheet.Layers {
		w := drawLabel(l.Mask, face, pt, l.Name)
		pt.X += w + opt.LabelSpacing
	}
	return nil
}
