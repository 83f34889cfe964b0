package inksplit

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
)

// toNRGBA copies img into a non-premultiplied image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// autocropBounds returns the smallest rectangle holding every pixel that
// differs from the top-left corner pixel. A uniform image keeps its bounds.
func autocropBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	if b.Empty() {
		return b
	}
	bg := img.NRGBAAt(b.Min.X, b.Min.Y)
	isBg := func(c color.NRGBA) bool {
		if bg.A == 0 {
			return c.A == 0
		}
		return c == bg
	}

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isBg(img.NRGBAAt(x, y)) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < minX {
		return b
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// printScale picks the factor that fits the art inside the print size. With
// both dimensions constrained the smaller factor wins.
func printScale(size image.Point, opt Options) float64 {
	dpi := float64(opt.Resolution)
	var factors []float64
	if opt.PrintWidth > 0 {
		factors = append(factors, opt.PrintWidth*dpi/float64(size.X))
	}
	if opt.PrintHeight > 0 {
		factors = append(factors, opt.PrintHeight*dpi/float64(size.Y))
	}
	if len(factors) == 0 {
		return 1
	}
	return floats.Min(factors)
}

// scaleArt crops and resamples the art to its print size. It returns the
// resulting image and the applied factor.
func scaleArt(img *image.NRGBA, opt Options) (*image.NRGBA, float64) {
	if opt.PrintWidth <= 0 && opt.PrintHeight <= 0 {
		return img, 1
	}
	crop := autocropBounds(img)
	art := toNRGBA(img.SubImage(crop))
	s := printScale(crop.Size(), opt)
	if s == 1 {
		return art, 1
	}
	w := max(1, int(float64(crop.Dx())*s))
	h := max(1, int(float64(crop.Dy())*s))
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), art, art.Bounds(), draw.Src, nil)
	return out, s
}
