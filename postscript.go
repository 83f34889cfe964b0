package inksplit

import (
	"bufio"
	"encoding/ascii85"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
)

// psLineWidth bounds the ASCII85 data lines; DSC readers expect lines under
// 255 characters.
const psLineWidth = 76

// WritePostScript writes img as a single page PostScript Language Level 2
// document. The page is sized so that the image prints at dpi.
func WritePostScript(w io.Writer, img *image.Gray, dpi float64, title string) error {
	b := img.Bounds()
	wpx, hpx := b.Dx(), b.Dy()
	if wpx == 0 || hpx == 0 {
		return ErrEmptyImage
	}
	if dpi <= 0 {
		dpi = 72
	}
	wpt := float64(wpx) * 72 / dpi
	hpt := float64(hpx) * 72 / dpi
	title = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, title)

	bw := bufio.NewWriter(w)
	bw.WriteString("%!PS-Adobe-3.0\n")
	bw.WriteString("%%Creator: inksplit\n")
	fmt.Fprintf(bw, "%%%%Title: %s\n", title)
	fmt.Fprintf(bw, "%%%%BoundingBox: 0 0 %d %d\n", int(math.Ceil(wpt)), int(math.Ceil(hpt)))
	fmt.Fprintf(bw, "%%%%HiResBoundingBox: 0 0 %.4f %.4f\n", wpt, hpt)
	bw.WriteString("%%LanguageLevel: 2\n%%Pages: 1\n%%EndComments\n")
	bw.WriteString("%%Page: 1 1\n")
	bw.WriteString("gsave\n")
	fmt.Fprintf(bw, "%.4f %.4f scale\n", wpt, hpt)
	bw.WriteString("/DeviceGray setcolorspace\n")
	fmt.Fprintf(bw, "<<\n /ImageType 1\n /Width %d\n /Height %d\n /BitsPerComponent 8\n /Decode [0 1]\n", wpx, hpx)
	fmt.Fprintf(bw, " /ImageMatrix [%d 0 0 -%d 0 %d]\n", wpx, hpx, hpx)
	bw.WriteString(" /DataSource currentfile /ASCII85Decode filter\n>>\nimage\n")

	lw := &lineWrapper{w: bw, width: psLineWidth}
	enc := ascii85.NewEncoder(lw)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		if _, err := enc.Write(img.Pix[off : off+wpx]); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if lw.err != nil {
		return lw.err
	}
	// Keep the end-of-data marker within the line limit.
	if lw.col > lw.width-2 {
		bw.WriteString("\n")
	}
	bw.WriteString("~>\ngrestore\nshowpage\n%%Trailer\n%%EOF\n")
	return bw.Flush()
}

// lineWrapper inserts a newline every width bytes.
type lineWrapper struct {
	w     io.Writer
	width int
	col   int
	err   error
}

func (l *lineWrapper) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 && l.err == nil {
		chunk := min(len(p), l.width-l.col)
		var k int
		k, l.err = l.w.Write(p[:chunk])
		n += k
		l.col += k
		p = p[k:]
		if l.col == l.width {
			_, l.err = l.w.Write([]byte{'\n'})
			l.col = 0
		}
	}
	return n, l.err
}
