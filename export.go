package inksplit

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

type Format int

const (
	FormatPostScript Format = iota
	FormatPNG
)

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "ps"
}

func (f Format) Ext() string {
	return "." + f.String()
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ps", "postscript":
		return FormatPostScript, nil
	case "png":
		return FormatPNG, nil
	}
	return FormatPostScript, fmt.Errorf("%w: format %q", ErrInvalidOptions, s)
}

type ExportOptions struct {
	Dir string
	// File name prefix, usually the input file stem.
	Base   string
	Format Format
	// Files written at once. Zero means GOMAXPROCS.
	Workers int
}

// Export writes one film per print layer, each with the registration mark,
// to Dir as <Base>_<layer><ext>. It returns the paths in layer order. The
// first failure cancels the remaining writes.
func Export(ctx context.Context, sheet *Sheet, eo ExportOptions) ([]string, error) {
	if err := os.MkdirAll(eo.Dir, 0o755); err != nil {
		return nil, err
	}
	workers := eo.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	paths := exportPaths(sheet, eo)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range sheet.Layers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFilm(paths[i], sheet.Film(l), float64(sheet.Resolution), l.Name, eo.Format)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// exportPaths names each layer's file. Repeated layer names get a numeric
// suffix so that no file is overwritten.
func exportPaths(sheet *Sheet, eo ExportOptions) []string {
	seen := make(map[string]int)
	paths := make([]string, len(sheet.Layers))
	for i, l := range sheet.Layers {
		name := fileSafe(l.Name)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		paths[i] = filepath.Join(eo.Dir, eo.Base+"_"+name+eo.Format.Ext())
	}
	return paths
}

func fileSafe(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "layer"
	}
	return name
}

// writeFilm writes one film file. A failed write leaves no file behind.
func writeFilm(path string, film *image.Gray, dpi float64, title string, f Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	bw := bufio.NewWriter(file)
	switch f {
	case FormatPNG:
		err = png.Encode(bw, film)
	default:
		err = WritePostScript(bw, film, dpi, title)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return bw.Flush()
}
