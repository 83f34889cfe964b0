package main

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/setanarut/inksplit"
	"github.com/setanarut/inksplit/palette"
	"github.com/setanarut/inksplit/utils"
	"github.com/spf13/cobra"
)

type separateFlags struct {
	opt      inksplit.Options
	location string

	palette string
	colors  int
	method  string

	out     string
	export  bool
	format  string
	workers int
	preview string
}

func newSeparateCmd(g *globalFlags) *cobra.Command {
	f := &separateFlags{opt: inksplit.DefaultOptions()}
	cmd := &cobra.Command{
		Use:   "separate IMAGE",
		Short: "Split an image into one black film per ink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeparate(cmd, g, f, args[0])
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.opt.CanvasWidth, "canvas-width", f.opt.CanvasWidth, "film width (in)")
	fl.Float64Var(&f.opt.CanvasHeight, "canvas-height", f.opt.CanvasHeight, "film height (in)")
	fl.Float64Var(&f.opt.CanvasMargin, "canvas-margin", f.opt.CanvasMargin, "space above the art (in)")
	fl.IntVar(&f.opt.Resolution, "dpi", f.opt.Resolution, "film resolution")
	fl.StringVar(&f.location, "location", f.opt.Location.String(), "print location: left, right or center")
	fl.Float64Var(&f.opt.CenterOffset, "center-offset", f.opt.CenterOffset, "distance from the centre line for left/right prints (in)")
	fl.Float64Var(&f.opt.VerticalOffset, "vertical-offset", f.opt.VerticalOffset, "move art and registration down (in)")
	fl.Float64Var(&f.opt.PrintWidth, "print-width", f.opt.PrintWidth, "max print width, 0 = unconstrained (in)")
	fl.Float64Var(&f.opt.PrintHeight, "print-height", f.opt.PrintHeight, "max print height, 0 = unconstrained (in)")
	fl.BoolVar(&f.opt.Underbase, "underbase", f.opt.Underbase, "generate an underbase film")
	fl.Float64Var(&f.opt.UnderbaseThreshold, "underbase-threshold", f.opt.UnderbaseThreshold,
		"inks darker than this lightness (0-1) are left out of the underbase")
	fl.StringVar(&f.opt.Font, "font", f.opt.Font, "label font ("+strings.Join(inksplit.FontNames(), ", ")+")")
	fl.IntVar(&f.opt.FontSize, "font-size", f.opt.FontSize, "label size (px)")
	fl.IntVar(&f.opt.LabelSpacing, "label-spacing", f.opt.LabelSpacing, "gap between labels (px)")
	fl.BoolVar(&f.opt.Dither, "dither", f.opt.Dither, "Floyd-Steinberg dithering while reducing to the inks")
	fl.Float64Var(&f.opt.RegistrationSize, "registration-size", f.opt.RegistrationSize, "registration mark size (in)")
	fl.BoolVar(&f.opt.ColorMatch, "match", f.opt.ColorMatch, "rename inks after their closest reference color")
	fl.StringVar(&f.opt.MatchPalette, "match-palette", f.opt.MatchPalette, "reference palette for --match")

	fl.StringVarP(&f.palette, "palette", "p", "", "ink palette name or .gpl file")
	fl.IntVarP(&f.colors, "colors", "k", 6, "number of inks to extract when no --palette is given")
	fl.StringVar(&f.method, "method", utils.PaletteMethodDominantColor.String(), "ink extraction: dominantcolor or kmeans")

	fl.StringVarP(&f.out, "out", "o", ".", "output directory")
	fl.BoolVar(&f.export, "export", false, "write one film file per layer")
	fl.StringVar(&f.format, "format", inksplit.FormatPostScript.String(), "film format: ps or png")
	fl.IntVar(&f.workers, "workers", 0, "films written concurrently, 0 = GOMAXPROCS")
	fl.StringVar(&f.preview, "preview", "", "write a color preview PNG to this file")
	return cmd
}

func runSeparate(cmd *cobra.Command, g *globalFlags, f *separateFlags, input string) error {
	logger := g.logger()
	lib := g.library(logger)

	loc, err := inksplit.ParseLocation(f.location)
	if err != nil {
		return err
	}
	f.opt.Location = loc
	format, err := inksplit.ParseFormat(f.format)
	if err != nil {
		return err
	}

	img, err := utils.ReadImage(input)
	if err != nil {
		return err
	}

	inks, err := loadInks(lib, f, img)
	if err != nil {
		return err
	}
	logger.Info("inks", "palette", inks.Name, "count", inks.Len())

	sep := inksplit.NewSeparator(img, inks)
	sep.Library = lib
	sep.Logger = logger
	sheet, err := sep.Build(f.opt)
	if err != nil {
		return err
	}

	if f.opt.ColorMatch {
		fmt.Fprint(cmd.OutOrStdout(), sheet.Report())
	}
	if f.preview != "" {
		if err := utils.SaveImage(sheet.Preview(), f.preview); err != nil {
			return err
		}
	}
	if !f.export {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	paths, err := inksplit.Export(cmd.Context(), sheet, inksplit.ExportOptions{
		Dir:     f.out,
		Base:    base,
		Format:  format,
		Workers: f.workers,
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// loadInks resolves --palette, or extracts --colors inks from the image.
func loadInks(lib *palette.Library, f *separateFlags, img image.Image) (*palette.Palette, error) {
	if f.palette != "" {
		return lib.Lookup(f.palette)
	}
	method, err := utils.ParsePaletteMethod(f.method)
	if err != nil {
		return nil, err
	}
	return utils.InkPalette(img, f.colors, method)
}
