// Command inksplit separates an image into spot color films for screen
// printing.
//
// Usage:
//
//	inksplit separate shirt.png --palette shop-inks --export --out films/
//	inksplit separate shirt.png --colors 5 --match --match-palette pantone-solid-coated
//	inksplit match 0.9 0.05 0.05 --palette graphic-design
//	inksplit palettes
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/setanarut/inksplit/palette"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	verbose     bool
	paletteDirs []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "inksplit",
		Short:         "Spot color separations for screen printing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log every pipeline step")
	root.PersistentFlags().StringArrayVar(&g.paletteDirs, "palette-dir", nil,
		"extra directory searched for .gpl palettes (repeatable, searched first)")

	root.AddCommand(newSeparateCmd(g), newMatchCmd(g), newPalettesCmd(g))
	return root
}

func (g *globalFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (g *globalFlags) library(logger *slog.Logger) *palette.Library {
	lib := palette.NewLibrary(slices.Concat(g.paletteDirs, palette.DefaultDirs())...)
	lib.Logger = logger
	return lib
}
