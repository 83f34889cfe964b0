package main

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
)

func newMatchCmd(g *globalFlags) *cobra.Command {
	var (
		paletteName string
		hex         string
	)
	cmd := &cobra.Command{
		Use:   "match [R G B]",
		Short: "Find the closest palette color (CIE76) to an RGB color in [0,1]",
		Args: func(cmd *cobra.Command, args []string) error {
			if hex != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args, hex)
			if err != nil {
				return err
			}
			m, err := g.library(g.logger()).FindClosest(target, paletteName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.4f\n", m.Entry.Label(), m.Entry.Color.Hex(), m.Distance)
			return nil
		},
	}
	cmd.Flags().StringVarP(&paletteName, "palette", "p", "graphic-design", "reference palette name or .gpl file")
	cmd.Flags().StringVar(&hex, "hex", "", "target as #rrggbb instead of R G B")
	return cmd
}

// parseTarget reads the target color from three channel arguments or a hex
// code. Range checks are left to the matcher.
func parseTarget(args []string, hex string) (colorful.Color, error) {
	if hex != "" {
		c, err := colorful.Hex(hex)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("bad hex color %q: %w", hex, err)
		}
		return c, nil
	}
	var ch [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("bad channel %q: %w", a, err)
		}
		ch[i] = v
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
