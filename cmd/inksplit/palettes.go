package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPalettesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "List palettes resolvable by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range g.library(g.logger()).List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
