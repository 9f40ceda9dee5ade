package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show caught progress per generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, root, func(s *app.Services) error {
				out := cmd.OutOrStdout()
				total := caught.Tally{Caught: s.Caught.CaughtCount(), Shiny: s.Caught.ShinyCount(), Total: caught.MaxID}
				fmt.Fprintf(out, "Caught:  %d/%d (%.1f%%)\n", total.Caught, total.Total, total.Percent())
				fmt.Fprintf(out, "Shiny:   %d\n", total.Shiny)
				fmt.Fprintf(out, "Storage: %s (%s)\n", s.Config.Storage, s.Config.StoragePath())
				fmt.Fprintln(out)
				for _, g := range dex.Generations() {
					t := s.Caught.Counts(idRange(g.First, g.Last))
					fmt.Fprintf(out, "Gen %-2d %-7s %4d/%-4d shiny %-4d %5.1f%%\n", g.Number, g.Region, t.Caught, t.Total, t.Shiny, t.Percent())
				}
				return nil
			})
		},
	}
}

func idRange(first, last int) []int {
	ids := make([]int, 0, last-first+1)
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}
	return ids
}
