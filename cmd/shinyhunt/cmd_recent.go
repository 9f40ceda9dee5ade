package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
)

func newRecentCmd(root *rootFlags) *cobra.Command {
	var (
		limit   int
		sprites bool
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent catches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, root, func(s *app.Services) error {
				out := cmd.OutOrStdout()
				recent := s.Caught.RecentlyCaught(limit)
				if len(recent) == 0 {
					fmt.Fprintln(out, "nothing caught yet")
					return nil
				}
				for _, r := range recent {
					st, _ := s.Caught.State(r.ID)
					marker := ""
					if st == caught.Shiny {
						marker = " shiny"
					}
					line := fmt.Sprintf("#%04d  %s%s", r.ID, r.At.Local().Format(time.DateTime), marker)
					if sprites {
						line += "  " + dex.SpriteURL(r.ID, st == caught.Shiny)
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	cmd.Flags().BoolVar(&sprites, "sprites", false, "append each entry's sprite URL")
	return cmd
}
