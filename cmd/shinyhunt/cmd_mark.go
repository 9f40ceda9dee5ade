package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
)

type markFlags struct {
	state      string
	rangeValue string
	gen        int
}

func newMarkCmd(root *rootFlags) *cobra.Command {
	flags := &markFlags{}
	cmd := &cobra.Command{
		Use:   "mark [id...]",
		Short: "Set the state of national ids",
		Example: "  shinyhunt mark 25 133 --state shiny\n" +
			"  shinyhunt mark --range 1-151\n" +
			"  shinyhunt mark --gen 9 --state none",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := caught.ParseState(flags.state)
			if err != nil {
				return err
			}
			selectors := 0
			if len(args) > 0 {
				selectors++
			}
			if flags.rangeValue != "" {
				selectors++
			}
			if flags.gen != 0 {
				selectors++
			}
			if selectors != 1 {
				return errors.New("give ids, --range or --gen (exactly one)")
			}

			return withServices(cmd, root, func(s *app.Services) error {
				switch {
				case flags.rangeValue != "":
					start, end, err := dex.ParseRange(flags.rangeValue)
					if err != nil {
						return err
					}
					if err := s.Caught.SetRange(start, end, st); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "marked %d-%d %s\n", start, end, st)
				case flags.gen != 0:
					g, err := dex.GenerationByNumber(flags.gen)
					if err != nil {
						return err
					}
					if err := s.Caught.SetRange(g.First, g.Last, st); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "marked generation %d (%s) %s\n", g.Number, g.Region, st)
				default:
					ids, err := parseIDs(args)
					if err != nil {
						return err
					}
					if err := s.Caught.Apply(ids, st); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "marked %d ids %s\n", len(ids), st)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.state, "state", "caught", "state to set: caught, shiny or none")
	f.StringVar(&flags.rangeValue, "range", "", "inclusive national id range, e.g. 1-151")
	f.IntVar(&flags.gen, "gen", 0, "generation number 1-9")
	return cmd
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newCatchAllCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catch-all",
		Short: "Mark every national id caught",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, root, func(s *app.Services) error {
				if err := s.Caught.CatchAll(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "caught %d/%d\n", s.Caught.CaughtCount(), caught.MaxID)
				return nil
			})
		},
	}
}

func newReleaseAllCmd(root *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "release-all",
		Short: "Clear all caught state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("release-all clears every caught and shiny mark; pass --yes to confirm")
			}
			return withServices(cmd, root, func(s *app.Services) error {
				if err := s.Caught.ReleaseAll(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "released all")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}
