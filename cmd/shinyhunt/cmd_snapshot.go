package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
)

func newExportCmd(root *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of caught state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, root, func(s *app.Services) error {
				data, err := s.Caught.ExportJSON()
				if err != nil {
					return err
				}
				data = append(data, '\n')
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace caught state with a JSON snapshot (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			return withServices(cmd, root, func(s *app.Services) error {
				if err := s.Caught.ImportJSON(data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported: %d caught, %d shiny\n", s.Caught.CaughtCount(), s.Caught.ShinyCount())
				return nil
			})
		},
	}
}
