package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
	"github.com/five82/shinyhunt/internal/config"
	"github.com/five82/shinyhunt/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	prefsPath  string
	pokedex    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "shinyhunt",
		Short:         "Track caught and shiny Pokémon",
		Long:          "shinyhunt tracks caught and shiny Pokémon against the Scarlet/Violet Pokédexes.\nWith no subcommand it opens the terminal UI.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: flags.configPath,
				PrefsPath:  flags.prefsPath,
				Pokedex:    flags.pokedex,
			})
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/shinyhunt/prefs.toml)")
	cmd.Flags().StringVar(&flags.pokedex, "pokedex", "", "Pokédex to open: paldea, kitakami or blueberry-academy")

	cmd.AddCommand(
		newServeCmd(flags),
		newStatusCmd(flags),
		newMarkCmd(flags),
		newCatchAllCmd(flags),
		newReleaseAllCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newRecentCmd(flags),
	)
	return cmd
}

// withServices opens the caught store for a one-shot command. Logs go to
// the command's stderr.
func withServices(cmd *cobra.Command, flags *rootFlags, fn func(*app.Services) error) (err error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	services, err := app.OpenServices(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}()
	return fn(services)
}
