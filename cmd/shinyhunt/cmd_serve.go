package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shinyhunt/internal/app"
	"github.com/five82/shinyhunt/internal/config"
	"github.com/five82/shinyhunt/internal/logging"
	"github.com/five82/shinyhunt/internal/proxy"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the caching PokeAPI proxy",
		Long:  "serve exposes /api/pokemon/<path>, /api/pokemon/batch?urls=a,b,c, /healthz and /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			// The proxy always talks to PokeAPI directly.
			cfg.ProxyURL = ""
			metrics := proxy.NewMetrics()
			client, err := app.NewFetcher(cfg, metrics, logger.With("component", "pokeapi"))
			if err != nil {
				return fmt.Errorf("init pokeapi client: %w", err)
			}

			if bind == "" {
				bind = cfg.ProxyBind
			}
			server := proxy.NewServer(client, metrics, logger.With("component", "proxy"))
			return server.Run(cmd.Context(), bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from config, "+proxy.DefaultBind+")")
	return cmd
}
