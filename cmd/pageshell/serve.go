package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simp-lee/pageshell/internal/app"
	"github.com/simp-lee/pageshell/internal/config"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until SIGINT or SIGTERM, then drain in-flight
requests for server.shutdown_timeout.

Settings come from the YAML file and may be overridden with APP__ prefixed
environment variables, e.g. APP__SERVER__PORT=9090.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("create app: %w", err)
			}
			return a.Run()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to configuration file")
	return cmd
}
