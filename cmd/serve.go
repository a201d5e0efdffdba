package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/app"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			a := app.InitializeApp(cfg)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				a.Close(ctx)
			}()

			server := app.NewServer(a.Router, cfg.Server.Port,
				app.WithWriteTimeout(cfg.Search.Timeout*2),
				app.WithShutdownTimeout(cfg.Search.Timeout+5*time.Second),
			)

			log.Info().Str("version", version).Msg("Starting farepath service")
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")

	return cmd
}
