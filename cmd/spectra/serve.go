package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/spectra/pkg/api"
	"github.com/r3d91ll/spectra/pkg/logging"
	"github.com/r3d91ll/spectra/pkg/processor"
	"github.com/r3d91ll/spectra/pkg/results"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			logger := logging.For("server")

			proc := processor.New(processor.Config{
				URL:              cfg.Processor.URL,
				Timeout:          cfg.Processor.Timeout,
				MaxResponseBytes: cfg.Upload.MaxBytes,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := proc.Health(ctx); err != nil {
				logger.Warn().Err(err).Str("url", proc.URL()).Msg("processor not reachable, uploads will fail until it is")
			}

			server := api.NewServer(cfg.Server, api.Deps{
				Registry:  results.NewRegistry(),
				Processor: proc,
				Upload:    cfg.Upload,
				Chart:     cfg.Chart,
				Bounds:    cfg.Processor,
				Logger:    &logger,
			})
			if err := server.Start(); err != nil {
				return err
			}

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	return cmd
}
