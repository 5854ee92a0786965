package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/grimoireapp/grimoire-server/internal/config"
	"github.com/grimoireapp/grimoire-server/internal/di"
	"github.com/grimoireapp/grimoire-server/internal/logger"
)

func newServeCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Start the tracker web server and block until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	injector := di.NewContainer(cfg)

	srv, err := di.Bootstrap(injector)
	if err != nil {
		injector.Shutdown() //nolint:errcheck // already failing
		return err
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
		log.Info("Shutting down server gracefully...")
	case serveErr = <-srv.Errors():
		log.Error("Server stopped unexpectedly", "error", serveErr)
	}

	// The container shuts services down in reverse dependency order,
	// so the HTTP server drains before the database closes.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Goodbye")
	return serveErr
}
