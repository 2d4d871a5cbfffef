package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/bookhost/pkg/cli/config"
	controller "github.com/m-mizutani/bookhost/pkg/controller/http"
	"github.com/m-mizutani/bookhost/pkg/infra/event"
	"github.com/m-mizutani/bookhost/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		scopeCfg  config.Scope
		sentryCfg config.Sentry
	)

	flags := append(serverCfg.Flags(), scopeCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server exposing /invoke commands and the /events channel",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting bookhost server",
				slog.Any("server", serverCfg),
				slog.Any("scope", scopeCfg),
			)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			scope, err := scopeCfg.Build()
			if err != nil {
				return err
			}

			hub := event.NewHub()
			defer hub.Close()

			server, err := controller.NewServer(
				ctx,
				usecase.NewDirectory(scope),
				usecase.NewBookImport(),
				hub,
				controller.WithAddr(serverCfg.Addr),
				controller.WithAuthToken(serverCfg.AuthToken),
				controller.WithAllowedOrigins(serverCfg.AllowedOrigins),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Hijacked websocket connections are not tracked by Shutdown
			hub.Close()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
