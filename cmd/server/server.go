package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/infrastructure/crontab"
	"github.com/janhq/chat-engine/internal/infrastructure/logger"
	"github.com/janhq/chat-engine/internal/infrastructure/observability"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver"

	_ "net/http/pprof"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	config     *config.Config
	logger     zerolog.Logger
}

// Start runs the HTTP server, the pprof listener and the crontab until ctx is cancelled or one of them fails.
func (application *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	if application.config.PprofPort > 0 {
		eg.Go(func() error {
			return application.runPprof(ctx)
		})
	}
	eg.Go(func() error {
		return application.crontab.Run(ctx)
	})
	eg.Go(func() error {
		return application.httpServer.Run(ctx)
	})

	return eg.Wait()
}

func (application *Application) runPprof(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", application.config.PprofPort),
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("pprof server: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("application stopped")
		os.Exit(1)
	}
}

// run owns every deferred cleanup so telemetry is flushed before main exits.
func run() error {
	log := logger.GetLogger()

	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}

	application, err := CreateApplication()
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	log = application.logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.Setup(ctx, application.config, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	log.Info().
		Str("version", config.Version).
		Str("gateway", application.config.GatewayProvider).
		Str("default_model", application.config.DefaultModel).
		Msg("starting chat engine")

	if err := application.Start(ctx); err != nil {
		return err
	}
	log.Info().Msg("application stopped")
	return nil
}
