package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/hestia/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server and the monitoring server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	// Canceled on Ctrl+C or SIGTERM, which starts the graceful shutdown.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	logger := application.log
	if application.cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	webServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", application.cfg.Port),
		Handler:           web.NewServer(logger, application.finder).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	monitoringServer := newMonitoringServer(application)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.InfoContext(ctx, "Starting web server", "port", application.cfg.Port)
		return listen(webServer)
	})
	group.Go(func() error {
		logger.InfoContext(ctx, "Starting monitoring server", "port", application.cfg.HealthPort)
		return listen(monitoringServer)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return errors.Join(webServer.Shutdown(shutdownCtx), monitoringServer.Shutdown(shutdownCtx))
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Application stopped with error", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s failed: %w", server.Addr, err)
	}

	return nil
}
