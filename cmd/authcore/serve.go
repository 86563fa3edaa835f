// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/web"
)

const readHeaderTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand. deps may be nil.
func NewServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the auth HTTP API",
		Long: `Run the auth HTTP API together with the metrics and health probe
server. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, deps)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.SetDefault(serviceName, version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	logger.Info("starting auth server",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"production", cfg.Production,
	)

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	obsServer := deps.ObservabilityServerFactory(cfg.MetricsAddr, pool.Ping, logger)
	metrics := obsServer.Metrics()

	svc, err := buildServices(pool, cfg, logger, metrics)
	if err != nil {
		return err
	}
	router, err := web.NewRouter(svc, web.Options{
		Production: cfg.Production,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obsErrChan, err := obsServer.Start()
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to start observability server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	logger.Info("observability server started", "addr", obsServer.Addr())

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
		close(errChan)
	}()

	cmd.Println("AuthCore server started")
	logger.Info("auth server ready", "addr", listener.Addr().String())

	var serveErr error
	select {
	case err, ok := <-errChan:
		if ok {
			serveErr = fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	if serveErr != nil {
		return serveErr
	}
	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a background server fails. It exits
// when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
