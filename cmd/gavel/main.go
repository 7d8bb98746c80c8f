package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gavel-oj/gavel/pkg/api"
	"github.com/gavel-oj/gavel/pkg/config"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/session"
	"github.com/gavel-oj/gavel/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)

	db, err := postgres.Connect(postgres.ConnectionConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		Timeout:  cfg.Database.Timeout,
	})
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db); err != nil {
		logger.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}
	logger.Info("database ready")

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer sessions.Close()

	server := api.NewServer(cfg, db, sessions, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting gavel server")
		if cfg.TestMode {
			logger.Warn("test mode is enabled, /test routes are exposed")
		}
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
