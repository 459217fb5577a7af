package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/fleet-availability/internal/area"
	"github.com/example/fleet-availability/internal/audit"
	"github.com/example/fleet-availability/internal/config"
	"github.com/example/fleet-availability/internal/eligibility"
	"github.com/example/fleet-availability/internal/fleet"
	httpapi "github.com/example/fleet-availability/internal/http"
	"github.com/example/fleet-availability/internal/logging"
	"github.com/example/fleet-availability/internal/migration"
	"github.com/example/fleet-availability/internal/storage"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	var store storage.Store
	if cfg.PGDSN != "" {
		if cfg.RunMigrations {
			if err := migration.Run(cfg.PGDSN, cfg.MigrationsDir); err != nil {
				logger.Error("migrations failed", "error", err)
				os.Exit(1)
			}
			logger.Info("migrations applied", "dir", cfg.MigrationsDir)
		}
		ps, err := storage.NewPostgresStore(cfg.PGDSN, cfg.StoreTimeout)
		if err != nil {
			logger.Error("spatial store unavailable", "error", err)
			os.Exit(1)
		}
		defer ps.Close()
		store = ps
	} else {
		logger.Warn("PG_DSN not set, using in-memory store")
		store = storage.NewMemoryStore()
	}

	resolver := &area.Resolver{Source: store, Logger: logger}
	if cfg.RedisAddr != "" {
		resolver.Cache = area.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.ResolverTTL)
	}

	auditor := &audit.Logger{Sink: store, Logger: logger, Timeout: cfg.StoreTimeout}
	if len(cfg.KafkaBrokers) > 0 {
		stream := audit.NewStream(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer stream.Close()
		auditor.Stream = stream
	}

	pipeline := &eligibility.Pipeline{
		Riders:     store,
		Areas:      resolver,
		Fleet:      &fleet.Repository{Source: store},
		Audit:      auditor,
		Logger:     logger,
		MinBalance: cfg.MinRideBalance,
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewServer(pipeline, store, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("fleet-availability listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
	// finish in-flight history writes before the process exits
	if err := auditor.Drain(shutdownCtx); err != nil {
		logger.Warn("audit drain interrupted", "error", err)
	}
}
