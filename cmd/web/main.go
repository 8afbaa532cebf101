package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nirvista/onboard/internal/config"
	"github.com/nirvista/onboard/internal/infra"
	"github.com/nirvista/onboard/internal/logging"
	"github.com/nirvista/onboard/internal/server"
	"github.com/nirvista/onboard/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppName, cfg.AppEnv)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.StoreBackend == config.BackendPostgres {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	// Redis also backs the submit guard and resend limiter, so connect
	// whenever it is configured.
	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	var store session.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pg := session.NewPostgresStore(db, cfg.SessionTTL)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("prepare client state table", "error", err)
			os.Exit(1)
		}
		store = pg
	case config.BackendRedis:
		store = session.NewRedisStore(cache, cfg.SessionTTL)
	default:
		store = session.NewMemoryStore()
	}
	logger.Info("client state store ready", "backend", cfg.StoreBackend)

	srv, err := server.New(cfg, store, db, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
