// Package main is the entry point for the dice API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"

	"dice/internal/config"
	"dice/internal/domain/auth"
	"dice/internal/domain/feed"
	"dice/internal/infrastructure/cache"
	v1 "dice/internal/infrastructure/http/v1"
	"dice/internal/infrastructure/http/v1/handlers"
	"dice/internal/infrastructure/http/v1/middleware"
	"dice/internal/infrastructure/storage/postgres"
	"dice/internal/infrastructure/storage/postgres/feed_repo"
	"dice/internal/infrastructure/storage/redis"
	"dice/pkg/logger"
)

func main() {
	cfg, err := config.InitServerConfig()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting dice server", "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLife
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdle

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	pool.LogStats(ctx)

	txm := postgres.NewTxManager(pool)
	healthChecks := map[string]handlers.Pinger{"database": txm}

	// --- Dismissals ---
	var dismissals feed.DismissalStore
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()

		dismissals = redis.NewDismissalStore(client, cfg.DismissalTTL)
		healthChecks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		log.Infow("redis connection established", "addr", cfg.Redis.Addr)
	} else {
		log.Warn("REDIS_ADDR not set, high-priority dismissals are disabled")
	}

	// --- Feed service ---
	svc := feed.NewService(feed.ServiceConfig{
		News:            feed_repo.NewNewsRepo(txm),
		Alerts:          feed_repo.NewAlertRepo(txm),
		Signals:         feed_repo.NewSignalRepo(txm),
		Dismissals:      dismissals,
		SnapshotTTL:     cfg.SnapshotTTL,
		DefaultPageSize: cfg.DefaultPageSize,
		Logger:          log,
	})

	if cfg.ListenNotify {
		invalidator := cache.NewInvalidator(pool.Pool)
		invalidator.OnInvalidation(svc.Invalidate)
		invalidator.Start(ctx)
		defer invalidator.Stop()
		log.Infow("feed invalidation listener started", "channel", cache.Channel)
	}

	// --- Auth ---
	var validator middleware.JWTValidator
	if cfg.JWTSecret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Issuer = cfg.Issuer
		validator = auth.NewJWTService(jwtCfg)
	} else if cfg.Required {
		log.Fatal("JWT_REQUIRED is set but JWT_SECRET is empty")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Feed:            svc,
		Logger:          log,
		JWTValidator:    validator,
		RequireAuth:     cfg.Required,
		HealthChecks:    healthChecks,
		DefaultPageSize: cfg.DefaultPageSize,
	})

	var handler http.Handler = router
	if cfg.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "gzip", cfg.Gzip)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
