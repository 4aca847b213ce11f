package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/config"
	"github.com/tontinehub/tontine-admin-bfa/internal/handler"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/cache"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/client"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/memstore"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/resilience"
	"github.com/tontinehub/tontine-admin-bfa/internal/port"
	"github.com/tontinehub/tontine-admin-bfa/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
	}

	// --- Config ---
	cfg := config.Load()
	loc := cfg.Location()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("timezone", loc.String()),
		zap.Bool("remote_store", cfg.DataAPIURL != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("snapshot_cache_ttl", cfg.SnapshotCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
	)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if loc.String() != cfg.Timezone {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone))
	}

	// --- Auth ---
	// Keep above the first deferred hook: Fatal skips deferred calls.
	var authSvc *service.AuthService
	if cfg.AuthDisabled {
		logger.Warn("auth disabled: admin routes are unprotected")
	} else {
		hash := cfg.AdminPasswordHash
		if hash == "" {
			var err error
			hash, err = service.HashPassword(cfg.AdminPassword)
			if err != nil {
				logger.Fatal("failed to hash admin password", zap.Error(err))
			}
		}
		authSvc = service.NewAuthService(cfg.AdminUsername, hash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
		logger.Info("auth service enabled", zap.String("admin", cfg.AdminUsername))
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "tontine-admin-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	snapshotCache := cache.New[any](cfg.SnapshotCacheTTL)
	defer snapshotCache.Close()

	// --- Data collaborator ---
	var store port.AdminStore
	if cfg.DataAPIURL != "" {
		logger.Info("using remote data API", zap.String("data_api_url", cfg.DataAPIURL))
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("data-api", logger)
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		store = client.NewDataClient(httpClient, cfg.DataAPIURL, cb, resilienceCfg, logger)
	} else {
		clock := func() time.Time { return time.Now().In(loc) }
		opts := []memstore.Option{memstore.WithClock(clock)}
		if cfg.SeedDemoData {
			users, groups, txns := memstore.DemoData(clock())
			opts = append(opts, memstore.WithData(users, groups, txns))
		}
		store = memstore.New(opts...)
		logger.Info("using in-memory data store", zap.Bool("demo_data", cfg.SeedDemoData))
	}

	// --- Services ---
	adminSvc := service.NewAdminService(
		store,
		snapshotCache,
		metrics,
		logger,
		service.WithLocation(loc),
	)

	// --- Router ---
	router := handler.NewRouter(adminSvc, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("server failed", zap.Error(err))
		return
	}

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
