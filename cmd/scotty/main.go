package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/config"
	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/handler"
	"github.com/scottyfin/scotty-core-go/internal/infra/backend"
	"github.com/scottyfin/scotty-core-go/internal/infra/cache"
	"github.com/scottyfin/scotty-core-go/internal/infra/observability"
	"github.com/scottyfin/scotty-core-go/internal/infra/resilience"
	"github.com/scottyfin/scotty-core-go/internal/local"
	"github.com/scottyfin/scotty-core-go/internal/service"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("probe_timeout", cfg.ProbeTimeout),
		zap.Duration("upgrade_timeout", cfg.UpgradeTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "scotty-core")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	dailyCache := cache.New[domain.DailyPayload](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("scotty-backend")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backendClient := backend.NewClient(httpClient, cfg.BackendURL, cfg.UserID, cb, resilienceCfg, logger)

	// --- Local generators ---
	impulseMerchants := cfg.ImpulseMerchants
	if len(impulseMerchants) == 0 {
		impulseMerchants = analysis.DefaultImpulseMerchants
	}
	seed := cfg.SeedRandSource
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeder := local.NewSeeder(impulseMerchants, seed)
	responder := local.NewResponder(rand.New(rand.NewSource(seed)))

	// --- State + services ---
	store := state.New()
	timings := service.Timings{
		Probe:   cfg.ProbeTimeout,
		Upgrade: cfg.UpgradeTimeout,
		Daily:   cfg.DailyTimeout,
	}
	coordinator := service.NewCoordinator(backendClient, store, seeder, dailyCache, bulkhead, metrics, logger, timings, impulseMerchants, nil)
	dispatcher := service.NewDispatcher(backendClient, store, seeder, responder, dailyCache, metrics, logger, timings, nil)

	// The local baseline is ready before the server accepts traffic;
	// the backend upgrade runs behind it and never blocks startup.
	coordinator.SeedLocal()

	upgradeCtx, cancelUpgrade := context.WithCancel(context.Background())
	go coordinator.Upgrade(upgradeCtx)

	// --- Router ---
	router := handler.NewRouter(store, dispatcher, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	cancelUpgrade()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
