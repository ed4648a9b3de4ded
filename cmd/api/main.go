package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/config"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
	"github.com/bimakw/tax-harvester/internal/infrastructure/cache"
	"github.com/bimakw/tax-harvester/internal/infrastructure/database"
	"github.com/bimakw/tax-harvester/internal/infrastructure/dataset"
	"github.com/bimakw/tax-harvester/internal/infrastructure/metrics"
	"github.com/bimakw/tax-harvester/internal/infrastructure/session"
	"github.com/bimakw/tax-harvester/internal/presentation/handlers"
	"github.com/bimakw/tax-harvester/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting tax-harvester API",
		zap.Int("port", cfg.API.Port),
		zap.String("holdings_source", cfg.Harvest.Source),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the holdings source
	var (
		holdingRepo repositories.HoldingRepository = dataset.NewEmbeddedRepo()
		dbChecker   handlers.HealthChecker
	)
	if cfg.Harvest.Source == config.SourcePostgres {
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repo := database.NewHoldingRepo(db.DB())
		if err := prepareHoldingsTable(ctx, repo, logger); err != nil {
			logger.Fatal("Failed to prepare holdings table", zap.Error(err))
		}
		holdingRepo = repo
		dbChecker = db
	}

	ds, err := services.LoadDataset(ctx, holdingRepo)
	if err != nil {
		logger.Fatal("Failed to load holdings", zap.Error(err))
	}
	logger.Info("Holdings loaded", zap.Int("count", ds.Len()))

	// Connect to Redis cache (optional)
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// Create stores and metrics
	sessions := session.NewMemoryStore()
	harvestMetrics := metrics.NewHarvestMetrics(prometheus.DefaultRegisterer)
	httpMetrics := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)

	// Create services
	holdingsService := services.NewHoldingsService(ds, redisCache, logger).
		WithPageSize(cfg.Harvest.PageSize)
	harvestService := services.NewHarvestService(
		ds,
		services.BaselineFromConfig(cfg.Harvest),
		sessions,
		harvestMetrics,
		logger,
	).WithPageSize(cfg.Harvest.PageSize)

	if err := holdingsService.InvalidateCache(ctx); err != nil {
		logger.Warn("Failed to invalidate holdings cache", zap.Error(err))
	}

	// Create handlers
	holdingsHandler := handlers.NewHoldingsHandler(holdingsService, harvestService, logger)
	sessionHandler := handlers.NewSessionHandler(harvestService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(dbChecker, cacheChecker, sessions, ds.Len())

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(httpMetrics))
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		holdingsHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Session janitor starting",
			zap.Duration("idle_timeout", cfg.Session.IdleTimeout),
			zap.Duration("sweep_interval", cfg.Session.SweepInterval),
		)
		return harvestService.RunJanitor(gctx, cfg.Session.SweepInterval, cfg.Session.IdleTimeout)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal, shutting down server...")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}

// prepareHoldingsTable creates the holdings table and seeds it from the
// bundled dataset when it is empty
func prepareHoldingsTable(ctx context.Context, repo *database.HoldingRepo, logger *zap.Logger) error {
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	records, err := dataset.NewEmbeddedRepo().GetAll(ctx)
	if err != nil {
		return err
	}
	if err := repo.Seed(ctx, records); err != nil {
		return err
	}

	logger.Info("Seeded holdings table", zap.Int("count", len(records)))
	return nil
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
