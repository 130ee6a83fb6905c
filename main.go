package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sjsage522/freegameworker/config"
	"sjsage522/freegameworker/helpers"
	"sjsage522/freegameworker/internal/stores"
	"sjsage522/freegameworker/logger"
	"sjsage522/freegameworker/services/cache"
	"sjsage522/freegameworker/services/catalog"
	"sjsage522/freegameworker/services/metrics"
	"sjsage522/freegameworker/services/publisher"
	"sjsage522/freegameworker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("poll_interval", cfg.PollInterval).
		Strs("stores", cfg.Stores).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Create stores
	storefronts := stores.CreateStores(cfg, services.Cache, services.Metrics)
	if len(storefronts) == 0 {
		log.Fatal().Msg("No stores were created")
	}

	log.Info().
		Int("store_count", len(storefronts)).
		Msg("Created stores")

	// Create and start worker
	w := worker.NewWorker(
		storefronts,
		helpers.NewFetcher(helpers.NewHTTPClient(cfg.HTTPTimeout)),
		services.Catalog,
		services.Publisher,
		services.Metrics,
		worker.Config{
			Interval:    cfg.PollInterval,
			WaitRetries: cfg.CatalogRetries,
			WaitDelay:   cfg.CatalogWaitDelay,
			SubmitDelay: cfg.SubmitDelay,
		},
	)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting free game worker")
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			services.Cleanup()
			log.Fatal().Err(err).Msg("Worker exited with error")
		}
		log.Info().Msg("Worker exited normally")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache         cache.CacheService
	Catalog       catalog.Catalog
	Publisher     publisher.Publisher
	Metrics       *metrics.Metrics
	metricsServer *http.Server
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.metricsServer.Shutdown(shutdownCtx)
		s.metricsServer = nil
	}
}

// initializeServices initializes all configured services. Optional backends
// that are not configured or not reachable are left out.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{Metrics: metrics.New()}

	var cat catalog.Catalog = catalog.NewClient(cfg.CatalogURL, cfg.CatalogToken, cfg.HTTPTimeout)
	logger.Info("Using catalog service at %s", cfg.CatalogURL)

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.LogError("Cache", err, "memcache at %s not reachable, running without cache", cfg.MemcacheAddr)
		} else {
			services.Cache = memcacheService
			cat = catalog.NewCachedCatalog(cat, memcacheService, cfg.ExistsCacheTTL)
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}
	services.Catalog = cat

	// Initialize publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			logger.LogError("Publisher", err, "redis at %s not reachable, announcements disabled", cfg.RedisAddr)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	// Expose metrics
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", services.Metrics.Handler())
		services.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := services.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.LogError("Metrics", err, "metrics listener on %s stopped", cfg.MetricsAddr)
			}
		}()
		logger.Info("Serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	return services
}
