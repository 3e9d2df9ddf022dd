package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-simulator/config"
	httpLayer "loan-simulator/http"
	"loan-simulator/logging"
	"loan-simulator/repository"
	"loan-simulator/scheduler"
	"loan-simulator/service"

	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", config.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(conf, logger); err != nil {
		logger.Error("server stopped with error", zap.String("op", "main"), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(conf *config.Configuration, logger *zap.Logger) error {
	ctx := context.Background()

	var productRepo repository.ProductRepository
	if conf.Database.Driver == config.DriverMemory {
		logger.Info("using in-memory product table", zap.String("op", "main"))
		productRepo = repository.NewProductRepositoryMemory(repository.DefaultProducts()...)
	} else {
		sqlRepo, err := repository.NewSQLiteProductRepository(
			conf.Database.Driver, conf.Database.DSN(), conf.Database.Seed, logger,
		)
		if err != nil {
			return fmt.Errorf("product repository: %w", err)
		}
		defer sqlRepo.Close()
		productRepo = sqlRepo
	}

	var cache repository.CacheRepository = repository.NewMemoryCache()
	if conf.Cache.Address != "" {
		client, err := repository.NewRedisClient(ctx, conf.Cache.Address, 0)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		redisCache := repository.NewRedisCache(client)
		defer redisCache.Close()
		cache = redisCache
	} else {
		logger.Info("cache.address not set, using in-memory product cache", zap.String("op", "main"))
	}

	var publisher repository.EventPublisher
	if conf.EventHub.ConnectionString != "" {
		client, err := repository.NewRedisClient(ctx, conf.EventHub.ConnectionString, conf.EventHub.MaxRetries)
		if err != nil {
			return fmt.Errorf("event hub: %w", err)
		}
		defer client.Close()
		publisher = repository.NewRedisStreamPublisher(client, conf.EventHub.Name, conf.EventHub.MaxLen, logger)
	} else {
		logger.Warn("eventHub.connectionString not set, simulations will not be published", zap.String("op", "main"))
		publisher = repository.NewNoopPublisher(logger)
	}

	catalog := repository.NewProductCatalog(productRepo, cache, conf.Cache.TTL, logger)
	if err := catalog.Refresh(ctx); err != nil {
		logger.Warn("initial catalog load failed", zap.String("op", "main"), zap.Error(err))
	}

	refresher, err := scheduler.NewCatalogRefresher(conf.Catalog.RefreshCron, catalog, logger)
	if err != nil {
		return err
	}
	refresher.Start()
	defer refresher.Stop()

	simulationService := service.NewSimulationService(catalog, publisher, logger)
	simulationHandler := httpLayer.NewSimulationHandler(simulationService, logger)

	rateLimiter := httpLayer.NewRateLimiter(conf.RateLimit.Capacity, conf.RateLimit.Refill)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         conf.Server.Address,
		Handler:      httpLayer.NewRouter(simulationHandler, rateLimiter, logger),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening", zap.String("op", "main"), zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
		logger.Info("shutting down server", zap.String("op", "main"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	logger.Info("server exited", zap.String("op", "main"))
	return nil
}
