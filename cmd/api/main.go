package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio-insight/internal/cache"
	"studio-insight/internal/config"
	"studio-insight/internal/database"
	"studio-insight/internal/handler"
	"studio-insight/internal/repository"
	"studio-insight/internal/router"
	"studio-insight/internal/service"
	"studio-insight/internal/storage"

	"github.com/go-redis/redis/v8"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting studio-insight API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	digitalRepo := repository.NewDigitalProductRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Optional Redis cache in front of the catalogue. The service
	// degrades to Postgres-only reads when disabled or unreachable.
	var productCache *cache.ProductCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).
				Msg("redis unreachable, catalogue cache disabled")
		} else {
			productCache = cache.NewProductCache(client, time.Duration(cfg.Redis.TTL)*time.Second, logger)
			defer client.Close()
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("catalogue cache enabled")
		}
	}

	// Initialize S3-backed file store for gated downloads
	fileStore, err := storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.Prefix, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	// Initialize services
	productService := service.NewProductService(productRepo, productCache, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, service.CheckoutConfig{
		RedirectBaseURL: cfg.Payment.RedirectBaseURL,
		DefaultCurrency: cfg.Payment.Currency,
	}, logger)
	accessService := service.NewAccessService(
		digitalRepo,
		orderRepo,
		fileStore,
		time.Duration(cfg.Storage.PresignTTL)*time.Second,
		logger,
	)
	userService := service.NewUserService(userRepo, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	downloadHandler := handler.NewDownloadHandler(accessService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	adminHandler := handler.NewAdminHandler(productService, orderService, accessService, userService, logger)

	// Initialize router
	mux := router.New(
		productHandler,
		cartHandler,
		orderHandler,
		downloadHandler,
		userHandler,
		adminHandler,
		userService,
		router.Config{
			AdminAPIKey:   cfg.Auth.AdminAPIKey,
			WebhookAPIKey: cfg.Auth.WebhookAPIKey,
		},
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
