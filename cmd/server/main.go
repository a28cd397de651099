package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Khadka1996/everestnews-server/internal/api"
	"github.com/Khadka1996/everestnews-server/internal/api/handlers"
	"github.com/Khadka1996/everestnews-server/internal/cache"
	"github.com/Khadka1996/everestnews-server/internal/config"
	"github.com/Khadka1996/everestnews-server/internal/repository/mongodb"
	"github.com/Khadka1996/everestnews-server/internal/service"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting news backend server",
		"version", "1.0.0",
		"mode", cfg.Server.Mode,
	)

	// Initialize document store
	db, err := mongodb.New(cfg.Mongo)
	if err != nil {
		log.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	log.Info("MongoDB connected", "database", cfg.Mongo.Database)

	// Initialize cache. A failed connection is not fatal: reads fall
	// back to the store until the cache comes back.
	cacheClient := cache.NewClient(cfg.Redis, log)
	defer cacheClient.Close()

	if cacheClient.IsReady() {
		log.Info("Redis connected", "addr", cfg.Redis.Addr)
	} else {
		log.Warn("Redis not reachable, serving uncached reads", "addr", cfg.Redis.Addr)
	}

	// Initialize repositories
	articleRepo := mongodb.NewArticleRepository(db)
	englishRepo := mongodb.NewEnglishArticleRepository(db)
	referenceRepo := mongodb.NewReferenceRepository(db)

	// Initialize services
	articleService := service.NewArticleService(articleRepo, referenceRepo, cacheClient, cfg, log)
	englishService := service.NewEnglishService(englishRepo, cacheClient, cfg, log)

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(articleService, log)
	englishHandler := handlers.NewEnglishHandler(englishService, log)
	healthHandler := handlers.NewHealthHandler(db, cacheClient, log)

	// Initialize router
	router := api.NewRouter(
		articleHandler,
		englishHandler,
		healthHandler,
		cfg,
		log,
	)

	engine := router.Setup()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start the publish scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var scheduler *service.PublishScheduler
	if cfg.Scheduler.Enabled {
		scheduler = service.NewPublishScheduler(articleRepo, articleService, cfg.Scheduler.Interval, log)
		go scheduler.Start(ctx)
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Server started successfully", "address", addr)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background services
	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped gracefully")
}
