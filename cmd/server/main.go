package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tcg-catalog/internal/config"
	"github.com/tcg-catalog/internal/handler"
	"github.com/tcg-catalog/internal/middleware"
	"github.com/tcg-catalog/internal/repository"
	"github.com/tcg-catalog/internal/repository/gormrepo"
	"github.com/tcg-catalog/internal/repository/mongodb"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/internal/worker"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := middleware.InitLogger(cfg.Log.Dir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize store
	store, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	middleware.LogInfo("Store ready: %s", store.Name())

	// Initialize Redis
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = initRedis(cfg)
	}

	// Initialize services
	userService := service.NewUserService(store.Users)
	collectionService := service.NewCollectionService(store.Collections, store.Cards)
	cardService := service.NewCardService(store.Cards, store.Collections)
	deckService := service.NewDeckService(store.Decks, store.Users, store.Cards)
	statsService := service.NewStatsService(store.Stats, store.Users)
	integrityService := service.NewIntegrityService(store)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(store, rdb, handler.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	})
	userHandler := handler.NewUserHandler(userService, deckService, statsService)
	collectionHandler := handler.NewCollectionHandler(collectionService, statsService)
	cardHandler := handler.NewCardHandler(cardService, statsService)
	deckHandler := handler.NewDeckHandler(deckService, statsService)
	statsHandler := handler.NewStatsHandler(statsService, integrityService)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.WriteLoggerMiddleware())
	router.Use(corsMiddleware())

	healthHandler.RegisterRoutes(router)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		v1.Use(middleware.RateLimitMiddleware(middleware.NewRedisCounter(rdb), cfg.RateLimit.Requests, window))
	}
	{
		userHandler.RegisterRoutes(v1)
		collectionHandler.RegisterRoutes(v1)
		cardHandler.RegisterRoutes(v1)
		deckHandler.RegisterRoutes(v1)
		statsHandler.RegisterRoutes(v1)
	}

	// Start the scheduled integrity audit
	var auditWorker *worker.AuditWorker
	if cfg.Audit.Enabled {
		auditWorker, err = worker.NewAuditWorker(integrityService, cfg.Audit.Schedule, 0)
		if err != nil {
			log.Fatalf("Failed to create audit worker: %v", err)
		}
		auditWorker.Start()
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		middleware.LogInfo("Starting server on %s (version %s)", addr, Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	middleware.LogInfo("Shutting down server...")

	if auditWorker != nil {
		auditWorker.Stop()
	}

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		middleware.LogError("Server forced to shutdown: %v", err)
	}

	if err := store.Close(shutdownCtx); err != nil {
		middleware.LogError("Error closing store: %v", err)
	}

	// Close Redis connection
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			middleware.LogError("Error closing Redis connection: %v", err)
		}
	}

	middleware.LogInfo("Server exited properly")
}

func initStore(cfg *config.Config) (*repository.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.Driver == config.DriverMongo {
		client, err := mongodb.Connect(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.Database.MongoDatabase)); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return mongodb.NewStore(client, cfg.Database.MongoDatabase), nil
	}

	driver, dsn, err := cfg.Database.SQL()
	if err != nil {
		return nil, err
	}

	logLevel := logger.Info
	if cfg.Server.Mode == gin.ReleaseMode {
		logLevel = logger.Warn
	}

	if driver == gormrepo.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := gormrepo.Open(driver, dsn, logLevel)
	if err != nil {
		return nil, err
	}
	if err := gormrepo.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return gormrepo.NewStore(db), nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
