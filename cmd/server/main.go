package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/timepass/backend/internal/auth"
	"github.com/timepass/backend/internal/cache"
	"github.com/timepass/backend/internal/chat"
	"github.com/timepass/backend/internal/config"
	"github.com/timepass/backend/internal/database"
	"github.com/timepass/backend/internal/feed"
	"github.com/timepass/backend/internal/handlers"
	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/middleware"
	"github.com/timepass/backend/internal/notifications"
	"github.com/timepass/backend/internal/search"
	"github.com/timepass/backend/internal/stories"
	"github.com/timepass/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("=== Timepass server starting ===")

	// Initialize database and run migrations
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs recent searches; the server runs without it
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		log.Printf("Warning: Redis unavailable, recent searches disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Pick the media backend once at startup
	backend, err := cfg.MediaBackend()
	if err != nil {
		log.Fatalf("Failed to configure media backend: %v", err)
	}

	var sink storage.MediaSink
	switch backend {
	case config.MediaBackendExternal:
		sink = storage.NewExternalHostSink(cfg.ExternalMediaURL, cfg.ExternalMediaAPIKey, cfg.ExternalMediaPreset)
		log.Println("Media backend: external host")
	case config.MediaBackendS3:
		s3Sink, err := storage.NewS3Sink(cfg.S3Region, cfg.S3Bucket, cfg.CDNBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize S3 sink: %v", err)
		}
		if err := s3Sink.CheckBucketAccess(context.Background()); err != nil {
			log.Printf("Warning: S3 bucket access failed: %v", err)
			log.Println("Continuing without verified S3 access - uploads may fail")
		}
		sink = s3Sink
		log.Println("Media backend: S3")
	}

	// Wire up services
	authService := auth.NewService(database.DB, []byte(cfg.JWTSecret))
	notificationService := notifications.NewService(database.DB)
	storyService := stories.NewService(database.DB, sink, notificationService)
	feedService := feed.NewService(database.DB, notificationService)

	var recent *search.RecentSearches
	if redisClient != nil {
		recent = search.NewRecentSearches(redisClient)
	}
	searchService := search.NewService(database.DB, recent)
	chatService := chat.NewService(database.DB)

	// Counter reconciliation runs every 15 minutes
	reconciler := stories.NewReconcileService(database.DB, 15*time.Minute)
	reconciler.Start()
	defer reconciler.Stop()

	h := handlers.NewHandlers(
		authService,
		storyService,
		feedService,
		searchService,
		chatService,
		notificationService,
		sink,
		backend,
	)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	h.SetupRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Timepass backend listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
