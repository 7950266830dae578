package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agribot/internal/config"
	"agribot/internal/dataset"
	"agribot/internal/handler"
	"agribot/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("AgriBot Fertilizer Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize dataset store
	store := dataset.NewStore(cfg.Dataset.CropPath, cfg.Dataset.DistrictPath, cfg.Dataset.PreviewRows)
	log.Printf("📂 Crop dataset: %s", cfg.Dataset.CropPath)
	log.Printf("📂 District dataset: %s", cfg.Dataset.DistrictPath)

	// Attempt the initial load; a missing file is not fatal, the chat
	// surface prompts for an upload instead.
	if crops, districts, err := store.Tables(); err != nil {
		if errors.Is(err, dataset.ErrSourceMissing) {
			log.Printf("⚠️  Waiting for data: %v", err)
			log.Printf("   Upload datasets via POST /api/v1/datasets/upload")
		} else {
			log.Printf("⚠️  Dataset load failed: %v", err)
		}
	} else {
		log.Printf("✅ Crops loaded: %d rows", len(crops.Rows))
		log.Printf("✅ Districts loaded: %d rows", len(districts.Rows))
	}

	// Watch the default files so on-disk edits invalidate the cache
	if cfg.Dataset.WatchFiles {
		if err := store.Watch(); err != nil {
			log.Printf("⚠️  Dataset file watching disabled: %v", err)
		} else {
			defer store.Close()
			log.Println("✅ Watching dataset files for changes")
		}
	}

	// Initialize services
	extractor := service.NewExtractor(store)
	advisor := service.NewAdvisor(store)
	chatService := service.NewChatService(extractor, advisor, cfg.Chat.Greeting, cfg.Chat.MaxHistory)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	datasetHandler := handler.NewDatasetHandler(store)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "agribot",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Chat endpoints
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream) // Streaming chat
		apiV1.GET("/sessions/:id", chatHandler.GetSession)

		// Dataset endpoints
		apiV1.GET("/datasets/status", datasetHandler.Status)
		apiV1.POST("/datasets/upload", datasetHandler.Upload)
		apiV1.POST("/datasets/reset", datasetHandler.Reset)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
