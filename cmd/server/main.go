package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"bethel-social/internal/auth"
	"bethel-social/internal/config"
	"bethel-social/internal/database"
	"bethel-social/internal/handlers"
	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize and start the background sync jobs
	workerService := worker.NewWorkerService(database.DB, cfg)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background sync jobs:", err)
	}

	// Setup graceful shutdown
	setupGracefulShutdown(workerService)

	// Setup HTTP server
	setupServer(cfg, workerService)
}

func setupGracefulShutdown(workerService *worker.WorkerService) {
	// Setup signal handling for graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		// Stop background sync jobs
		workerService.Stop()

		// Close database connection
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(cfg *config.Config, workerService *worker.WorkerService) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	feedHandler := handlers.NewFeedHandler(database.DB, workerService)
	syncHandler := handlers.NewSyncHandler(workerService, verifier)
	webhookHandler := handlers.NewWebhookHandler(workerService, cfg.FacebookVerifyToken)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", feedHandler.HealthCheck)

	// Realtime feed updates
	r.GET("/ws", func(c *gin.Context) {
		workerService.Hub().ServeWS(c.Writer, c.Request)
	})

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	// Facebook webhook: GET is the verification handshake, POST carries
	// content events that re-trigger the incremental sync
	r.GET("/webhooks/facebook", webhookHandler.Verify)
	r.POST("/webhooks/facebook", webhookHandler.Receive)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/feed", feedHandler.GetFeed)

		sync := api.Group("/sync", syncHandler.AdminAuth())
		{
			sync.POST("/facebook", syncHandler.TriggerFacebookSync)
			sync.POST("/youtube", syncHandler.TriggerYouTubeSync)
			sync.GET("/debug", feedHandler.GetSyncDebug)
		}

		workerGroup := api.Group("/worker")
		{
			workerGroup.GET("/status", feedHandler.WorkerStatus)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
