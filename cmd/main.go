package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rag-compliance-assistant/internal/ai"
	"rag-compliance-assistant/internal/config"
	"rag-compliance-assistant/internal/logger"
	"rag-compliance-assistant/internal/telemetry"
	"rag-compliance-assistant/internal/vectorstore/pinecone"
	"rag-compliance-assistant/middleware"
	"rag-compliance-assistant/routes"
	"rag-compliance-assistant/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("rag-compliance-assistant", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdown()
	}

	// Service clients are process-wide singletons, created once here and
	// injected; none of them hold per-request state.
	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingModel, cfg.GeminiRPM)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer aiClient.Close()

	index := pinecone.NewClient(pinecone.Config{
		APIKey:        cfg.PineconeAPIKey,
		Index:         cfg.PineconeIndex,
		ControllerURL: cfg.PineconeControllerURL,
		IndexHost:     cfg.PineconeIndexHost,
	})

	ragService := services.NewRAGService(aiClient, index, cfg.EmbedBatchSize, cfg.TopK)
	translationService := services.NewTranslationService(aiClient)
	answerService := services.NewAnswerService(aiClient)
	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Rate limiting only when Redis is configured; fail open otherwise
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		} else {
			router.Use(middleware.RateLimitMiddleware(rdb, cfg))
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.Static("/static", "./static")
	router.GET("/", func(c *gin.Context) {
		c.File("static/index.html")
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	routes.SetupUploadRoutes(router, routes.UploadDeps{
		Config:     cfg,
		Chunker:    chunker,
		Indexer:    ragService,
		Translator: translationService,
		Answerer:   answerService,
	}, authMiddleware)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
