package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"styleme/internal/config"
	"styleme/internal/handler"
	"styleme/internal/logging"
	"styleme/internal/repository"
	"styleme/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("StyleMe search API",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	gin.SetMode(cfg.Server.GinMode)

	if cfg.PostgreSQL.AutoMigrate {
		if err := repository.MigrateDSN(cfg.GetPostgreSQLDSN(), logger); err != nil {
			return err
		}
	}

	// Initialize database connection
	repo, err := repository.NewCatalogRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()
	logger.Info("Connected to PostgreSQL database", zap.String("database", cfg.PostgreSQL.Database))

	conversations, closeConversations, err := newConversationStore(cmd.Context(), &cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeConversations()

	retrieval := service.NewRetrievalClient(&cfg.Retrieval)
	if retrieval.IsEnabled() {
		logger.Info("Retrieval service enabled",
			zap.String("base_url", cfg.Retrieval.BaseURL),
			zap.Duration("timeout", cfg.Retrieval.Timeout),
			zap.Float64("rate_per_second", cfg.Retrieval.RatePerSecond))
	} else {
		logger.Warn("Retrieval service disabled, every search uses the database fallback")
	}

	// Initialize services
	vocab := service.NewCatalogVocabulary(repo, cfg.Search.VocabularyTTL, logger)
	extractor := service.NewExtractor()
	builder := service.NewQueryBuilder(repo, cfg.Search.PageSize, logger)
	scorer := service.NewScorer(float64(cfg.Search.MaxDisplayScore))
	searchService := service.NewSearchService(repo, vocab, extractor, builder, scorer, retrieval, cfg.Search.FallbackLimit, logger)
	chatService := service.NewChatService(repo, vocab, service.NewClassifier(extractor), extractor, builder, conversations, cfg.Search.ChatLimit, logger)

	router := newRouter(cfg, logger, repo, searchService, chatService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-quit:
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	searchService.WaitForLogs()
	logger.Info("Server stopped")
	return nil
}

func newRouter(cfg *config.Config, logger *zap.Logger, repo *repository.CatalogRepository, searchService *service.SearchService, chatService *service.ChatService) *gin.Engine {
	router := gin.New()
	router.Use(logging.RequestLogger(logger), handler.Recovery(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	for _, origin := range strings.Split(cfg.Server.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
		}
	}
	if cfg.Server.AllowedOrigins == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := repo.Ping(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "styleme-search",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	searchHandler := handler.NewSearchHandler(searchService)
	productHandler := handler.NewProductHandler(searchService)
	chatHandler := handler.NewChatHandler(chatService, handler.NewSessionStore(&cfg.Session), logger)
	embeddingHandler := handler.NewEmbeddingHandler(searchService)
	feedbackHandler := handler.NewFeedbackHandler(searchService)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Search endpoints
		apiV1.GET("/search", searchHandler.Search)
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/search/stream", searchHandler.SearchStream)

		// Storefront listing
		apiV1.GET("/products", productHandler.List)
		apiV1.GET("/products/:id", productHandler.Get)
		apiV1.GET("/filters", productHandler.Filters)

		// Chat assistant
		apiV1.POST("/chat", chatHandler.Handle)

		// Embedding endpoints
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Serve static files (frontend)
	router.NoRoute(handler.StaticFiles(os.DirFS(cfg.Server.StaticDir)))
	return router
}

// newConversationStore returns the Redis store when an address is configured,
// otherwise an in-process store
func newConversationStore(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (service.ConversationStore, func(), error) {
	if cfg.Addr == "" {
		logger.Info("Using in-memory conversation store")
		return service.NewMemoryConversationStore(cfg.ConversationTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to Redis conversation store", zap.String("addr", cfg.Addr))
	return service.NewRedisConversationStore(client, cfg.ConversationTTL), func() { _ = client.Close() }, nil
}
