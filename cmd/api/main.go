package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopsense/backend/internal/adapters/cache"
	"github.com/shopsense/backend/internal/adapters/database"
	"github.com/shopsense/backend/internal/api/handlers"
	"github.com/shopsense/backend/internal/api/routes"
	"github.com/shopsense/backend/internal/application/services"
	"github.com/shopsense/backend/internal/domain/providers"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/shopsense/backend/internal/infrastructure/clients/groq"
	"github.com/shopsense/backend/internal/infrastructure/clients/postgres"
	"github.com/shopsense/backend/internal/infrastructure/clients/redis"
	"github.com/shopsense/backend/internal/infrastructure/observability"
	"github.com/shopsense/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("shopsense-backend", cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Ensure the conversation and catalog tables exist
	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Initialize Redis client; the service runs without caching if unavailable
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Println("Redis client initialized successfully")
	}

	// Initialize adapters
	conversationAdapter := database.NewConversationAdapter(pgClient)

	var catalogAdapter repositories.CatalogRepository = database.NewCatalogAdapter(pgClient)
	if cacheProvider != nil {
		catalogAdapter = database.NewCachedCatalogAdapter(catalogAdapter, cacheProvider, metrics)
		log.Println("Catalog adapter wrapped with caching layer")
	} else {
		log.Println("Catalog adapter running without cache (Redis unavailable)")
	}

	// Initialize the LLM client
	groqClient, err := groq.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize Groq client: %v", err)
	}

	// Initialize services
	chatService := services.NewChatService(
		conversationAdapter,
		services.NewIntentClassifier(groqClient),
		services.NewContextBuilder(catalogAdapter),
		services.NewResponseComposer(groqClient),
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)
	sessionHandler := handlers.NewSessionHandler(conversationAdapter)

	// Set up router
	router := routes.NewRouter(chatHandler, sessionHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
