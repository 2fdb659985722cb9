package main

import (
	"context"
	"log"
	"menuengine/internal/app"
	"menuengine/internal/cache"
	"menuengine/internal/config"
	"menuengine/internal/metrics"
	"menuengine/internal/repository"
	"menuengine/internal/service"
	"menuengine/internal/transport/rest"
	"menuengine/internal/transport/ws"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()
	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Model:     %s", aiConfig.Model)
	log.Printf("  Fallback:  %t", aiConfig.TemplateFallback)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:   configured ✓")
	} else {
		log.Println("  API Key:   NOT SET (template synthesis only)")
	}

	// Menu cache
	var menuCache cache.MenuCache
	var memoryCache *cache.MemoryMenuCache
	if cfg.UseRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")
		menuCache = cache.NewRedisMenuCache(rdb)
	} else {
		memoryCache = cache.NewMemoryMenuCache()
		menuCache = memoryCache
		log.Println("Using in-process menu cache")
	}

	// MongoDB is optional: partner menus and the resolution log
	var providerRepo repository.ProviderMenuRepo
	var resolutionRepo repository.ResolutionRepo
	if cfg.MongoEnabled() {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		db := mongoClient.Database(cfg.MongoDatabase)
		providerRepo = repository.NewProviderMenuRepo(db)
		resolutionRepo = repository.NewResolutionRepo(db)
	} else {
		log.Println("Warning: MONGO_URI not set, partner menus and resolution log disabled")
	}

	var providers []service.ProviderMenuSource
	if providerRepo != nil {
		providers = append(providers, providerRepo)
	}
	engine, err := app.New(cfg, aiConfig, menuCache, providers...)
	if err != nil {
		log.Fatal("Failed to build menu engine:", err)
	}
	log.Printf("Template catalog version %s", engine.Templates.Version())

	// Metrics
	engine.MenuService.SetMetrics(metrics.NewRecorder(prometheus.DefaultRegisterer))
	if memoryCache != nil {
		metrics.RegisterCache(prometheus.DefaultRegisterer, memoryCache)
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Inject broadcaster (wsHub implements service.Broadcaster)
	engine.MenuService.SetBroadcaster(wsHub)
	if resolutionRepo != nil {
		engine.MenuService.SetRecorder(resolutionRepo)
	}

	// Create router with container
	container := &rest.Container{
		MenuService:    engine.MenuService,
		Classifier:     engine.Classifier,
		Templates:      engine.Templates,
		WSHub:          wsHub,
		MetricsHandler: promhttp.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if providerRepo != nil && resolutionRepo != nil {
		container.ProviderMenus = providerRepo
		container.Resolutions = resolutionRepo
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/places/{placeId}/menu")
		log.Println("  POST /v1/places/{placeId}/menu/ai")
		log.Println("  POST /v1/classify")
		log.Println("  GET  /v1/templates[/{cuisine}]")
		if container.ProviderMenus != nil {
			log.Println("  PUT/DELETE /v1/places/{placeId}/provider-menu")
			log.Println("  GET  /v1/places/{placeId}/resolutions")
		}
		log.Println("  WS   /v1/ws/places/{placeId}")
		log.Println("  GET  /health, /metrics")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
