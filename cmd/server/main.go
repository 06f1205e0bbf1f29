package main

import (
	"arcadechat/internal/cache"
	"arcadechat/internal/config"
	"arcadechat/internal/match"
	"arcadechat/internal/race"
	"arcadechat/internal/registry"
	"arcadechat/internal/repository"
	"arcadechat/internal/service"
	"arcadechat/internal/transport/rest"
	"arcadechat/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories and caches
	gameRepo := repository.NewGameRepo(db)
	resultCache := cache.NewResultCache(rdb)

	// Initialize in-memory room state
	roomRegistry := registry.New()
	matchStore := match.NewStore()

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	gameSvc := service.NewGameService(gameRepo, authSvc)

	// Initialize countdown scheduler (wsHub implements race.Broadcaster)
	scheduler := race.NewScheduler(gameRepo, resultCache, cfg.TickInterval)
	scheduler.SetBroadcaster(wsHub)
	defer scheduler.Shutdown()

	wsHandler := ws.NewHandler(wsHub, authSvc, gameSvc, roomRegistry, matchStore, scheduler)

	// Create router with container
	container := &rest.Container{
		GameService: gameSvc,
		Results:     resultCache,
		WSHandler:   wsHandler,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/games")
		log.Println("  POST /v1/games/{gameId}/join")
		log.Println("  GET  /v1/games/{gameId}")
		log.Println("  GET  /v1/games/{gameId}/results")
		log.Println("  WS   /v1/ws")

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
