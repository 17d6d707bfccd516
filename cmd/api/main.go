package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-hotseat/internal/config"
	"github.com/iamasit07/connect4-hotseat/internal/repository/postgres"
	"github.com/iamasit07/connect4-hotseat/internal/repository/redis"
	"github.com/iamasit07/connect4-hotseat/internal/service/cleanup"
	"github.com/iamasit07/connect4-hotseat/internal/service/game"
	transportHttp "github.com/iamasit07/connect4-hotseat/internal/transport/http"
	"github.com/iamasit07/connect4-hotseat/internal/transport/http/middleware"
	"github.com/iamasit07/connect4-hotseat/internal/transport/websocket"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 1. Archive (optional)
	var repo game.GameRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatal("Database unreachable:", err)
		}
		defer db.Close()

		log.Println("Running database migrations...")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

		repo = postgres.NewGameRepo(db)
	} else {
		log.Println("[DB] DATABASE_URL not set, finished games will not be archived")
	}

	// 2. Snapshot cache (optional)
	var cache game.SnapshotCache
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Tables live in memory only.", err)
		} else {
			defer client.Close()
			cache = redis.NewRedisCache(client)
		}
	}

	// 3. Services
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(repo, cache, connManager, game.Options{
		DefaultSettings: cfg.DefaultSettings,
		MaxWidth:        cfg.MaxBoardWidth,
		MaxHeight:       cfg.MaxBoardHeight,
		SnapshotTTL:     cfg.TableIdleTimeout,
	})
	gameService := game.NewService(repo)

	// 4. Background workers
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.CleanupInterval, cfg.TableIdleTimeout)
	go cleanupWorker.Start(ctx)

	// 5. Handlers
	secureCookies := strings.HasPrefix(cfg.FrontendURL, "https://")
	tableHandler := transportHttp.NewTableHandler(sessionManager, cfg.TableTokenSecret, cfg.TableTokenTTL, secureCookies)
	watchHandler := transportHttp.NewWatchHandler(sessionManager)
	historyHandler := transportHttp.NewHistoryHandler(gameService)
	wsHandler := websocket.NewHandler(connManager, sessionManager, cfg.TableTokenSecret, cfg.AllowedOrigins)

	// 6. Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", transportHttp.Health)

	router.POST("/api/tables", tableHandler.CreateTable)
	router.GET("/api/tables", watchHandler.GetLiveTables)
	router.GET("/api/tables/:id", tableHandler.GetTable)

	// Mutations need the token issued when the table was created
	table := router.Group("/api/tables/:id")
	table.Use(middleware.TableAuthMiddleware(cfg.TableTokenSecret))
	{
		table.POST("/moves", tableHandler.SubmitMove)
		table.POST("/restart", tableHandler.Restart)
		table.DELETE("", tableHandler.DeleteTable)
	}

	router.GET("/api/history", historyHandler.GetHistory)
	router.GET("/api/history/:id", historyHandler.GetGameDetails)

	// WebSocket Route (auth handled inside the WS handler itself)
	router.GET("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
