package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"quest-forge/internal/ai"
	"quest-forge/internal/config"
	"quest-forge/internal/handler"
	"quest-forge/internal/logger"
	"quest-forge/internal/middleware"
	"quest-forge/internal/session"
	"quest-forge/internal/world"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		OutputPath: cfg.Logger.OutputPath,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.Logger.Level))

	// --- World Dataset ---
	worldData, err := world.Load()
	if err != nil {
		zap.L().Fatal("Failed to load world dataset", zap.Error(err))
	}
	zap.L().Info("World dataset loaded",
		zap.String("world", worldData.World.Name),
		zap.Int("factions", len(worldData.Factions)),
		zap.Int("locations", len(worldData.Locations)),
	)

	// --- Dependency Injection ---
	aiClient := ai.NewClient(ai.Config{
		Endpoint: cfg.AI.Endpoint,
		APIKey:   cfg.AI.APIKey,
		Timeout:  cfg.AI.Timeout,
	}, log.Named("AIClient"))

	gameSession := session.New(worldData, aiClient, log.Named("Session"))
	questHandler := handler.NewQuestHandler(gameSession, worldData, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.AppEnv == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	questHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.Server.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}
