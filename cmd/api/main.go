package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"classroom-recorder/internal/api"
	"classroom-recorder/internal/config"
	"classroom-recorder/internal/db"
	"classroom-recorder/internal/filer"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/queue"
	"classroom-recorder/internal/recording"
	"classroom-recorder/internal/session"
	"classroom-recorder/internal/storage"
	"classroom-recorder/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize storage; missing credentials are reported per submission
	client, err := storage.New(cfg)
	if err != nil {
		if !errors.Is(err, errors.ErrConfigurationMissing) {
			log.Fatal().Err(err).Msg("Failed to initialize storage")
		}
		log.Warn().Err(err).Msg("Storage is not configured, recordings will be rejected")
	}

	stager, err := storage.NewStager(cfg.Storage.StagingDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare staging directory")
	}

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Initialize repository
	repo := db.NewRepository(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize queue producer
	producer := queue.NewProducer(redisClient, cfg)

	service := recording.NewService(recording.Options{
		Filer:        filer.New(stager, filer.ParseNamingConvention(cfg.Recording.Naming), cfg.Groups()),
		Client:       client,
		RootFolderID: cfg.Storage.RootFolderID,
		Repo:         repo,
		Producer:     producer,
		Groups:       cfg.Groups(),
	})

	// Initialize API handler
	handler := api.NewHandler(cfg, session.NewResolver(session.DefaultsFromConfig(cfg)), service)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RecoveryMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(api.MaxBodySize(cfg.Server.MaxUploadBytes))

	// Setup routes
	api.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
