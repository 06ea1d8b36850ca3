package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/db"
	"classroom-recorder/internal/filer"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/queue"
	"classroom-recorder/internal/recording"
	"classroom-recorder/internal/storage"
	"classroom-recorder/internal/worker"
	"classroom-recorder/pkg/errors"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().
		Str("version", cfg.App.Version).
		Int("workers", cfg.Workers.Filing.Count).
		Msg("Starting filing worker")

	// Jobs still get a ConfigurationMissing result on the ledger when storage is absent
	client, err := storage.New(cfg)
	if err != nil {
		if !errors.Is(err, errors.ErrConfigurationMissing) {
			log.Fatal().Err(err).Msg("Failed to initialize storage")
		}
		log.Warn().Err(err).Msg("Storage is not configured, queued recordings will fail")
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

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	if pending, dead, err := redisClient.Depth(context.Background()); err == nil {
		log.Info().Int64("pending", pending).Int64("dead_letters", dead).Msg("Filing queue depth")
	}

	service := recording.NewService(recording.Options{
		Filer:        filer.New(stager, filer.ParseNamingConvention(cfg.Recording.Naming), cfg.Groups()),
		Client:       client,
		RootFolderID: cfg.Storage.RootFolderID,
		Repo:         db.NewRepository(database),
		Groups:       cfg.Groups(),
	})

	filingWorker := worker.NewFilingWorker(queue.NewConsumer(redisClient, cfg), service.HandleMessage, cfg.Workers.Filing.Count)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	go func() {
		if err := filingWorker.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("Filing worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down filing worker...")

	// Cancel context to stop worker
	cancel()
	filingWorker.Stop()

	log.Info().Msg("Filing worker exited")
}
