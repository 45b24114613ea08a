package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/timmy/tubescope/internal/config"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/service"
	"github.com/timmy/tubescope/internal/youtube"
)

// Standalone ingest worker. It shares the database-backed job queue with the
// API process, so it can be scaled independently; progress events stay local
// to each process and clients follow jobs through the status endpoint.
func main() {
	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = "tubescope-worker"
	appLogger := logger.New(logCfg)
	logger.SetDefault(appLogger)
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	youtubeClient := youtube.NewClient(&youtube.Config{
		APIKey:             cfg.YouTube.APIKey,
		BaseURL:            cfg.YouTube.BaseURL,
		MaxRetries:         cfg.YouTube.MaxRetries,
		BackoffBaseSeconds: cfg.YouTube.BackoffBaseSeconds,
		ConnectTimeout:     cfg.YouTube.ConnectTimeout,
		ReadTimeout:        cfg.YouTube.ReadTimeout,
	}, appLogger)

	ingestService := service.NewIngestService(jobRepo, youtubeClient, videoRepo, notify.Noop{}, appLogger, &service.IngestConfig{
		JobTimeout:   cfg.Jobs.Timeout(),
		PollInterval: cfg.Jobs.PollInterval,
		ResultTTL:    cfg.Jobs.ResultTTL(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workers := cfg.Jobs.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ingestService.Run(ctx)
		}()
	}
	appLogger.WithField(logger.FieldCount, workers).Info("Ingest workers started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down")

	cancel()
	wg.Wait()
	appLogger.Info("Workers stopped")
}
