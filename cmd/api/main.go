package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/timmy/tubescope/internal/api"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/config"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/ratelimit"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/service"
	"github.com/timmy/tubescope/internal/storage"
	"github.com/timmy/tubescope/internal/youtube"
)

func main() {
	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = "tubescope-api"
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

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify.Enabled {
		notifier = notify.NewBroker()
	}
	defer notifier.Close()

	var exportStorage storage.ObjectStorage
	if cfg.Export.UploadEnabled {
		exportStorage, err = storage.NewStorage(&storage.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			UseSSL:    cfg.Export.UseSSL,
			Bucket:    cfg.Export.Bucket,
			Region:    cfg.Export.Region,
			PublicURL: cfg.Export.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize export storage")
		}
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewPerClient(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	channelService := service.NewChannelService(jobRepo, youtubeClient, appLogger)
	videoService := service.NewVideoService(youtubeClient, videoRepo, appLogger)
	exportService := service.NewExportService(videoRepo, exportStorage, appLogger)

	router := api.SetupRouter(&api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Limiter:   limiter,
		Logger:    appLogger,
		Channels:  channelService,
		Videos:    videoService,
		Export:    exportService,
		VideoRepo: videoRepo,
		Notifier:  notifier,
	})

	// In-process workers share the notifier, so SSE clients of this process
	// see live progress. A standalone worker fleet can be run instead with
	// jobs.workers set to 0 here.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workerWg sync.WaitGroup
	if cfg.Jobs.Workers > 0 {
		ingestService := service.NewIngestService(jobRepo, youtubeClient, videoRepo, notifier, appLogger, &service.IngestConfig{
			JobTimeout:   cfg.Jobs.Timeout(),
			PollInterval: cfg.Jobs.PollInterval,
			ResultTTL:    cfg.Jobs.ResultTTL(),
		})
		for i := 0; i < cfg.Jobs.Workers; i++ {
			workerWg.Add(1)
			go func() {
				defer workerWg.Done()
				ingestService.Run(workerCtx)
			}()
		}
		appLogger.WithField(logger.FieldCount, cfg.Jobs.Workers).Info("Ingest workers started")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down")

	stopWorkers()
	workerWg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
	appLogger.Info("Server stopped")
}
