package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/handler"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/ratelimit"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/service"
)

// RouterConfig bundles everything the HTTP surface depends on.
type RouterConfig struct {
	Mode      string
	CORS      middleware.CORSConfig
	Limiter   ratelimit.Limiter
	Logger    *logger.Logger
	Channels  *service.ChannelService
	Videos    *service.VideoService
	Export    *service.ExportService
	VideoRepo *repository.VideoRepository
	Notifier  notify.Notifier
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Limiter != nil {
		r.Use(middleware.RateLimit(cfg.Limiter))
	}

	healthHandler := handler.NewHealthHandler()
	channelHandler := handler.NewChannelHandler(cfg.Channels, cfg.Notifier)
	videoHandler := handler.NewVideoHandler(cfg.Videos)
	dataHandler := handler.NewDataHandler(cfg.VideoRepo)
	exportHandler := handler.NewExportHandler(cfg.Export)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Legacy status alias kept for older clients.
	r.GET("/status/:id", channelHandler.JobStatus)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Channel ingestion
		v1.POST("/channels/ingest", channelHandler.StartIngest)
		v1.GET("/channel-jobs/:id", channelHandler.JobStatus)
		v1.GET("/channel-jobs/:id/events", channelHandler.JobEvents)

		// Single videos
		v1.POST("/videos/fetch", videoHandler.Fetch)
		v1.POST("/videos", videoHandler.Save)

		// Dataset
		v1.GET("/data", dataHandler.List)
		v1.GET("/export", exportHandler.Export)
	}

	return r
}
