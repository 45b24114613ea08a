package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/service"
)

// ChannelHandler handles channel ingestion endpoints.
type ChannelHandler struct {
	channels *service.ChannelService
	notifier notify.Notifier
}

// NewChannelHandler creates a new channel handler.
// Parameters:
//   - channels: channel service instance.
//   - notifier: job event source for the SSE endpoint.
// Returns:
//   - *ChannelHandler: initialized handler.
func NewChannelHandler(channels *service.ChannelService, notifier notify.Notifier) *ChannelHandler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &ChannelHandler{channels: channels, notifier: notifier}
}

type ingestRequest struct {
	ChannelURL string `json:"channel_url"`
	ChannelID  string `json:"channel_id"`
	MaxVideos  int    `json:"max_videos"`
}

// StartIngest handles POST /api/v1/channels/ingest. Callers pass either a
// channel URL to resolve or a channel ID they already know.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChannelHandler) StartIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if req.ChannelURL == "" && req.ChannelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_url or channel_id is required"})
		return
	}

	var (
		job *domain.ChannelJob
		err error
	)
	if req.ChannelURL != "" {
		job, err = h.channels.StartIngest(c.Request.Context(), req.ChannelURL, req.MaxVideos)
	} else {
		job, err = h.channels.StartIngestByID(c.Request.Context(), req.ChannelID, req.MaxVideos)
	}
	switch {
	case errors.Is(err, service.ErrInvalidChannelURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel URL"})
		return
	case errors.Is(err, service.ErrChannelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	case errors.Is(err, repository.ErrQueueUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Job queue unavailable, try again later"})
		return
	case err != nil:
		middleware.GetLogger(c).WithError(err).Error("Failed to start channel ingestion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start channel ingestion"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": job.Message,
	})
}

// JobStatus handles GET /api/v1/channel-jobs/:id and its /status/:id alias.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChannelHandler) JobStatus(c *gin.Context) {
	job, err := h.channels.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to fetch job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, jobResponse(job))
}

// JobEvents handles GET /api/v1/channel-jobs/:id/events, streaming progress as
// server-sent events. Events are best-effort; clients re-sync by polling the
// status endpoint.
// Parameters:
//   - c: Gin request context.
// Returns: none (streams SSE until the job ends or the client disconnects).
func (h *ChannelHandler) JobEvents(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.channels.JobStatus(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	events, cancel := h.notifier.Subscribe(jobID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Current state first, so late subscribers see where the job stands.
	c.SSEvent("progress", jobResponse(job))
	c.Writer.Flush()
	if job.Status.IsTerminal() {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("progress", event)
			return !event.Status.IsTerminal()
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// jobResponse shapes a job for API responses.
func jobResponse(job *domain.ChannelJob) gin.H {
	resp := gin.H{
		"job_id":       job.ID,
		"channel_id":   job.ChannelID,
		"status":       job.Status,
		"message":      job.Message,
		"max_videos":   job.MaxVideos,
		"total_videos": job.TotalVideos,
		"current":      job.Current,
		"processed":    job.Processed,
		"failed":       job.Failed,
		"skipped":      job.Skipped,
		"progress_pct": job.ProgressPct,
		"queued_at":    job.QueuedAt,
	}
	if job.CurrentVideoID != nil {
		resp["current_video_id"] = *job.CurrentVideoID
	}
	if job.StartedAt != nil {
		resp["started_at"] = *job.StartedAt
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = *job.CompletedAt
	}
	if job.Error != nil {
		resp["error"] = *job.Error
	}
	return resp
}
