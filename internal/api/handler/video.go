package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/service"
)

// VideoHandler handles single-video endpoints.
type VideoHandler struct {
	videos *service.VideoService
}

// NewVideoHandler creates a new video handler.
// Parameters:
//   - videos: video service instance.
// Returns:
//   - *VideoHandler: initialized handler.
func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

type videoRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// Fetch handles POST /api/v1/videos/fetch. It returns the video's current
// metadata without persisting anything.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VideoHandler) Fetch(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.videos.Fetch(c.Request.Context(), req.VideoURL)
	if handled := h.writeVideoError(c, err); handled {
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": snapshot})
}

// Save handles POST /api/v1/videos. It fetches the video and persists it.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VideoHandler) Save(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snapshot, result, err := h.videos.FetchAndSave(c.Request.Context(), req.VideoURL)
	if handled := h.writeVideoError(c, err); handled {
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"video":    snapshot,
		"video_id": result.VideoID,
		"created":  result.Created,
	})
}

// writeVideoError maps service errors to responses; reports whether err was
// handled.
func (h *VideoHandler) writeVideoError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrInvalidVideoURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video URL"})
	case errors.Is(err, service.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
	default:
		middleware.GetLogger(c).WithError(err).Error("Video request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Video request failed"})
	}
	return true
}
