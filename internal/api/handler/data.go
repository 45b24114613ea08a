package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// DataHandler serves the collected dataset.
type DataHandler struct {
	videos *repository.VideoRepository
}

// NewDataHandler creates a new data handler.
// Parameters:
//   - videos: video repository used for reads.
// Returns:
//   - *DataHandler: initialized handler.
func NewDataHandler(videos *repository.VideoRepository) *DataHandler {
	return &DataHandler{videos: videos}
}

// List handles GET /api/v1/data with pagination and sorting.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DataHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	sortBy := c.DefaultQuery("sort_by", "saved_at")
	descending := !strings.EqualFold(c.DefaultQuery("order", "desc"), "asc")

	rows, total, err := h.videos.ListVideos(c.Request.Context(), perPage, (page-1)*perPage, sortBy, descending)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to list videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		items = append(items, gin.H{
			"id":               row.ID,
			"youtube_video_id": row.YoutubeVideoID,
			"title":            row.Title,
			"description":      row.Description,
			"views":            row.Views,
			"likes":            row.Likes,
			"comments":         row.Comments,
			"posted":           row.Posted,
			"video_length":     row.VideoLength,
			"like_rate":        row.LikeRate(),
			"comment_rate":     row.CommentRate(),
			"engagement_rate":  row.EngagementRate(),
			"channel_username": row.ChannelUsername,
			"subscribers":      row.Subscribers,
			"saved_at":         row.SavedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"videos":   items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
