package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/timmy/tubescope/internal/domain"
	"gorm.io/gorm"
)

// SaveResult reports what SaveVideo did with a snapshot.
type SaveResult struct {
	VideoID uint
	Created bool
}

// VideoRepository handles video and channel persistence.
type VideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VideoRepository: repository instance bound to db.
func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// SaveVideo persists one video snapshot atomically: the owning channel is
// created or refreshed, a history row is appended when the subscriber count
// changed, the video is upserted by its YouTube ID, and the channel-video link
// is ensured. Either every effect commits or none does.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - snapshot: fetched video metadata including channel stats.
// Returns:
//   - *SaveResult: persisted video ID and whether a new row was created.
//   - error: non-nil if validation or the transaction fails.
func (r *VideoRepository) SaveVideo(ctx context.Context, snapshot *domain.VideoSnapshot) (*SaveResult, error) {
	if snapshot == nil || snapshot.YoutubeVideoID == "" {
		return nil, errors.New("snapshot missing youtube video id")
	}
	if snapshot.ChannelUsername == "" {
		return nil, errors.New("snapshot missing channel username")
	}

	var result SaveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channel, err := r.upsertChannel(tx, snapshot.ChannelUsername, snapshot.Subscribers)
		if err != nil {
			return err
		}

		var video domain.Video
		err = tx.First(&video, "youtube_video_id = ?", snapshot.YoutubeVideoID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			video = domain.Video{
				YoutubeVideoID: snapshot.YoutubeVideoID,
				ChannelID:      channel.ID,
			}
			applySnapshot(&video, snapshot)
			if err := tx.Create(&video).Error; err != nil {
				return fmt.Errorf("failed to create video: %w", err)
			}
			result.Created = true
		case err != nil:
			return fmt.Errorf("failed to look up video: %w", err)
		default:
			applySnapshot(&video, snapshot)
			video.ChannelID = channel.ID
			if err := tx.Save(&video).Error; err != nil {
				return fmt.Errorf("failed to update video: %w", err)
			}
		}
		result.VideoID = video.ID

		link := domain.ChannelVideo{VideoID: video.ID, ChannelID: channel.ID}
		if err := tx.FirstOrCreate(&link, link).Error; err != nil {
			return fmt.Errorf("failed to link video to channel: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// upsertChannel loads or creates the channel row and appends a history record
// carrying the superseded value when the subscriber count changed.
func (r *VideoRepository) upsertChannel(tx *gorm.DB, username string, subscribers int64) (*domain.Channel, error) {
	var channel domain.Channel
	err := tx.First(&channel, "channel_username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		channel = domain.Channel{ChannelUsername: username, Subscribers: subscribers}
		if err := tx.Create(&channel).Error; err != nil {
			return nil, fmt.Errorf("failed to create channel: %w", err)
		}
		return &channel, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel: %w", err)
	}

	if channel.Subscribers != subscribers {
		history := domain.ChannelHistory{
			ChannelID:           channel.ID,
			PreviousSubscribers: channel.Subscribers,
		}
		if err := tx.Create(&history).Error; err != nil {
			return nil, fmt.Errorf("failed to record channel history: %w", err)
		}
		channel.Subscribers = subscribers
		if err := tx.Save(&channel).Error; err != nil {
			return nil, fmt.Errorf("failed to update channel: %w", err)
		}
	}
	return &channel, nil
}

func applySnapshot(video *domain.Video, snapshot *domain.VideoSnapshot) {
	video.Title = snapshot.Title
	video.Description = snapshot.Description
	video.Views = snapshot.Views
	video.Likes = snapshot.Likes
	video.Comments = snapshot.Comments
	video.Posted = snapshot.Posted
	video.VideoLength = snapshot.VideoLength
	video.Transcript = snapshot.Transcript
}

// GetByYoutubeID retrieves a video by its YouTube video ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - youtubeVideoID: 11-character YouTube video ID.
// Returns:
//   - *domain.Video: video record if found.
//   - error: non-nil if lookup fails.
func (r *VideoRepository) GetByYoutubeID(ctx context.Context, youtubeVideoID string) (*domain.Video, error) {
	var video domain.Video
	if err := r.db.WithContext(ctx).First(&video, "youtube_video_id = ?", youtubeVideoID).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// VideoRow is a video joined with its owning channel for read endpoints.
type VideoRow struct {
	domain.Video
	ChannelUsername string `json:"channel_username"`
	Subscribers     int64  `json:"subscribers"`
}

var videoSortColumns = map[string]string{
	"views":    "videos.views",
	"likes":    "videos.likes",
	"comments": "videos.comments",
	"posted":   "videos.posted",
	"saved_at": "videos.saved_at",
	"title":    "videos.title",
}

// ListVideos retrieves videos joined with channel stats, paginated and sorted.
// Unknown sort columns fall back to saved_at to keep ORDER BY injection-safe.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//   - sortBy: column name to sort on.
//   - descending: true for newest/largest first.
// Returns:
//   - []VideoRow: matching rows.
//   - int64: total row count ignoring pagination.
//   - error: non-nil if the query fails.
func (r *VideoRepository) ListVideos(ctx context.Context, limit, offset int, sortBy string, descending bool) ([]VideoRow, int64, error) {
	column, ok := videoSortColumns[strings.ToLower(sortBy)]
	if !ok {
		column = "videos.saved_at"
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Video{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []VideoRow
	err := r.db.WithContext(ctx).
		Model(&domain.Video{}).
		Select("videos.*, channels.channel_username, channels.subscribers").
		Joins("LEFT JOIN channels ON channels.id = videos.channel_id").
		Order(column + " " + direction).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// AllChannels retrieves every channel row for export.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Channel: all channels ordered by ID.
//   - error: non-nil if the query fails.
func (r *VideoRepository) AllChannels(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	if err := r.db.WithContext(ctx).Order("id").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// AllChannelHistory retrieves every subscriber history row for export.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.ChannelHistory: all history rows ordered by ID.
//   - error: non-nil if the query fails.
func (r *VideoRepository) AllChannelHistory(ctx context.Context) ([]domain.ChannelHistory, error) {
	var history []domain.ChannelHistory
	if err := r.db.WithContext(ctx).Order("id").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// AllVideos retrieves every video row for export.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Video: all videos ordered by ID.
//   - error: non-nil if the query fails.
func (r *VideoRepository) AllVideos(ctx context.Context) ([]domain.Video, error) {
	var videos []domain.Video
	if err := r.db.WithContext(ctx).Order("id").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// AllChannelVideos retrieves every channel-video link row for export.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.ChannelVideo: all link rows.
//   - error: non-nil if the query fails.
func (r *VideoRepository) AllChannelVideos(ctx context.Context) ([]domain.ChannelVideo, error) {
	var links []domain.ChannelVideo
	if err := r.db.WithContext(ctx).Order("channel_id, video_id").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
