package service

import (
	"context"
	"errors"

	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/youtube"
)

// Single-video request errors.
var (
	ErrInvalidVideoURL = errors.New("invalid video URL")
	ErrVideoNotFound   = errors.New("video not found")
)

// VideoFetcher fetches one video's snapshot from the upstream API.
type VideoFetcher interface {
	FetchVideoData(ctx context.Context, videoID string) *domain.VideoSnapshot
}

// VideoService serves on-demand single-video fetch and save requests.
type VideoService struct {
	fetcher VideoFetcher
	saver   VideoSaver
	logger  *logger.Logger
}

// NewVideoService creates a new video service
func NewVideoService(fetcher VideoFetcher, saver VideoSaver, log *logger.Logger) *VideoService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &VideoService{fetcher: fetcher, saver: saver, logger: log}
}

// Fetch retrieves a video's snapshot without persisting anything.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - videoURL: any recognized YouTube video URL form.
// Returns:
//   - *domain.VideoSnapshot: fetched metadata.
//   - error: ErrInvalidVideoURL or ErrVideoNotFound.
func (s *VideoService) Fetch(ctx context.Context, videoURL string) (*domain.VideoSnapshot, error) {
	videoID := youtube.ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, ErrInvalidVideoURL
	}

	snapshot := s.fetcher.FetchVideoData(ctx, videoID)
	if snapshot == nil {
		return nil, ErrVideoNotFound
	}
	return snapshot, nil
}

// FetchAndSave retrieves a video's snapshot and persists it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - videoURL: any recognized YouTube video URL form.
// Returns:
//   - *domain.VideoSnapshot: fetched metadata.
//   - *repository.SaveResult: persisted video ID and created flag.
//   - error: fetch or persistence error.
func (s *VideoService) FetchAndSave(ctx context.Context, videoURL string) (*domain.VideoSnapshot, *repository.SaveResult, error) {
	snapshot, err := s.Fetch(ctx, videoURL)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.saver.SaveVideo(ctx, snapshot)
	if err != nil {
		return nil, nil, err
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldVideoID: snapshot.YoutubeVideoID,
		"created":           result.Created,
	}).Info("Video saved")
	return snapshot, result, nil
}
