package service

import (
	"context"
	"errors"

	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/youtube"
)

// Channel ingestion request errors, mapped to HTTP statuses by the handlers.
var (
	ErrInvalidChannelURL = errors.New("invalid channel URL")
	ErrChannelNotFound   = errors.New("channel not found")
)

// MaxVideosCeiling bounds how many videos one job may process.
const MaxVideosCeiling = 1000

// DefaultMaxVideos applies when a request does not say how many videos to pull.
const DefaultMaxVideos = 50

// ChannelResolver resolves a channel URL to its canonical channel ID.
type ChannelResolver interface {
	ResolveChannelID(ctx context.Context, channelURL string) string
}

// ChannelQueue is the slice of the job queue the API needs.
type ChannelQueue interface {
	Enqueue(ctx context.Context, channelID string, maxVideos int) (*domain.ChannelJob, error)
	Fetch(ctx context.Context, id string) (*domain.ChannelJob, error)
}

// ChannelService accepts channel ingestion requests and answers job status
// queries.
type ChannelService struct {
	queue    ChannelQueue
	resolver ChannelResolver
	logger   *logger.Logger
}

// NewChannelService creates a new channel service
func NewChannelService(queue ChannelQueue, resolver ChannelResolver, log *logger.Logger) *ChannelService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &ChannelService{queue: queue, resolver: resolver, logger: log}
}

// ClampMaxVideos normalizes a requested video cap into [1, MaxVideosCeiling],
// substituting the default for zero or negative requests.
func ClampMaxVideos(requested int) int {
	if requested <= 0 {
		return DefaultMaxVideos
	}
	if requested > MaxVideosCeiling {
		return MaxVideosCeiling
	}
	return requested
}

// StartIngest resolves the channel URL and enqueues an ingestion job for it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - channelURL: any recognized YouTube channel URL form.
//   - maxVideos: requested video cap, clamped before enqueueing.
// Returns:
//   - *domain.ChannelJob: the queued job.
//   - error: ErrInvalidChannelURL, ErrChannelNotFound, or a queue error.
func (s *ChannelService) StartIngest(ctx context.Context, channelURL string, maxVideos int) (*domain.ChannelJob, error) {
	if !youtube.IsValidChannelURL(channelURL) {
		return nil, ErrInvalidChannelURL
	}

	channelID := s.resolver.ResolveChannelID(ctx, channelURL)
	if channelID == "" {
		return nil, ErrChannelNotFound
	}

	job, err := s.queue.Enqueue(ctx, channelID, ClampMaxVideos(maxVideos))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldJobID:     job.ID,
		logger.FieldChannelID: channelID,
		"max_videos":          job.MaxVideos,
	}).Info("Channel ingestion queued")
	return job, nil
}

// StartIngestByID enqueues an ingestion job for an already-known canonical
// channel ID, skipping URL resolution.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - channelID: canonical channel ID.
//   - maxVideos: requested video cap, clamped before enqueueing.
// Returns:
//   - *domain.ChannelJob: the queued job.
//   - error: ErrInvalidChannelURL for an empty ID, or a queue error.
func (s *ChannelService) StartIngestByID(ctx context.Context, channelID string, maxVideos int) (*domain.ChannelJob, error) {
	if channelID == "" {
		return nil, ErrInvalidChannelURL
	}

	job, err := s.queue.Enqueue(ctx, channelID, ClampMaxVideos(maxVideos))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldJobID:     job.ID,
		logger.FieldChannelID: channelID,
		"max_videos":          job.MaxVideos,
	}).Info("Channel ingestion queued")
	return job, nil
}

// JobStatus retrieves the current state of a job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.ChannelJob: the job, or nil when unknown.
//   - error: non-nil if the lookup fails.
func (s *ChannelService) JobStatus(ctx context.Context, id string) (*domain.ChannelJob, error) {
	return s.queue.Fetch(ctx, id)
}
