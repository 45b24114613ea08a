package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/repository"
)

// VideoSource fetches channel and video data from the upstream API.
type VideoSource interface {
	ListRecentVideoIDs(ctx context.Context, channelID string, maxCount int) []string
	FetchVideoData(ctx context.Context, videoID string) *domain.VideoSnapshot
}

// VideoSaver persists one video snapshot.
type VideoSaver interface {
	SaveVideo(ctx context.Context, snapshot *domain.VideoSnapshot) (*repository.SaveResult, error)
}

// JobStore is the slice of the job queue the worker needs.
type JobStore interface {
	ClaimNext(ctx context.Context) (*domain.ChannelJob, error)
	UpdateProgress(ctx context.Context, id string, progress *domain.JobProgress) error
	PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error)
}

// IngestService executes channel ingestion jobs: it claims queued jobs,
// enumerates the channel's recent videos, and persists each one. Per-video
// failures are absorbed into the job's failed counter; only losing the job
// context fails the job itself.
type IngestService struct {
	jobs     JobStore
	source   VideoSource
	saver    VideoSaver
	notifier notify.Notifier
	logger   *logger.Logger

	jobTimeout   time.Duration
	pollInterval time.Duration
	resultTTL    time.Duration
}

// IngestConfig holds configuration for the ingest service
type IngestConfig struct {
	JobTimeout   time.Duration
	PollInterval time.Duration
	ResultTTL    time.Duration
}

// NewIngestService creates a new ingest service
func NewIngestService(
	jobs JobStore,
	source VideoSource,
	saver VideoSaver,
	notifier notify.Notifier,
	log *logger.Logger,
	cfg *IngestConfig,
) *IngestService {
	if log == nil {
		log = logger.GetDefault()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &IngestService{
		jobs:         jobs,
		source:       source,
		saver:        saver,
		notifier:     notifier,
		logger:       log,
		jobTimeout:   cfg.JobTimeout,
		pollInterval: cfg.PollInterval,
		resultTTL:    cfg.ResultTTL,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *IngestService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

const purgeInterval = 10 * time.Minute

// Run claims and executes jobs until ctx is canceled. Terminal job records
// older than the result TTL are purged periodically.
func (s *IngestService) Run(ctx context.Context) {
	purgeTicker := time.NewTicker(purgeInterval)
	defer purgeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-purgeTicker.C:
			if purged, err := s.jobs.PurgeExpired(ctx, s.resultTTL); err != nil {
				s.log(ctx).WithError(err).Warn("Failed to purge expired jobs")
			} else if purged > 0 {
				s.log(ctx).WithField(logger.FieldCount, purged).Info("Purged expired jobs")
			}
		default:
		}

		job, err := s.jobs.ClaimNext(ctx)
		if err != nil {
			s.log(ctx).WithError(err).Warn("Failed to claim job")
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pollInterval):
			}
			continue
		}

		s.ProcessJob(ctx, job)
	}
}

// ProcessJob runs one claimed job to a terminal state under the per-job
// timeout.
func (s *IngestService) ProcessJob(ctx context.Context, job *domain.ChannelJob) {
	jobCtx := ctx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	log := s.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID:     job.ID,
		logger.FieldChannelID: job.ChannelID,
	})
	log.Info("Job started")

	s.setMessage(jobCtx, job, "Fetching channel videos...")

	videoIDs := s.source.ListRecentVideoIDs(jobCtx, job.ChannelID, job.MaxVideos)
	total := len(videoIDs)
	totalCopy := total
	if err := s.jobs.UpdateProgress(jobCtx, job.ID, &domain.JobProgress{TotalVideos: &totalCopy}); err != nil {
		log.WithError(err).Warn("Failed to record total videos")
	}

	if total == 0 {
		s.complete(jobCtx, job, "No videos found for this channel.", 0, 0, 0)
		log.Info("Job completed with no videos")
		return
	}

	var processed, failed, skipped int
	for i, videoID := range videoIDs {
		if jobCtx.Err() != nil {
			s.fail(ctx, job, jobCtx.Err(), processed, failed, skipped)
			log.WithError(jobCtx.Err()).Error("Job aborted")
			return
		}

		current := i + 1
		s.announce(jobCtx, job, videoID, current, total, processed, failed, skipped)

		snapshot := s.source.FetchVideoData(jobCtx, videoID)
		if snapshot == nil {
			failed++
			log.WithField(logger.FieldVideoID, videoID).Warn("Video data unavailable")
		} else {
			result, err := s.saver.SaveVideo(jobCtx, snapshot)
			switch {
			case err != nil:
				failed++
				log.WithField(logger.FieldVideoID, videoID).WithError(err).Error("Failed to save video")
			case result.Created:
				processed++
			default:
				skipped++
			}
		}

		// Counters commit together after each video so that
		// processed + failed + skipped == current at every observation.
		pct := current * 100 / total
		if err := s.jobs.UpdateProgress(jobCtx, job.ID, &domain.JobProgress{
			Current:     &current,
			Processed:   &processed,
			Failed:      &failed,
			Skipped:     &skipped,
			ProgressPct: &pct,
		}); err != nil {
			log.WithError(err).Warn("Failed to update job counters")
		}
	}

	summary := fmt.Sprintf("Channel processing complete. Inserted: %d, Updated/Skipped: %d, Failed: %d.",
		processed, skipped, failed)
	s.complete(jobCtx, job, summary, processed, failed, skipped)
	log.WithFields(logger.Fields{
		"processed": processed,
		"failed":    failed,
		"skipped":   skipped,
	}).Info("Job completed")
}

// announce records which video is being worked on next. Counters are not
// touched here; they commit only after the video finishes.
func (s *IngestService) announce(ctx context.Context, job *domain.ChannelJob, videoID string, current, total, processed, failed, skipped int) {
	message := fmt.Sprintf("Processing videos (%d/%d)", current, total)
	pct := (current - 1) * 100 / total
	update := &domain.JobProgress{
		Message:        &message,
		CurrentVideoID: &videoID,
	}
	if err := s.jobs.UpdateProgress(ctx, job.ID, update); err != nil {
		s.log(ctx).WithField(logger.FieldJobID, job.ID).WithError(err).Warn("Failed to update job progress")
	}
	s.notifier.Publish(notify.JobEvent{
		JobID:       job.ID,
		Status:      domain.JobStatusRunning,
		Message:     message,
		ProgressPct: pct,
		Processed:   processed,
		Failed:      failed,
		Skipped:     skipped,
	})
}

func (s *IngestService) setMessage(ctx context.Context, job *domain.ChannelJob, message string) {
	if err := s.jobs.UpdateProgress(ctx, job.ID, &domain.JobProgress{Message: &message}); err != nil {
		s.log(ctx).WithField(logger.FieldJobID, job.ID).WithError(err).Warn("Failed to update job message")
	}
	s.notifier.Publish(notify.JobEvent{JobID: job.ID, Status: domain.JobStatusRunning, Message: message})
}

// complete marks the job completed. A channel yielding zero videos is a
// successful outcome, not a failure.
func (s *IngestService) complete(ctx context.Context, job *domain.ChannelJob, message string, processed, failed, skipped int) {
	status := domain.JobStatusCompleted
	now := time.Now().UTC()
	pct := 100
	current := processed + failed + skipped
	update := &domain.JobProgress{
		Status:      &status,
		Message:     &message,
		CompletedAt: &now,
		Current:     &current,
		Processed:   &processed,
		Failed:      &failed,
		Skipped:     &skipped,
		ProgressPct: &pct,
		ClearError:  true,
	}
	if err := s.jobs.UpdateProgress(ctx, job.ID, update); err != nil {
		s.log(ctx).WithField(logger.FieldJobID, job.ID).WithError(err).Error("Failed to complete job")
	}
	s.notifier.Publish(notify.JobEvent{
		JobID:       job.ID,
		Status:      status,
		Message:     message,
		ProgressPct: pct,
		Processed:   processed,
		Failed:      failed,
		Skipped:     skipped,
	})
}

// fail marks the job failed, preserving the counters accumulated so far. The
// parent context is used so the terminal write survives job timeout.
func (s *IngestService) fail(ctx context.Context, job *domain.ChannelJob, cause error, processed, failed, skipped int) {
	status := domain.JobStatusFailed
	now := time.Now().UTC()
	message := "Job failed."
	if errors.Is(cause, context.DeadlineExceeded) {
		message = "Job timed out."
	}
	errText := cause.Error()
	current := processed + failed + skipped
	update := &domain.JobProgress{
		Status:      &status,
		Message:     &message,
		CompletedAt: &now,
		Current:     &current,
		Processed:   &processed,
		Failed:      &failed,
		Skipped:     &skipped,
		Error:       &errText,
	}
	if err := s.jobs.UpdateProgress(ctx, job.ID, update); err != nil {
		s.log(ctx).WithField(logger.FieldJobID, job.ID).WithError(err).Error("Failed to mark job failed")
	}
	s.notifier.Publish(notify.JobEvent{
		JobID:     job.ID,
		Status:    status,
		Message:   message,
		Processed: processed,
		Failed:    failed,
		Skipped:   skipped,
	})
}
