package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/tubescope/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrQueueUnavailable indicates the job store could not accept or serve jobs,
// typically because the database is unreachable.
var ErrQueueUnavailable = errors.New("job queue unavailable")

// JobRepository is the durable job queue: enqueued jobs survive process
// restarts and are claimed by workers in arrival order.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Enqueue creates a new queued channel ingestion job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - channelID: resolved canonical channel ID to ingest.
//   - maxVideos: upper bound on videos to process.
// Returns:
//   - *domain.ChannelJob: the queued job with its generated ID.
//   - error: ErrQueueUnavailable if the job could not be stored.
func (r *JobRepository) Enqueue(ctx context.Context, channelID string, maxVideos int) (*domain.ChannelJob, error) {
	job := &domain.ChannelJob{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		MaxVideos: maxVideos,
		Status:    domain.JobStatusQueued,
		Message:   "Job is queued.",
		QueuedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return job, nil
}

// Fetch retrieves a job by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.ChannelJob: the job, or nil when no such job exists.
//   - error: non-nil if the lookup fails.
func (r *JobRepository) Fetch(ctx context.Context, id string) (*domain.ChannelJob, error) {
	var job domain.ChannelJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ClaimNext atomically transitions the oldest queued job to running and
// returns it. Concurrent workers never claim the same job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.ChannelJob: the claimed job, or nil when the queue is empty.
//   - error: non-nil if the claim fails.
func (r *JobRepository) ClaimNext(ctx context.Context) (*domain.ChannelJob, error) {
	var job domain.ChannelJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("status = ?", domain.JobStatusQueued).Order("queued_at")
		// SQLite serializes writers on its own; row locks only exist on Postgres.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := query.First(&job).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		job.Status = domain.JobStatusRunning
		job.StartedAt = &now
		job.Message = "Job started."
		return tx.Model(&domain.ChannelJob{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":     job.Status,
				"started_at": job.StartedAt,
				"message":    job.Message,
			}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateProgress merges the non-nil fields of progress into the stored job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - progress: partial update; nil fields are left untouched.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress *domain.JobProgress) error {
	updates := map[string]interface{}{}
	if progress.Status != nil {
		updates["status"] = *progress.Status
	}
	if progress.Message != nil {
		updates["message"] = *progress.Message
	}
	if progress.StartedAt != nil {
		updates["started_at"] = *progress.StartedAt
	}
	if progress.CompletedAt != nil {
		updates["completed_at"] = *progress.CompletedAt
	}
	if progress.TotalVideos != nil {
		updates["total_videos"] = *progress.TotalVideos
	}
	if progress.Current != nil {
		updates["current"] = *progress.Current
	}
	if progress.Processed != nil {
		updates["processed"] = *progress.Processed
	}
	if progress.Failed != nil {
		updates["failed"] = *progress.Failed
	}
	if progress.Skipped != nil {
		updates["skipped"] = *progress.Skipped
	}
	if progress.ProgressPct != nil {
		updates["progress_pct"] = *progress.ProgressPct
	}
	if progress.CurrentVideoID != nil {
		updates["current_video_id"] = *progress.CurrentVideoID
	}
	if progress.Error != nil {
		updates["error"] = *progress.Error
	} else if progress.ClearError {
		updates["error"] = nil
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.ChannelJob{}).Where("id = ?", id).Updates(updates).Error
}

// PurgeExpired deletes terminal jobs whose results have outlived the TTL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ttl: retention period measured from job completion.
// Returns:
//   - int64: number of jobs deleted.
//   - error: non-nil if the delete fails.
func (r *JobRepository) PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	result := r.db.WithContext(ctx).
		Where("status IN ?", []domain.JobStatus{domain.JobStatusCompleted, domain.JobStatusFailed}).
		Where("completed_at < ?", cutoff).
		Delete(&domain.ChannelJob{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
