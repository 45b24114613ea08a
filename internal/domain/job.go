package domain

import "time"

// JobStatus represents the status of a channel ingestion job.
// Values include JobStatusQueued, JobStatusRunning, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// NormalizeJobStatus collapses backend-specific states onto the closed
// four-value enum exposed to clients.
func NormalizeJobStatus(raw string) JobStatus {
	switch raw {
	case "queued", "deferred", "scheduled":
		return JobStatusQueued
	case "started", "running":
		return JobStatusRunning
	case "finished", "completed":
		return JobStatusCompleted
	case "failed", "stopped", "canceled":
		return JobStatusFailed
	}
	return JobStatus(raw)
}

// IsTerminal reports whether the status is final.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ChannelJob represents one asynchronous request to ingest up to MaxVideos
// videos from one channel, together with its live progress metadata.
//
// Counters are monotonically non-decreasing over the job's lifetime and
// Processed + Failed + Skipped == Current holds at every observation once the
// job is running. Only the single worker executing the job mutates it; the
// record is immutable once terminal.
type ChannelJob struct {
	ID             string     `gorm:"type:text;primaryKey" json:"id"`
	ChannelID      string     `gorm:"type:text;not null;index" json:"channel_id"`
	MaxVideos      int        `gorm:"not null" json:"max_videos"`
	Status         JobStatus  `gorm:"type:text;index;default:queued" json:"status"`
	Message        string     `gorm:"type:text" json:"message"`
	QueuedAt       time.Time  `json:"queued_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TotalVideos    int        `gorm:"default:0" json:"total_videos"`
	Current        int        `gorm:"default:0" json:"current"`
	Processed      int        `gorm:"default:0" json:"processed"`
	Failed         int        `gorm:"default:0" json:"failed"`
	Skipped        int        `gorm:"default:0" json:"skipped"`
	ProgressPct    int        `gorm:"default:0" json:"progress_pct"`
	CurrentVideoID *string    `gorm:"type:text" json:"current_video_id,omitempty"`
	Error          *string    `gorm:"type:text" json:"error,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ChannelJob.
func (ChannelJob) TableName() string {
	return "channel_jobs"
}

// JobProgress carries the mutable fields merged into a job by the worker.
// Nil pointers leave the stored value untouched.
type JobProgress struct {
	Status         *JobStatus
	Message        *string
	StartedAt      *time.Time
	CompletedAt    *time.Time
	TotalVideos    *int
	Current        *int
	Processed      *int
	Failed         *int
	Skipped        *int
	ProgressPct    *int
	CurrentVideoID *string
	Error          *string
	ClearError     bool
}
