// Package notify pushes job progress events to interested subscribers. It is
// advisory: events may be dropped under pressure and polling the job store
// remains the source of truth.
package notify

import "github.com/timmy/tubescope/internal/domain"

// JobEvent is one observed job state change.
type JobEvent struct {
	JobID       string           `json:"job_id"`
	Status      domain.JobStatus `json:"status"`
	Message     string           `json:"message"`
	ProgressPct int              `json:"progress_pct"`
	Processed   int              `json:"processed"`
	Failed      int              `json:"failed"`
	Skipped     int              `json:"skipped"`
}

// Notifier publishes job events. Publish never blocks the caller.
type Notifier interface {
	Publish(event JobEvent)
	Subscribe(jobID string) (<-chan JobEvent, func())
	Close()
}

// Noop discards every event. Used when notification is disabled.
type Noop struct{}

func (Noop) Publish(JobEvent) {}

func (Noop) Subscribe(string) (<-chan JobEvent, func()) {
	ch := make(chan JobEvent)
	return ch, func() {}
}

func (Noop) Close() {}
