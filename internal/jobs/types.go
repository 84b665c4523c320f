// Package jobs defines the in-process work the API hands off after a
// request completes, currently just the categorization kick that follows a
// transaction sync.
package jobs

import (
	"context"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are not
	// retried; the next sync or a manual categorize call covers the gap.
	JobStatusFailed JobStatus = "failed"
)

// CategorizeJob asks the worker to run one categorization pass. Reason
// records what triggered it, for the job list.
type CategorizeJob struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Categorized int    `json:"categorized"`
	Error       string `json:"error,omitempty"`
}

// Handler processes one job. The int result is the number of transactions
// categorized.
type Handler func(ctx context.Context, job *CategorizeJob) (int, error)

// Publisher enqueues jobs.
type Publisher interface {
	PublishCategorize(ctx context.Context, job *CategorizeJob) error
}

// Consumer runs the worker loop.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// JobStore persists job state for inspection.
type JobStore interface {
	SaveJob(ctx context.Context, job *CategorizeJob) error
	GetJob(ctx context.Context, jobID string) (*CategorizeJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*CategorizeJob, error)
}

// JobFilter narrows a job listing.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
