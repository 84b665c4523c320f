package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"homeledger/internal/jobs"
)

// Store is an in-memory JobStore. Data is lost on restart, which is fine
// for categorization kicks: the uncategorized backlog itself lives in the
// database.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.CategorizeJob
}

// NewStore creates an in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.CategorizeJob),
	}
}

// SaveJob saves or updates a job.
func (s *Store) SaveJob(ctx context.Context, job *jobs.CategorizeJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.CategorizeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs newest first, with optional status filtering.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.CategorizeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.CategorizeJob
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.CategorizeJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
