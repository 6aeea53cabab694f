package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// JobStore implements core.JobRepository and core.ReaperRepository.
type JobStore struct {
	s *Store
}

// Create inserts a pending job.
func (r *JobStore) Create(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertJobLocked(req), nil
}

func (s *Store) insertJobLocked(req *model.CreateJobRequest) *model.Job {
	job := &model.Job{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Payload:   req.NormalizedPayload(),
		Status:    model.JobStatusPending,
		CreatedAt: s.now(),
	}
	s.jobs[job.ID] = &jobEntry{seq: s.nextSeq(), job: job}
	return cloneJob(job)
}

// GetByID returns a copy of the job or model.ErrJobNotFound.
func (r *JobStore) GetByID(_ context.Context, id string) (*model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.jobs[id]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	return cloneJob(e.job), nil
}

// ClaimNext moves the oldest pending job to processing.
func (r *JobStore) ClaimNext(ctx context.Context) (*model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var oldest *jobEntry
	for _, e := range r.s.jobs {
		if e.job.Status != model.JobStatusPending {
			continue
		}
		if oldest == nil || e.job.CreatedAt.Before(oldest.job.CreatedAt) ||
			(e.job.CreatedAt.Equal(oldest.job.CreatedAt) && e.seq < oldest.seq) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, model.ErrNoJobsAvailable
	}

	now := r.s.now()
	oldest.job.Status = model.JobStatusProcessing
	oldest.job.StartedAt = &now
	return cloneJob(oldest.job), nil
}

// Finalize moves a processing job to done or failed.
func (r *JobStore) Finalize(_ context.Context, params model.FinalizeJobParams) (bool, error) {
	if err := params.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.jobs[params.ID]
	if !ok || e.job.Status != model.JobStatusProcessing {
		return false, nil
	}
	now := r.s.now()
	e.job.Status = params.Status
	e.job.FinishedAt = &now
	e.job.Error = params.ErrorValue()
	return true, nil
}

// ExistsForDedup reports whether any job of key.Type carries key.Value under key.PayloadKey.
func (r *JobStore) ExistsForDedup(_ context.Context, key model.DedupKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, apperrors.Validation(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.jobs {
		if e.job.Type != key.Type {
			continue
		}
		if v, ok := e.job.Payload[key.PayloadKey]; ok && v == key.Value {
			return true, nil
		}
	}
	return false, nil
}

// List returns matching jobs, newest first.
func (r *JobStore) List(_ context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries := r.s.matchingJobsLocked(&opts.JobFilter)
	// newest first by created_at, insertion order breaking ties
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].job.CreatedAt, entries[j].job.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return entries[i].seq > entries[j].seq
	})

	entries = page(entries, opts.Limit, opts.Offset)
	out := make([]*model.Job, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneJob(e.job))
	}
	return out, nil
}

// Count returns the number of matching jobs.
func (r *JobStore) Count(_ context.Context, filter *model.JobFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.matchingJobsLocked(filter)), nil
}

// Stats counts jobs per status.
func (r *JobStore) Stats(_ context.Context) (*model.JobStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &model.JobStats{}
	for _, e := range r.s.jobs {
		switch e.job.Status {
		case model.JobStatusPending:
			stats.Pending++
		case model.JobStatusProcessing:
			stats.Processing++
		case model.JobStatusDone:
			stats.Done++
		case model.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// Requeue resets a failed job to pending.
func (r *JobStore) Requeue(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.jobs[id]
	if !ok || e.job.Status != model.JobStatusFailed {
		return false, nil
	}
	e.job.Status = model.JobStatusPending
	e.job.StartedAt = nil
	e.job.FinishedAt = nil
	e.job.Error = nil
	return true, nil
}

// DeleteOldJobs removes up to BatchSize terminal jobs finished before now-OlderThan, oldest first.
func (r *JobStore) DeleteOldJobs(_ context.Context, params core.DeleteOldJobsParams) (int64, error) {
	if !params.Status.IsTerminal() {
		return 0, fmt.Errorf("refusing to delete jobs in non-terminal status %q", params.Status)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := r.s.now().Add(-params.OlderThan)
	var victims []*jobEntry
	for _, e := range r.s.jobs {
		if e.job.Status == params.Status && e.job.FinishedAt != nil && e.job.FinishedAt.Before(cutoff) {
			victims = append(victims, e)
		}
	}
	sortBySeq(victims, func(e *jobEntry) uint64 { return e.seq })
	if params.BatchSize > 0 && len(victims) > params.BatchSize {
		victims = victims[:params.BatchSize]
	}
	for _, e := range victims {
		delete(r.s.jobs, e.job.ID)
	}
	return int64(len(victims)), nil
}

// FailStaleProcessingJobs fails up to BatchSize processing jobs started before now-OlderThan.
func (r *JobStore) FailStaleProcessingJobs(_ context.Context, params core.FailStaleJobsParams) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	cutoff := now.Add(-params.OlderThan)
	var stale []*jobEntry
	for _, e := range r.s.jobs {
		if e.job.Status == model.JobStatusProcessing && e.job.StartedAt != nil && e.job.StartedAt.Before(cutoff) {
			stale = append(stale, e)
		}
	}
	sortBySeq(stale, func(e *jobEntry) uint64 { return e.seq })
	if params.BatchSize > 0 && len(stale) > params.BatchSize {
		stale = stale[:params.BatchSize]
	}
	for _, e := range stale {
		msg := params.Message
		finished := now
		e.job.Status = model.JobStatusFailed
		e.job.FinishedAt = &finished
		e.job.Error = &msg
	}
	return int64(len(stale)), nil
}

// matchingJobsLocked returns entries matching f in FIFO order.
func (s *Store) matchingJobsLocked(f *model.JobFilter) []*jobEntry {
	out := make([]*jobEntry, 0, len(s.jobs))
	for _, e := range s.jobs {
		if f.Matches(e.job) {
			out = append(out, e)
		}
	}
	sortBySeq(out, func(e *jobEntry) uint64 { return e.seq })
	return out
}

func cloneJob(j *model.Job) *model.Job {
	cp := *j
	cp.Payload = make(map[string]string, len(j.Payload))
	for k, v := range j.Payload {
		cp.Payload[k] = v
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	if j.Error != nil {
		msg := *j.Error
		cp.Error = &msg
	}
	return &cp
}
