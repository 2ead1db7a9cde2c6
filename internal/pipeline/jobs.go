package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/content"
	"github.com/nishantmodak/ghost-admin/internal/history"
)

// JobStatus represents the state of a batch job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusApplying  JobStatus = "applying"
	StatusRecording JobStatus = "recording"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks one batch edit across the site.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Kind   string    `json:"kind"`
	DryRun bool      `json:"dry_run"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	RunID  string    `json:"run_id,omitempty"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	links    content.LinkReplacementSpec
	postIDs  []string
	altReqs  []content.AltUpdateRequest
	outcomes []batch.DocumentEditOutcome
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	DocumentsTotal int      `json:"documents_total"`
	Updated        int      `json:"posts_updated"`
	Failed         int      `json:"posts_failed"`
	Changes        int      `json:"total_changes"`
	Errors         []string `json:"errors"`
}

func newJob(kind string, dryRun bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		DryRun:    dryRun,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewLinksJob creates a link replacement job. A nil postIDs means every
// post.
func NewLinksJob(spec content.LinkReplacementSpec, postIDs []string, dryRun bool) *Job {
	j := newJob(history.KindLinks, dryRun)
	j.links = spec
	j.postIDs = postIDs
	return j
}

// NewAltJob creates an alt text job.
func NewAltJob(reqs []content.AltUpdateRequest, dryRun bool) *Job {
	j := newJob(history.KindAlt, dryRun)
	j.altReqs = reqs
	return j
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetDocumentsTotal records how many documents the job looked at.
func (j *Job) SetDocumentsTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsTotal = n
	j.UpdatedAt = time.Now()
}

// SetOutcomes stores the per-document results and their totals.
func (j *Job) SetOutcomes(outcomes []batch.DocumentEditOutcome) {
	sum := batch.Summarize(outcomes)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes = outcomes
	j.Progress.Updated = sum.Updated
	j.Progress.Failed = sum.Failed
	j.Progress.Changes = sum.Changes
	j.UpdatedAt = time.Now()
}

// SetRunID links the job to its history entry.
func (j *Job) SetRunID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.RunID = id
}

// Outcomes returns the per-document results recorded so far.
func (j *Job) Outcomes() []batch.DocumentEditOutcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcomes
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string                      `json:"job_id"`
	Kind      string                      `json:"kind"`
	DryRun    bool                        `json:"dry_run"`
	Status    JobStatus                   `json:"status"`
	Phase     string                      `json:"phase"`
	RunID     string                      `json:"run_id,omitempty"`
	Progress  Progress                    `json:"progress"`
	Results   []batch.DocumentEditOutcome `json:"results"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	results := append([]batch.DocumentEditOutcome{}, j.outcomes...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		DryRun:    j.DryRun,
		Status:    j.Status,
		Phase:     j.Phase,
		RunID:     j.RunID,
		Progress:  p,
		Results:   results,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
