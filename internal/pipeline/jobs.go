package pipeline

import (
	"sync"
	"time"

	"docrank/internal/output"
)

// JobStatus represents the state of a collection ranking job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// InputFile is one raw document handed to the pipeline.
type InputFile struct {
	Name string
	Data []byte
}

// Job tracks the state of a single collection run.
type Job struct {
	mu sync.Mutex

	ID      string    `json:"job_id"`
	Persona string    `json:"persona"`
	Task    string    `json:"task"`
	Status  JobStatus `json:"status"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Optional per-job ranking overrides; zero means config default.
	TopSections int `json:"-"`
	TopChunks   int `json:"-"`

	// Internal: not serialized.
	files  []InputFile
	result *output.ResultDocument
	errors []string
}

// Progress tracks per-document processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	DocumentsFailed    int      `json:"documents_failed"`
	Errors             []string `json:"errors"`
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
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records a per-document error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Progress.DocumentsFailed++
	j.UpdatedAt = time.Now()
}

// IncrDocumentsProcessed counts a successfully embedded document.
func (j *Job) IncrDocumentsProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsProcessed++
	j.UpdatedAt = time.Now()
}

// SetFiles sets the raw input documents for processing.
func (j *Job) SetFiles(files []InputFile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = files
	j.Progress.TotalDocuments = len(files)
}

// Files returns the raw input documents.
func (j *Job) Files() []InputFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// SetResult stores the assembled result.
func (j *Job) SetResult(res *output.ResultDocument) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.UpdatedAt = time.Now()
}

// Result returns the assembled result, nil until the job completes.
func (j *Job) Result() *output.ResultDocument {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Persona   string    `json:"persona"`
	Task      string    `json:"task"`
	Status    JobStatus `json:"status"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		Persona:   j.Persona,
		Task:      j.Task,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsProcessed: j.Progress.DocumentsProcessed,
			DocumentsFailed:    j.Progress.DocumentsFailed,
			Errors:             errs,
		},
	}
}
