package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusAcquiring  JobStatus = "acquiring"
	StatusSegmenting JobStatus = "segmenting"
	StatusEnriching  JobStatus = "enriching"
	StatusAssembling JobStatus = "assembling"
	StatusRendering  JobStatus = "rendering"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Result describes a successfully converted document.
type Result struct {
	ID           string      `json:"id"`
	FileName     string      `json:"file_name"`
	PDFURL       string      `json:"pdf_url"`
	Pages        int         `json:"pages"`
	FittingCount int         `json:"fitting_count"`
	Plan         resume.Plan `json:"plan"`
	ContentHash  string      `json:"content_hash,omitempty"`
}

// ErrorBody is the client-facing form of a typed failure.
type ErrorBody struct {
	Kind    resume.Kind `json:"kind"`
	Detail  string      `json:"detail"`
	Path    string      `json:"path,omitempty"`
	Payload string      `json:"payload,omitempty"`
}

// Failure describes a document that could not be converted.
type Failure struct {
	FileName string    `json:"file_name"`
	Error    ErrorBody `json:"error"`
}

// maxPayloadEcho bounds the raw enrichment payload echoed to clients.
const maxPayloadEcho = 2000

// NewFailure classifies err for the client.
func NewFailure(fileName string, err error) *Failure {
	re := resume.AsError(err)
	body := ErrorBody{
		Kind:    re.Kind,
		Detail:  re.Detail,
		Path:    re.Path,
		Payload: truncate(re.Payload, maxPayloadEcho),
	}
	if body.Detail == "" {
		switch re.Kind {
		case resume.KindCancelled:
			body.Detail = "not started before cancellation"
		case resume.KindInternal:
			body.Detail = "internal error"
		default:
			body.Detail = re.Error()
		}
	}
	return &Failure{FileName: fileName, Error: body}
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *Result
	failure  *Failure
}

// NewJob creates a queued job for one uploaded file.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
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

// Complete records a successful result.
func (j *Job) Complete(r *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail records a failure. The phase is left at the step that failed.
func (j *Job) Fail(f *Failure) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failure = f
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once processing is over.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	DocID     string    `json:"doc_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Result    *Result   `json:"result,omitempty"`
	Failure   *Failure  `json:"failure,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.result != nil {
		r := *j.result
		snap.Result = &r
	}
	if j.failure != nil {
		f := *j.failure
		snap.Failure = &f
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
