package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/resumeforge/internal/resume"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("cv.pdf", []byte("data"))
	if job.ID == "" || job.DocID == "" || job.ID == job.DocID {
		t.Errorf("expected distinct ids, got %q / %q", job.ID, job.DocID)
	}
	if job.Status != StatusQueued || job.Filename != "cv.pdf" {
		t.Errorf("unexpected job %+v", job.Snapshot())
	}
	if string(job.FileData()) != "data" {
		t.Error("expected file data to be kept")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusAcquiring, "acquiring"},
		{StatusSegmenting, "segmenting"},
		{StatusEnriching, "enriching"},
		{StatusAssembling, "assembling"},
		{StatusRendering, "rendering"},
		{StatusStoring, "storing"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_CompleteAndSnapshot(t *testing.T) {
	job := NewJob("cv.docx", nil)
	job.Complete(&Result{ID: job.DocID, FittingCount: 2})

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("unexpected status %q/%q", snap.Status, snap.Phase)
	}
	if snap.Result == nil || snap.Result.FittingCount != 2 {
		t.Fatalf("expected result in snapshot, got %+v", snap.Result)
	}
	if snap.Failure != nil {
		t.Error("expected no failure")
	}
	snap.Result.FittingCount = 9
	if job.Snapshot().Result.FittingCount != 2 {
		t.Error("expected snapshot to be a copy")
	}
}

func TestJob_FailKeepsPhase(t *testing.T) {
	job := NewJob("cv.pdf", nil)
	job.SetStatus(StatusEnriching, "enriching")
	job.Fail(NewFailure("cv.pdf", &resume.Error{Kind: resume.KindEnrichmentUnavailable, Detail: "rate limit exceeded"}))

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "enriching" {
		t.Errorf("unexpected status %q/%q", snap.Status, snap.Phase)
	}
	if snap.Failure == nil || snap.Failure.Error.Kind != resume.KindEnrichmentUnavailable {
		t.Errorf("unexpected failure %+v", snap.Failure)
	}
}

func TestNewFailure(t *testing.T) {
	long := make([]byte, maxPayloadEcho+50)
	for i := range long {
		long[i] = 'x'
	}
	tests := []struct {
		name   string
		err    error
		kind   resume.Kind
		detail string
	}{
		{"typed", &resume.Error{Kind: resume.KindSchemaViolation, Detail: "expected string", Path: "/full_name"}, resume.KindSchemaViolation, "expected string"},
		{"cancelled", context.Canceled, resume.KindCancelled, "not started before cancellation"},
		{"unknown", errors.New("disk on fire"), resume.KindInternal, "internal error"},
		{"malformed", &resume.Error{Kind: resume.KindEnrichmentMalformed, Detail: "not json", Payload: string(long)}, resume.KindEnrichmentMalformed, "not json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFailure("cv.pdf", tc.err)
			if f.FileName != "cv.pdf" || f.Error.Kind != tc.kind || f.Error.Detail != tc.detail {
				t.Errorf("unexpected failure %+v", f)
			}
			if len(f.Error.Payload) > maxPayloadEcho+3 {
				t.Errorf("expected payload truncated, got %d bytes", len(f.Error.Payload))
			}
		})
	}
	if f := NewFailure("a", &resume.Error{Kind: resume.KindSchemaViolation, Path: "/x"}); f.Error.Path != "/x" {
		t.Errorf("expected path kept, got %q", f.Error.Path)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
	job.releaseFileData()
	if job.FileData() != nil {
		t.Error("expected file data released")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
