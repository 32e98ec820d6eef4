package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumeforge/internal/pipeline"
	"github.com/dgallion1/resumeforge/internal/store"
)

// multipartMemory is the part of a form kept in memory; the rest spills to
// temporary files removed after the request.
const multipartMemory = 32 << 20

// handleUpload converts every file of the request synchronously and
// reports one entry per file, in upload order.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	jobs, code, err := s.readJobs(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	outcomes := s.processor.RunBatch(r.Context(), jobs)
	results := make([]any, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			results = append(results, pipeline.NewFailure(o.FileName, o.Err))
			continue
		}
		results = append(results, o.Result)
	}

	status := http.StatusOK
	if pipeline.Succeeded(outcomes) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{"results": results})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.results.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("read result", "id", id, "store", s.results.Name(), "error", err)
		jsonError(w, "failed to read result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleSubmit queues every file of the request on the worker pool.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "async conversion unavailable", http.StatusServiceUnavailable)
		return
	}
	jobs, code, err := s.readJobs(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	entries := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		entry := map[string]any{
			"file_name": job.Filename,
			"job_id":    job.ID,
			"doc_id":    job.DocID,
			"poll_url":  "/api/jobs/" + job.ID,
		}
		if err := s.orchestrator.Submit(job); err != nil {
			entry["error"] = err.Error()
		}
		entry["status"] = job.Snapshot().Status
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": entries})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// readJobs reads the multipart "files" parts into queued jobs. A file over
// the per-file limit rejects the whole request with 413.
func (s *Server) readJobs(w http.ResponseWriter, r *http.Request) ([]*pipeline.Job, int, error) {
	maxFile := s.cfg.MaxUploadBytes
	limit := maxFile*int64(max(s.cfg.MaxFilesPerRequest, 1)) + 1<<20 // form overhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request exceeds max size (%d bytes)", limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}

	jobs := make([]*pipeline.Job, 0, len(headers))
	for _, fh := range headers {
		filename := sanitizeFilename(fh.Filename)
		if fh.Size > maxFile {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s exceeds max size (%d bytes)", filename, maxFile)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("open %s: %w", filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxFile+1))
		f.Close()
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("read %s: %w", filename, err)
		}
		if int64(len(data)) > maxFile {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s exceeds max size (%d bytes)", filename, maxFile)
		}
		jobs = append(jobs, pipeline.NewJob(filename, data))
	}

	if err := pipeline.CheckBatch(jobs, s.cfg.MaxFilesPerRequest); err != nil {
		if errors.Is(err, pipeline.ErrNoFiles) {
			return nil, http.StatusBadRequest, errors.New("at least one file is required")
		}
		return nil, http.StatusBadRequest, err
	}
	return jobs, 0, nil
}
