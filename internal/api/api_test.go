package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/resumeforge/internal/acquire"
	"github.com/dgallion1/resumeforge/internal/assemble"
	"github.com/dgallion1/resumeforge/internal/config"
	"github.com/dgallion1/resumeforge/internal/enrich"
	"github.com/dgallion1/resumeforge/internal/pipeline"
	"github.com/dgallion1/resumeforge/internal/resume"
	"github.com/dgallion1/resumeforge/internal/store"
)

const sample = "John Smith\njohn@x.com\nEXPERIENCE:\nAcme Corp - Engineer\nEDUCATION:\nState University"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, docID string, rec resume.Record) ([]byte, resume.Plan, error) {
	n := len(rec.Sections.Experience)
	return []byte("%PDF-1.4 " + docID), resume.Plan{Fitting: n, Total: n, Probes: 1}, nil
}

type testEnv struct {
	server *Server
	store  store.Store
	orch   *pipeline.Orchestrator
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Config{
		CORSOrigins:        []string{"*"},
		MaxUploadBytes:     1 << 20,
		MaxFilesPerRequest: 5,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	v, err := assemble.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	fs, err := store.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	client := enrich.NewClient(enrich.Offline{}, nil, time.Second, discardLogger())
	proc := pipeline.NewProcessor(pipeline.Deps{
		Acquirer:  acquire.New(acquire.Options{ScratchDir: t.TempDir()}, discardLogger()),
		Enricher:  client,
		Validator: v,
		Renderer:  stubRenderer{},
		Store:     fs,
	}, pipeline.Options{BatchConcurrency: 2}, discardLogger())

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{WorkerCount: 1, MaxQueueSize: 4, JobTTL: time.Hour}, proc, discardLogger())
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testEnv{
		server: NewServer(proc, orch, fs, client, discardLogger(), cfg),
		store:  fs,
		orch:   orch,
	}
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, field string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(f.data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func postFiles(t *testing.T, path string, files ...upload) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, "files", files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

type uploadResponse struct {
	Results []map[string]any `json:"results"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.APIKey = "secret" })
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["queue_depth"]; !ok {
		t.Error("expected queue_depth in health body")
	}
}

func TestUpload_MixedResults(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(postFiles(t, "/api/upload",
		upload{"cv.txt", []byte(sample)},
		upload{"blob.bin", []byte{0, 1, 2, 0xff}},
	))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when one file succeeds, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[uploadResponse](t, rec)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	ok := resp.Results[0]
	if ok["file_name"] != "cv.txt" {
		t.Errorf("expected results in upload order, got %v", ok["file_name"])
	}
	id, _ := ok["id"].(string)
	if id == "" || ok["pdf_url"] != "/api/result/"+id {
		t.Errorf("unexpected success entry %v", ok)
	}
	// Offline enrichment yields no experience entries.
	if ok["fitting_count"] != float64(0) {
		t.Errorf("expected fitting_count 0, got %v", ok["fitting_count"])
	}
	if _, has := ok["error"]; has {
		t.Errorf("success entry carries an error: %v", ok)
	}

	bad := resp.Results[1]
	errBody, _ := bad["error"].(map[string]any)
	if bad["file_name"] != "blob.bin" || errBody["kind"] != string(resume.KindUnsupportedFormat) {
		t.Errorf("unexpected failure entry %v", bad)
	}

	// The stored PDF is served back.
	res := env.do(httptest.NewRequest(http.MethodGet, "/api/result/"+id, nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected stored result, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !strings.HasPrefix(res.Body.String(), "%PDF") {
		t.Errorf("unexpected body %q", res.Body.String())
	}
}

func TestUpload_AllFailed(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(postFiles(t, "/api/upload", upload{"blob.bin", []byte{0, 1, 2, 0xff}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	resp := decode[uploadResponse](t, rec)
	if len(resp.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(resp.Results))
	}
}

func TestUpload_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
	}{
		{
			name:   "no files",
			req:    func(t *testing.T) *http.Request { return postFiles(t, "/api/upload") },
			status: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "file too large",
			req: func(t *testing.T) *http.Request {
				return postFiles(t, "/api/upload", upload{"big.txt", bytes.Repeat([]byte("a"), 2048)})
			},
			status: http.StatusRequestEntityTooLarge,
		},
		{
			name: "too many files",
			req: func(t *testing.T) *http.Request {
				var files []upload
				for range 3 {
					files = append(files, upload{"cv.txt", []byte(sample)})
				}
				return postFiles(t, "/api/upload", files...)
			},
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, func(c *config.Config) {
				c.MaxUploadBytes = 1024
				c.MaxFilesPerRequest = 2
			})
			rec := env.do(tc.req(t))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if body := decode[map[string]string](t, rec); body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestResult_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, id := range []string{"3f1e2d4c-0000-4000-8000-000000000000", "not-a-uuid"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/result/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", id, rec.Code)
		}
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.APIKey = "secret" })

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if rec := env.do(req); rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestAuth_DisabledWithoutKey(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open access without API_KEY, got %d", rec.Code)
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(postFiles(t, "/api/jobs", upload{"cv.txt", []byte(sample)}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[struct {
		Jobs []map[string]any `json:"jobs"`
	}](t, rec)
	if len(body.Jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(body.Jobs))
	}
	jobID, _ := body.Jobs[0]["job_id"].(string)
	if jobID == "" || body.Jobs[0]["poll_url"] != "/api/jobs/"+jobID {
		t.Fatalf("unexpected job entry %v", body.Jobs[0])
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		poll := env.do(httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil))
		if poll.Code != http.StatusOK {
			t.Fatalf("poll: expected 200, got %d", poll.Code)
		}
		snap = decode[pipeline.JobSnapshot](t, poll)
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted || snap.Result == nil {
		t.Fatalf("expected completed job with result, got %+v", snap)
	}
	if snap.Result.ID != snap.DocID {
		t.Errorf("expected result id %s, got %s", snap.DocID, snap.Result.ID)
	}
}

func TestJobs_UnknownID(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLLMStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(postFiles(t, "/api/upload", upload{"cv.txt", []byte(sample)}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[struct {
		Stats enrich.StatsSnapshot `json:"stats"`
	}](t, rec)
	if body.Stats.Provider != "offline" {
		t.Errorf("expected offline provider in stats, got %+v", body.Stats)
	}
}

func TestLLMStats_Unavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	s := NewServer(env.server.processor, env.orch, env.store, nil, discardLogger(), env.server.cfg)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.APIKey = "secret" })
	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preflight 200 without auth, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected permissive origin, got %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"cv.pdf", "cv.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cv.docx`, "cv.docx"},
		{"", "unnamed"},
		{"..", "_"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
