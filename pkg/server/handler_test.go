package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(s *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(s).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateJobEndpoint(t *testing.T) {
	s := NewService(stubGen{}, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/research", CreateJobRequest{Query: "history of tea", Breadth: 2, Depth: 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Status != StatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	if job.Query != "history of tea" || job.Breadth != 2 || job.Depth != 2 {
		t.Errorf("job = %+v", job)
	}
}

func TestCreateJobEndpointRejectsBadInput(t *testing.T) {
	s := NewService(stubGen{}, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/research", CreateJobRequest{Query: "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank query: status = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}
}

func TestGetJobEndpoint(t *testing.T) {
	s := NewService(stubGen{}, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/research/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid uuid: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/research/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job: status = %d, want 404", w.Code)
	}
}

func TestListJobsEndpoint(t *testing.T) {
	s := NewService(stubGen{}, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/research", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty store body = %q, want []", w.Body.String())
	}

	doJSON(t, r, http.MethodPost, "/api/research", CreateJobRequest{Query: "anything"})

	w = doJSON(t, r, http.MethodGet, "/api/research", nil)
	var jobs []Job
	if err := json.Unmarshal(w.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(jobs))
	}
}

func TestReportEndpoint(t *testing.T) {
	gen := &blockingGen{release: make(chan struct{})}
	s := NewService(gen, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/research", CreateJobRequest{Query: "history of tea", Breadth: 2, Depth: 2})
	var job Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}

	// The worker is parked inside query generation, so no report exists yet.
	w = doJSON(t, r, http.MethodGet, "/api/research/"+job.ID.String()+"/report", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("pending report: status = %d, want 404", w.Code)
	}

	close(gen.release)
	waitForStatus(t, s, job.ID, StatusCompleted)

	w = doJSON(t, r, http.MethodGet, "/api/research/"+job.ID.String()+"/report", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "# Research Report: history of tea") {
		t.Error("report body missing title")
	}
}

func TestLogsEndpoint(t *testing.T) {
	s := NewService(stubGen{}, stubSearcher{})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/research", CreateJobRequest{Query: "anything", Breadth: 2, Depth: 2})
	var job Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	waitForStatus(t, s, job.ID, StatusCompleted)

	w = doJSON(t, r, http.MethodGet, "/api/research/"+job.ID.String()+"/logs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var logs []LogEntry
	if err := json.Unmarshal(w.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(logs) == 0 {
		t.Error("no logs returned for completed job")
	}
}
