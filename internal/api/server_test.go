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
	"testing"
	"time"

	"docrank/internal/config"
	"docrank/internal/embedding"
	"docrank/internal/output"
	"docrank/internal/pipeline"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:            testAPIKey,
		EmbedProvider:     "local",
		EmbedDimension:    64,
		WorkerCount:       2,
		CollectionWorkers: 1,
		MaxQueueSize:      4,
		TopSections:       5,
		TopChunks:         3,
		ChunkCharBudget:   1000,
		MaxUploadBytes:    1 << 20,
		JobTTL:            time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := embedding.NewStats(time.Minute)
	emb := embedding.Instrument(embedding.NewLocalEmbedder(64), stats)

	orch := pipeline.NewOrchestrator(cfg, emb, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, stats, log, cfg)
}

func multipartBody(t *testing.T, persona, task string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if persona != "" {
		mw.WriteField("persona", persona)
	}
	if task != "" {
		mw.WriteField("task", task)
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/embedding", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/embedding", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/stats/embedding", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestSubmitCollectionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		persona string
		task    string
		files   map[string]string
		want    int
	}{
		{"missing persona", "", "do things", map[string]string{"a.txt": "text."}, http.StatusBadRequest},
		{"missing task", "Analyst", "", map[string]string{"a.txt": "text."}, http.StatusBadRequest},
		{"no files", "Analyst", "do things", nil, http.StatusBadRequest},
		{"unsupported type", "Analyst", "do things", map[string]string{"a.exe": "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, tt.persona, tt.task, tt.files)
			req := authedRequest(http.MethodPost, "/api/collections", body)
			req.Header.Set("Content-Type", ctype)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSubmitCollectionFullFlow(t *testing.T) {
	srv := newTestServer(t)

	body, ctype := multipartBody(t, "Travel Planner", "Plan a weekend trip", map[string]string{
		"sights.txt": "The old town has museums. The harbor hosts boat tours.",
		"eats.md":    "# Restaurants\n\nSeafood places line the shore.\n",
	})
	req := authedRequest(http.MethodPost, "/api/collections", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accept response: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("response missing job_id")
	}

	deadline := time.After(10 * time.Second)
	var status pipeline.JobSnapshot
	for {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/collections/"+accepted.JobID+"/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Status == pipeline.StatusCompleted {
			break
		}
		if status.Status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", status.Progress.Errors)
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in status %s", status.Status)
		case <-time.After(20 * time.Millisecond):
		}
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/collections/"+accepted.JobID+"/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result endpoint = %d: %s", rec.Code, rec.Body.String())
	}

	var res output.ResultDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.ExtractedSections) != 2 {
		t.Errorf("got %d ranked sections, want 2", len(res.ExtractedSections))
	}
	if res.Metadata.Persona != "Travel Planner" {
		t.Errorf("persona = %q", res.Metadata.Persona)
	}
}

func TestResultBeforeCompletion(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/collections/nope/result", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job: status = %d, want 404", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"dir/file.txt", "file.txt"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
