package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"docrank/internal/parser"
	"docrank/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleSubmitCollection accepts a multipart collection: a persona, a
// task and one or more document files. The collection is queued as a
// job; the caller polls the status endpoint and fetches the result
// once the job completes.
func (s *Server) handleSubmitCollection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	persona := r.FormValue("persona")
	if persona == "" {
		jsonError(w, "persona is required", http.StatusBadRequest)
		return
	}
	task := r.FormValue("task")
	if task == "" {
		jsonError(w, "task is required", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var files []pipeline.InputFile
	for _, fh := range fileHeaders {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to open %s", filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to read %s", filename), http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		files = append(files, pipeline.InputFile{Name: filename, Data: data})
	}

	// Optional ranking parameter overrides.
	topSections := 0
	if v := r.FormValue("top_sections"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "top_sections must be a positive integer", http.StatusBadRequest)
			return
		}
		topSections = n
	}
	topChunks := 0
	if v := r.FormValue("top_chunks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "top_chunks must be a positive integer", http.StatusBadRequest)
			return
		}
		topChunks = n
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:          uuid.NewString(),
		Persona:     persona,
		Task:        task,
		Status:      pipeline.StatusQueued,
		TopSections: topSections,
		TopChunks:   topChunks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	job.SetFiles(files)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     job.Snapshot().Status,
		"documents":  len(files),
		"poll_url":   fmt.Sprintf("/api/collections/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/collections/%s/result", job.ID),
	})
}

func (s *Server) handleCollectionStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleCollectionResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted, pipeline.StatusPartial:
	case pipeline.StatusFailed:
		jsonError(w, "job failed", http.StatusConflict)
		return
	default:
		jsonError(w, fmt.Sprintf("job not finished (status %s)", snap.Status), http.StatusConflict)
		return
	}

	res := job.Result()
	if res == nil {
		jsonError(w, "result unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleEmbeddingStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.embedStats.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
