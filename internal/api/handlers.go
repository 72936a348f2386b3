package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/clinic-events-processor/internal/progress"
	"github.com/ignite/clinic-events-processor/internal/storage"
	"github.com/ignite/clinic-events-processor/internal/worker"
)

// Handlers carries the dependencies the HTTP endpoints need.
type Handlers struct {
	store       storage.Storage
	processor   *worker.Processor
	tracker     *progress.Tracker
	maxFileSize int64
}

// NewHandlers creates the endpoint handler set.
func NewHandlers(store storage.Storage, proc *worker.Processor, tracker *progress.Tracker, maxFileSize int64) *Handlers {
	return &Handlers{
		store:       store,
		processor:   proc,
		tracker:     tracker,
		maxFileSize: maxFileSize,
	}
}

// HandleHealth is the liveness endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleJobProgress returns the latest progress snapshot for a job.
func (h *Handlers) HandleJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	p, err := h.tracker.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, progress.ErrNotFound) {
			respondError(w, http.StatusNotFound, "job progress not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to read job progress")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
