package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/clinic-events-processor/internal/metrics"
	"github.com/ignite/clinic-events-processor/internal/progress"
	"github.com/ignite/clinic-events-processor/internal/worker"
)

// HandleUpload accepts a multipart CSV upload, spools it through the
// storage backend and queues it for asynchronous processing. The file
// is streamed part-to-storage; it is never buffered in memory, so
// uploads far larger than RAM are fine up to the configured cap.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "expected a multipart form upload")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.FileUploads.WithLabelValues("error").Inc()
			respondError(w, http.StatusBadRequest, "error while reading upload")
			return
		}

		if part.FormName() != "file" {
			part.Close()
			continue
		}

		h.acceptFile(w, r, part)
		return
	}

	respondError(w, http.StatusBadRequest, "No file uploaded")
}

func (h *Handlers) acceptFile(w http.ResponseWriter, r *http.Request, part *multipart.Part) {
	defer part.Close()

	filename := filepath.Base(part.FileName())
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		respondError(w, http.StatusBadRequest, "Only CSV files allowed")
		return
	}

	jobID := uuid.New().String()
	key := fmt.Sprintf("uploads/%s/%s", jobID, filename)

	// Read one byte past the cap so oversized uploads are detectable
	// after the spool instead of silently truncated.
	counted := &countingReader{r: io.LimitReader(part, h.maxFileSize+1)}
	if err := h.store.Save(r.Context(), key, counted); err != nil {
		metrics.FileUploads.WithLabelValues("error").Inc()
		log.Printf("[API] job %s: failed to store upload %s: %v", jobID, filename, err)
		respondError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	if counted.n > h.maxFileSize {
		h.store.Delete(r.Context(), key)
		metrics.FileUploads.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("file exceeds maximum allowed size of %dMB", h.maxFileSize/(1024*1024)))
		return
	}

	metrics.FileUploads.WithLabelValues("success").Inc()
	h.tracker.Set(r.Context(), &progress.JobProgress{
		JobID:     jobID,
		Status:    "queued",
		UpdatedAt: time.Now(),
	})

	log.Printf("[API] job %s: upload accepted (file=%s, bytes=%d)", jobID, filename, counted.n)

	// Processing outlives the request; its outcome is reported through
	// the notification channel and the progress tracker, not this
	// response.
	go func() {
		job := worker.Job{ID: jobID, Filename: filename, StorageKey: key}
		if err := h.processor.ProcessFile(context.Background(), job); err != nil {
			log.Printf("[API] job %s: processing failed: %v", jobID, err)
		}
	}()

	respondJSON(w, http.StatusOK, map[string]string{
		"job_id":  jobID,
		"status":  "queued",
		"message": "File has been uploaded successfully. Check Slack for progress.",
	})
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
