package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ignite/clinic-events-processor/internal/metrics"
	"github.com/ignite/clinic-events-processor/internal/notify"
	"github.com/ignite/clinic-events-processor/internal/processor"
	"github.com/ignite/clinic-events-processor/internal/progress"
	"github.com/ignite/clinic-events-processor/internal/storage"
)

var ErrNoInput = errors.New("job needs either a stream or a storage key")

// Job describes one uploaded file to process.
type Job struct {
	ID       string
	Filename string

	// StorageKey locates the spooled file; Stream takes precedence when
	// both are set (direct processing without a storage round-trip).
	StorageKey string
	Stream     io.ReadCloser
}

// Notifier is the outbound notification sink (Slack in production).
type Notifier interface {
	Send(ctx context.Context, message string)
}

// Processor orchestrates one CSV processing run end to end: stream
// resolution, the aggregation pipeline, progress fan-out, notifications
// and storage cleanup.
type Processor struct {
	store            storage.Storage
	notifier         Notifier
	tracker          *progress.Tracker
	progressInterval time.Duration
}

// NewProcessor creates a job processor. tracker may be disabled.
func NewProcessor(store storage.Storage, notifier Notifier, tracker *progress.Tracker, progressInterval time.Duration) *Processor {
	return &Processor{
		store:            store,
		notifier:         notifier,
		tracker:          tracker,
		progressInterval: progressInterval,
	}
}

// ProcessFile runs the aggregation pipeline for one job. Row-level
// problems are tallied inside the pipeline; only stream-level faults
// make this return an error.
func (p *Processor) ProcessFile(ctx context.Context, job Job) error {
	log.Printf("[Worker] job %s: processing started (file=%s, key=%s)", job.ID, job.Filename, job.StorageKey)
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	p.notifier.Send(ctx, notify.FormatStartMessage(job.ID, job.Filename))

	stream := job.Stream
	if stream == nil {
		if job.StorageKey == "" {
			return ErrNoInput
		}
		s, err := p.store.GetStream(ctx, job.StorageKey)
		if err != nil {
			metrics.ProcessingErrors.WithLabelValues("storage_error").Inc()
			p.fail(ctx, job, err)
			return fmt.Errorf("fetching %s: %w", job.StorageKey, err)
		}
		stream = s
	}
	defer stream.Close()

	// Progress bridge: the row loop hands snapshots to a bounded channel
	// and never waits on the observers. When the previous snapshot is
	// still being delivered the new one is dropped; the next tick brings
	// fresher numbers anyway.
	snapshots := make(chan *processor.Metrics, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for snap := range snapshots {
			p.tracker.Set(ctx, &progress.JobProgress{
				JobID:     job.ID,
				Status:    "processing",
				TotalRows: snap.TotalRows,
				Errors:    snap.Errors,
				Revenue:   snap.Revenue,
				UpdatedAt: time.Now(),
			})
			p.notifier.Send(ctx, notify.FormatProgressMessage(job.ID, snap))
		}
	}()

	result, err := processor.Process(ctx, stream, processor.Options{
		ProgressInterval: p.progressInterval,
		OnProgress: func(snap *processor.Metrics) {
			select {
			case snapshots <- snap:
			default:
			}
		},
	})
	close(snapshots)
	<-drained

	if err != nil {
		metrics.ProcessingErrors.WithLabelValues("processing_error").Inc()
		p.fail(ctx, job, err)
		return fmt.Errorf("processing %s: %w", job.Filename, err)
	}

	if result.Metrics.Errors > 0 {
		metrics.ProcessingErrors.WithLabelValues("row_error").Add(float64(result.Metrics.Errors))
	}

	log.Printf("[Worker] job %s: completed (rows=%d errors=%d revenue=%.2f duration=%s)",
		job.ID, result.Metrics.TotalRows, result.Metrics.Errors, result.Metrics.Revenue, result.Metrics.Duration())

	p.tracker.Set(ctx, &progress.JobProgress{
		JobID:     job.ID,
		Status:    "completed",
		TotalRows: result.Metrics.TotalRows,
		Errors:    result.Metrics.Errors,
		Revenue:   result.Metrics.Revenue,
		UpdatedAt: time.Now(),
	})
	p.notifier.Send(ctx, notify.FormatCompletionMessage(job.ID, result.Metrics, result.Analytics))

	// Clean up the spooled file once its numbers are delivered.
	if job.StorageKey != "" {
		if err := p.store.Delete(ctx, job.StorageKey); err != nil {
			log.Printf("[Worker] job %s: failed to delete %s: %v", job.ID, job.StorageKey, err)
		} else {
			log.Printf("[Worker] job %s: deleted %s after processing", job.ID, job.StorageKey)
		}
	}

	return nil
}

func (p *Processor) fail(ctx context.Context, job Job, cause error) {
	p.tracker.Set(ctx, &progress.JobProgress{
		JobID:     job.ID,
		Status:    "failed",
		UpdatedAt: time.Now(),
		Error:     cause.Error(),
	})
	p.notifier.Send(ctx, notify.FormatErrorMessage(job.ID, job.Filename, cause.Error()))
}
