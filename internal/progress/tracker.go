package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Progress snapshots expire alongside any abandoned job state.
const keyTTL = 24 * time.Hour

var ErrNotFound = errors.New("job progress not found")

// JobProgress is the externally visible state of one processing job.
type JobProgress struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"` // queued, processing, completed, failed
	TotalRows int64     `json:"total_rows"`
	Errors    int64     `json:"errors"`
	Revenue   float64   `json:"revenue"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

// Tracker stores per-job progress snapshots in Redis so the API can
// answer polling clients while a job runs. Progress tracking is
// optional: a Tracker over a nil client is valid and every method is a
// no-op / not-found.
type Tracker struct {
	redis *redis.Client
}

// NewTracker creates a tracker; client may be nil to disable tracking.
func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{redis: client}
}

// Enabled reports whether a Redis backend is attached.
func (t *Tracker) Enabled() bool {
	return t != nil && t.redis != nil
}

// Set stores a snapshot. Failures are logged and swallowed: progress
// visibility must never affect the pipeline.
func (t *Tracker) Set(ctx context.Context, p *JobProgress) {
	if !t.Enabled() {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("[Progress] failed to marshal progress for job %s: %v", p.JobID, err)
		return
	}
	if err := t.redis.Set(ctx, t.key(p.JobID), data, keyTTL).Err(); err != nil {
		log.Printf("[Progress] failed to store progress for job %s: %v", p.JobID, err)
	}
}

// Get retrieves the latest snapshot for a job.
func (t *Tracker) Get(ctx context.Context, jobID string) (*JobProgress, error) {
	if !t.Enabled() {
		return nil, ErrNotFound
	}

	data, err := t.redis.Get(ctx, t.key(jobID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p JobProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Tracker) key(jobID string) string {
	return "jobs:" + jobID + ":progress"
}
