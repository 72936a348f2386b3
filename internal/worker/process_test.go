package worker

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/clinic-events-processor/internal/progress"
	"github.com/ignite/clinic-events-processor/internal/storage"
)

// sinkNotifier collects messages instead of posting to Slack.
type sinkNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *sinkNotifier) Send(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *sinkNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

const testCSV = "event_id,clinic_id,patient_id,event_type,event_timestamp,revenue_amount,channel,treatment_type\n" +
	"e1,c1,p1,TREATMENT_COMPLETED,2025-01-20,100.50,web,CLEANING\n" +
	"e2,c1,p2,TREATMENT_COMPLETED,2025-01-21,200.00,web,WHITENING\n"

func setupProcessor(t *testing.T) (*Processor, *storage.LocalStorage, *sinkNotifier) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	notifier := &sinkNotifier{}
	proc := NewProcessor(store, notifier, progress.NewTracker(nil), 10*time.Second)
	return proc, store, notifier
}

func TestProcessFileFromStorage(t *testing.T) {
	proc, store, notifier := setupProcessor(t)
	ctx := context.Background()

	key := "uploads/job-1/events.csv"
	require.NoError(t, store.Save(ctx, key, strings.NewReader(testCSV)))

	err := proc.ProcessFile(ctx, Job{ID: "job-1", Filename: "events.csv", StorageKey: key})
	require.NoError(t, err)

	messages := notifier.all()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "Processing started for job job-1")
	assert.Contains(t, messages[1], "Processing Complete (job-1)")
	assert.Contains(t, messages[1], "• Total Rows: 2")
	assert.Contains(t, messages[1], "• Total Revenue: $300.50")
	assert.Contains(t, messages[1], "2025-01-20 - 2025-01-26:")

	// The spooled file is removed after processing.
	_, err = store.GetStream(ctx, key)
	assert.Error(t, err)
}

func TestProcessFileDirectStream(t *testing.T) {
	proc, _, notifier := setupProcessor(t)

	stream := io.NopCloser(strings.NewReader(testCSV))

	err := proc.ProcessFile(context.Background(), Job{ID: "job-2", Filename: "events.csv", Stream: stream})
	require.NoError(t, err)
	require.Len(t, notifier.all(), 2)
}

func TestProcessFileNoInput(t *testing.T) {
	proc, _, _ := setupProcessor(t)

	err := proc.ProcessFile(context.Background(), Job{ID: "job-3", Filename: "events.csv"})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestProcessFileMissingObject(t *testing.T) {
	proc, _, notifier := setupProcessor(t)

	err := proc.ProcessFile(context.Background(), Job{ID: "job-4", Filename: "events.csv", StorageKey: "uploads/job-4/gone.csv"})
	require.Error(t, err)

	messages := notifier.all()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1], "Error while processing CSV file events.csv")
}

func TestProcessFileFatalCSV(t *testing.T) {
	proc, store, notifier := setupProcessor(t)
	ctx := context.Background()

	bad := "event_id,clinic_id,patient_id,event_type,event_timestamp\ne1,c1,p1,\"broken,2025-01-20"
	key := "uploads/job-5/bad.csv"
	require.NoError(t, store.Save(ctx, key, strings.NewReader(bad)))

	err := proc.ProcessFile(ctx, Job{ID: "job-5", Filename: "bad.csv", StorageKey: key})
	require.Error(t, err)

	messages := notifier.all()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1], "Error while processing CSV file bad.csv")
}
