package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "uploads/job-1/events.csv"
	body := "event_id,clinic_id\ne1,c1\n"

	require.NoError(t, store.Save(ctx, key, strings.NewReader(body)))

	stream, err := store.GetStream(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, body, string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.GetStream(ctx, key)
	assert.Error(t, err)
}

func TestLocalStorageMissingKey(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetStream(context.Background(), "uploads/nope/missing.csv")
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"../escape.csv", "/etc/passwd", ""} {
		err := store.Save(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}
