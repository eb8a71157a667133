package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionWorker_SweepDeletesOldEntries(t *testing.T) {
	store, db := newTestStore(t)

	old := &LogRecord{UserID: 1, EntityType: "COLOR", EntityID: "1", Action: LogCreate}
	recent := &LogRecord{UserID: 1, EntityType: "COLOR", EntityID: "2", Action: LogCreate}
	require.NoError(t, store.Append(old))
	require.NoError(t, store.Append(recent))
	require.NoError(t, db.Model(&LogRecord{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	worker := NewRetentionWorker(store, 1, nil)
	worker.sweep()

	entries, _, err := store.ListByEntity("COLOR", "1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, _, err = store.ListByEntity("COLOR", "2", 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRetentionWorker_DisabledWithoutRetention(t *testing.T) {
	store, _ := newTestStore(t)

	worker := NewRetentionWorker(store, 0, nil)
	done := make(chan struct{})
	go func() {
		worker.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a disabled worker must return immediately")
	}
}

func TestRetentionWorker_StopsOnCancel(t *testing.T) {
	store, _ := newTestStore(t)

	worker := NewRetentionWorker(store, 30, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
