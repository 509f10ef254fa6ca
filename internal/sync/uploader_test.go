package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabtrainer/internal/storage"
	"github.com/example/vocabtrainer/pkg/models"
)

// flakyPusher fails a set number of pushes, then succeeds
type flakyPusher struct {
	failures int
	pushed   []models.SyncPayload
}

func (p *flakyPusher) PushGrades(ctx context.Context, payload *models.SyncPayload) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("backend unreachable")
	}
	p.pushed = append(p.pushed, *payload)
	return nil
}

func testOutbox(t *testing.T) *storage.OutboxRepository {
	t.Helper()
	db, err := storage.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewOutboxRepository(db)
}

func testPayload(training string) *models.SyncPayload {
	return &models.SyncPayload{
		TrainingName: training,
		GradeUpdates: []models.GradeUpdate{{WordID: "w_1", Grade: 5}},
		RemovedIDs:   []string{"w_1"},
		AddedToEnd:   []string{},
	}
}

func TestUploader_PushSuccess(t *testing.T) {
	pusher := &flakyPusher{}
	outbox := testOutbox(t)
	uploader := NewUploader(pusher, outbox)

	require.NoError(t, uploader.Push(context.Background(), testPayload("basics")))
	require.Len(t, pusher.pushed, 1)

	entries, err := outbox.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploader_PushFailureGoesToOutbox(t *testing.T) {
	pusher := &flakyPusher{failures: 1}
	outbox := testOutbox(t)
	uploader := NewUploader(pusher, outbox)

	// The push itself fails but Push does not error: the payload is parked
	require.NoError(t, uploader.Push(context.Background(), testPayload("basics")))
	assert.Empty(t, pusher.pushed)

	entries, err := outbox.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "basics", entries[0].Payload.TrainingName)
}

func TestUploader_EmptyPayloadIsSkipped(t *testing.T) {
	pusher := &flakyPusher{}
	uploader := NewUploader(pusher, testOutbox(t))

	require.NoError(t, uploader.Push(context.Background(), nil))
	require.NoError(t, uploader.Push(context.Background(), &models.SyncPayload{TrainingName: "empty"}))
	assert.Empty(t, pusher.pushed)
}

func TestUploader_ReplayOutbox(t *testing.T) {
	pusher := &flakyPusher{failures: 2}
	outbox := testOutbox(t)
	uploader := NewUploader(pusher, outbox)

	require.NoError(t, uploader.Push(context.Background(), testPayload("first")))
	require.NoError(t, uploader.Push(context.Background(), testPayload("second")))

	// Backend is reachable again: both payloads drain in order
	require.NoError(t, uploader.ReplayOutbox(context.Background()))
	require.Len(t, pusher.pushed, 2)
	assert.Equal(t, "first", pusher.pushed[0].TrainingName)
	assert.Equal(t, "second", pusher.pushed[1].TrainingName)

	entries, err := outbox.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploader_ReplayStopsOnFailure(t *testing.T) {
	pusher := &flakyPusher{failures: 3}
	outbox := testOutbox(t)
	uploader := NewUploader(pusher, outbox)

	require.NoError(t, uploader.Push(context.Background(), testPayload("first")))
	require.NoError(t, uploader.Push(context.Background(), testPayload("second")))

	// Still down: nothing is lost, nothing is pushed
	require.NoError(t, uploader.ReplayOutbox(context.Background()))
	assert.Empty(t, pusher.pushed)

	entries, err := outbox.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
