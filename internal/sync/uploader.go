package sync

import (
	"context"
	"log"

	"github.com/example/vocabtrainer/internal/storage"
	"github.com/example/vocabtrainer/pkg/models"
)

// Pusher uploads one sync payload to the backend
type Pusher interface {
	PushGrades(ctx context.Context, payload *models.SyncPayload) error
}

// Uploader pushes end-of-session grade updates to the backend. The user is
// never blocked on the push: a failed payload goes to the persisted outbox
// and is replayed later instead of being dropped.
type Uploader struct {
	pusher Pusher
	outbox *storage.OutboxRepository
}

// NewUploader creates an uploader over the given pusher and outbox
func NewUploader(pusher Pusher, outbox *storage.OutboxRepository) *Uploader {
	return &Uploader{pusher: pusher, outbox: outbox}
}

// Push uploads a payload, parking it in the outbox when the backend is
// unreachable. Only an outbox write failure is returned as an error; in that
// case the payload is genuinely lost and the caller should know.
func (u *Uploader) Push(ctx context.Context, payload *models.SyncPayload) error {
	if payload == nil || len(payload.GradeUpdates) == 0 {
		return nil
	}

	if err := u.pusher.PushGrades(ctx, payload); err != nil {
		log.Printf("Sync push for training %q failed, storing in outbox: %v", payload.TrainingName, err)
		if err := u.outbox.Add(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReplayOutbox re-pushes pending payloads, oldest first, deleting each on
// success. It stops at the first push failure since later payloads will most
// likely fail the same way.
func (u *Uploader) ReplayOutbox(ctx context.Context) error {
	entries, err := u.outbox.List()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		payload := entry.Payload
		if err := u.pusher.PushGrades(ctx, &payload); err != nil {
			log.Printf("Outbox replay stopped at entry %d: %v", entry.ID, err)
			return nil
		}
		if err := u.outbox.Delete(entry.ID); err != nil {
			return err
		}
		log.Printf("Replayed sync payload for training %q", payload.TrainingName)
	}
	return nil
}
