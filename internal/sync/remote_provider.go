package sync

import (
	"context"

	"github.com/example/vocabtrainer/internal/api"
	"github.com/example/vocabtrainer/pkg/models"
)

// RemoteProvider serves trainings from the remote backend and routes sync
// pushes through the outbox-backed uploader
type RemoteProvider struct {
	client   *api.Client
	uploader *Uploader
}

// NewRemoteProvider creates a provider over the given backend client
func NewRemoteProvider(client *api.Client, uploader *Uploader) *RemoteProvider {
	return &RemoteProvider{client: client, uploader: uploader}
}

// ListTrainings fetches all trainings from the backend
func (p *RemoteProvider) ListTrainings(ctx context.Context) ([]models.Training, error) {
	return p.client.ListTrainings(ctx)
}

// CreateTraining registers a new training on the backend
func (p *RemoteProvider) CreateTraining(ctx context.Context, name string, fileIndexes []int) (*models.Training, error) {
	return p.client.CreateTraining(ctx, name, fileIndexes)
}

// LoadTraining fetches a training's word list and stored grades
func (p *RemoteProvider) LoadTraining(ctx context.Context, name string) ([]models.Word, map[string]float64, error) {
	return p.client.LoadTraining(ctx, name)
}

// LoadUnit fetches one unit's word list from the backend
func (p *RemoteProvider) LoadUnit(ctx context.Context, fileIndex int) ([]models.Word, error) {
	return p.client.LoadUnit(ctx, fileIndex)
}

// PushSync uploads a session's changes, falling back to the outbox on failure
func (p *RemoteProvider) PushSync(ctx context.Context, payload *models.SyncPayload) error {
	return p.uploader.Push(ctx, payload)
}
