package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// LocalProvider serves trainings from the local store instead of the remote
// backend. It is the offline/development mode: same contract as the remote
// provider, with sync payloads applied directly to the local corpus.
type LocalProvider struct {
	words     *WordRepository
	trainings *TrainingRepository
}

// NewLocalProvider creates a provider over the given database
func NewLocalProvider(db *sqlx.DB) *LocalProvider {
	return &LocalProvider{
		words:     NewWordRepository(db),
		trainings: NewTrainingRepository(db),
	}
}

// ListTrainings returns all saved trainings, most recently modified first
func (p *LocalProvider) ListTrainings(ctx context.Context) ([]models.Training, error) {
	return p.trainings.GetAll()
}

// CreateTraining saves a new training over the given units
func (p *LocalProvider) CreateTraining(ctx context.Context, name string, fileIndexes []int) (*models.Training, error) {
	wordCount, err := p.words.CountByFileIndexes(fileIndexes)
	if err != nil {
		return nil, err
	}

	training := models.Training{
		Name:         name,
		WordCount:    wordCount,
		LastModified: time.Now().Unix(),
		FileIndexes:  fileIndexes,
	}
	if err := p.trainings.Save(training); err != nil {
		return nil, err
	}
	return &training, nil
}

// LoadTraining returns the training's full word list and the stored grades,
// keyed by word id
func (p *LocalProvider) LoadTraining(ctx context.Context, name string) ([]models.Word, map[string]float64, error) {
	training, err := p.trainings.GetByName(name)
	if err != nil {
		return nil, nil, err
	}
	if training == nil {
		return nil, nil, fmt.Errorf("training %q does not exist", name)
	}

	words, err := p.words.GetByFileIndexes(training.FileIndexes)
	if err != nil {
		return nil, nil, err
	}

	grades := make(map[string]float64, len(words))
	for _, word := range words {
		grades[word.ID] = word.KnowingGrade
	}
	return words, grades, nil
}

// LoadUnit returns all words of one unit for ungraded browsing
func (p *LocalProvider) LoadUnit(ctx context.Context, fileIndex int) ([]models.Word, error) {
	return p.words.GetByFileIndexes([]int{fileIndex})
}

// PushSync applies a session's grade updates to the local corpus
func (p *LocalProvider) PushSync(ctx context.Context, payload *models.SyncPayload) error {
	for _, update := range payload.GradeUpdates {
		if err := p.words.UpdateGrade(update.WordID, update.Grade); err != nil {
			return err
		}
	}
	if payload.TrainingName != "" {
		if err := p.trainings.Touch(payload.TrainingName); err != nil {
			return err
		}
	}
	return nil
}
