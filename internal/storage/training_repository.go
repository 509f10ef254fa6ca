package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// TrainingRepository handles database operations for saved trainings
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository creates a new repository instance
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

type trainingRow struct {
	Name         string `db:"name"`
	WordCount    int    `db:"word_count"`
	LastModified int64  `db:"last_modified"`
	FileIndexes  string `db:"file_indexes"`
}

// GetAll returns all trainings, most recently modified first
func (r *TrainingRepository) GetAll() ([]models.Training, error) {
	var rows []trainingRow
	err := r.db.Select(&rows,
		"SELECT name, word_count, last_modified, file_indexes FROM trainings ORDER BY last_modified DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get trainings: %v", err)
	}

	trainings := make([]models.Training, 0, len(rows))
	for _, row := range rows {
		trainings = append(trainings, row.toModel())
	}
	return trainings, nil
}

// GetByName returns one training, or (nil, nil) if it does not exist
func (r *TrainingRepository) GetByName(name string) (*models.Training, error) {
	var row trainingRow
	err := r.db.Get(&row,
		"SELECT name, word_count, last_modified, file_indexes FROM trainings WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training: %v", err)
	}
	training := row.toModel()
	return &training, nil
}

// Save creates a training or replaces an existing one with the same name
func (r *TrainingRepository) Save(training models.Training) error {
	_, err := r.db.Exec(`
		INSERT INTO trainings (name, word_count, last_modified, file_indexes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			word_count = excluded.word_count,
			last_modified = excluded.last_modified,
			file_indexes = excluded.file_indexes
	`, training.Name, training.WordCount, training.LastModified, joinIndexes(training.FileIndexes))
	if err != nil {
		return fmt.Errorf("failed to save training: %v", err)
	}
	return nil
}

// Touch updates a training's last-modified timestamp
func (r *TrainingRepository) Touch(name string) error {
	_, err := r.db.Exec("UPDATE trainings SET last_modified = $1 WHERE name = $2",
		time.Now().Unix(), name)
	if err != nil {
		return fmt.Errorf("failed to touch training: %v", err)
	}
	return nil
}

func (row trainingRow) toModel() models.Training {
	return models.Training{
		Name:         row.Name,
		WordCount:    row.WordCount,
		LastModified: row.LastModified,
		FileIndexes:  splitIndexes(row.FileIndexes),
	}
}

func joinIndexes(indexes []int) string {
	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		parts = append(parts, strconv.Itoa(idx))
	}
	return strings.Join(parts, ",")
}

func splitIndexes(s string) []int {
	if s == "" {
		return []int{}
	}
	parts := strings.Split(s, ",")
	indexes := make([]int, 0, len(parts))
	for _, p := range parts {
		if idx, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}
