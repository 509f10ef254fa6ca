package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// WordRepository handles database operations for the local word corpus
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByFileIndexes returns all words belonging to the given units, in
// corpus order
func (r *WordRepository) GetByFileIndexes(fileIndexes []int) ([]models.Word, error) {
	if len(fileIndexes) == 0 {
		return []models.Word{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT id, word, meaning, file_index, knowing_grade FROM words WHERE file_index IN (?) ORDER BY file_index, id",
		fileIndexes)
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %v", err)
	}

	var words []models.Word
	if err := r.db.Select(&words, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	return words, nil
}

// CountByFileIndexes returns how many words the given units contain
func (r *WordRepository) CountByFileIndexes(fileIndexes []int) (int, error) {
	if len(fileIndexes) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("SELECT COUNT(*) FROM words WHERE file_index IN (?)", fileIndexes)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %v", err)
	}

	var count int
	if err := r.db.Get(&count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count words: %v", err)
	}
	return count, nil
}

// Upsert inserts a word or updates its text fields if the id already exists.
// The stored knowing grade is preserved on update.
func (r *WordRepository) Upsert(word models.Word) error {
	_, err := r.db.Exec(`
		INSERT INTO words (id, word, meaning, file_index, knowing_grade)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			word = excluded.word,
			meaning = excluded.meaning,
			file_index = excluded.file_index
	`, word.ID, word.Word, word.Meaning, word.FileIndex, word.KnowingGrade)
	if err != nil {
		return fmt.Errorf("failed to upsert word: %v", err)
	}
	return nil
}

// UpdateGrade overwrites a word's knowing grade
func (r *WordRepository) UpdateGrade(wordID string, grade float64) error {
	_, err := r.db.Exec("UPDATE words SET knowing_grade = $1 WHERE id = $2", grade, wordID)
	if err != nil {
		return fmt.Errorf("failed to update knowing grade: %v", err)
	}
	return nil
}

// Count returns the total number of words in the corpus
func (r *WordRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %v", err)
	}
	return count, nil
}
