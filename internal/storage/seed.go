package storage

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// seedWords is the built-in development corpus used when the local store is
// empty: English words with Hebrew meanings, grouped into four units
var seedWords = []models.Word{
	{ID: "w_1", Word: "hello", Meaning: "שלום", FileIndex: 1},
	{ID: "w_2", Word: "world", Meaning: "עולם", FileIndex: 1},
	{ID: "w_3", Word: "computer", Meaning: "מחשב", FileIndex: 1},
	{ID: "w_4", Word: "school", Meaning: "בית ספר", FileIndex: 1},
	{ID: "w_5", Word: "book", Meaning: "ספר", FileIndex: 1},
	{ID: "w_6", Word: "friend", Meaning: "חבר", FileIndex: 2},
	{ID: "w_7", Word: "house", Meaning: "בית", FileIndex: 2},
	{ID: "w_8", Word: "family", Meaning: "משפחה", FileIndex: 2},
	{ID: "w_9", Word: "water", Meaning: "מים", FileIndex: 2},
	{ID: "w_10", Word: "food", Meaning: "אוכל", FileIndex: 2},
	{ID: "w_11", Word: "love", Meaning: "אהבה", FileIndex: 3},
	{ID: "w_12", Word: "happy", Meaning: "שמח", FileIndex: 3},
	{ID: "w_13", Word: "music", Meaning: "מוזיקה", FileIndex: 3},
	{ID: "w_14", Word: "sun", Meaning: "שמש", FileIndex: 3},
	{ID: "w_15", Word: "moon", Meaning: "ירח", FileIndex: 3},
	{ID: "w_16", Word: "star", Meaning: "כוכב", FileIndex: 4},
	{ID: "w_17", Word: "ocean", Meaning: "אוקיינוס", FileIndex: 4},
	{ID: "w_18", Word: "mountain", Meaning: "הר", FileIndex: 4},
	{ID: "w_19", Word: "tree", Meaning: "עץ", FileIndex: 4},
	{ID: "w_20", Word: "flower", Meaning: "פרח", FileIndex: 4},
}

// EnsureSeeded populates an empty local store with the built-in corpus and a
// few default trainings. A store that already holds words is left untouched.
func EnsureSeeded(db *sqlx.DB) error {
	wordRepo := NewWordRepository(db)

	count, err := wordRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, word := range seedWords {
		if err := wordRepo.Upsert(word); err != nil {
			return fmt.Errorf("failed to seed words: %v", err)
		}
	}

	now := time.Now().Unix()
	defaults := []models.Training{
		{Name: "מילים בסיסיות - יחידות 1-2", FileIndexes: []int{1, 2}, LastModified: now - 86400},
		{Name: "אוצר מילים מתקדם", FileIndexes: []int{3, 4}, LastModified: now - 172800},
		{Name: "מילים יומיומיות", FileIndexes: []int{1, 2, 3}, LastModified: now - 259200},
	}

	trainingRepo := NewTrainingRepository(db)
	for _, training := range defaults {
		training.WordCount, err = wordRepo.CountByFileIndexes(training.FileIndexes)
		if err != nil {
			return err
		}
		if err := trainingRepo.Save(training); err != nil {
			return fmt.Errorf("failed to seed trainings: %v", err)
		}
	}
	return nil
}
