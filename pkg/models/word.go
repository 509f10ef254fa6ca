package models

// Word represents a single vocabulary item in a training
type Word struct {
	ID           string  `json:"id" db:"id"`
	Word         string  `json:"word" db:"word"`
	Meaning      string  `json:"meaning" db:"meaning"`
	FileIndex    int     `json:"file_index" db:"file_index"`
	KnowingGrade float64 `json:"knowing_grade" db:"knowing_grade"`
}
