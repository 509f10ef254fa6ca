package models

// Training represents a saved training definition: a named selection
// of vocabulary units to drill together
type Training struct {
	Name         string `json:"name" db:"name"`
	WordCount    int    `json:"word_count" db:"word_count"`
	LastModified int64  `json:"last_modified" db:"last_modified"` // Unix timestamp
	FileIndexes  []int  `json:"file_indexes"`
}
