package models

// GradeUpdate is one word's latest grade to be written back to the server
type GradeUpdate struct {
	WordID string  `json:"word_id"`
	Grade  float64 `json:"grade"`
}

// SyncPayload batches all local changes from one training session for a
// single push to the backend. The backend applies GradeUpdates as
// authoritative overwrites; RemovedIDs minus AddedToEnd are the words that
// were durably reviewed.
type SyncPayload struct {
	TrainingName string        `json:"training_name"`
	GradeUpdates []GradeUpdate `json:"grade_updates"`
	RemovedIDs   []string      `json:"removed_ids"`
	AddedToEnd   []string      `json:"added_to_end"`
}
