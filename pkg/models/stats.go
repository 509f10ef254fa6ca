package models

// TrainingStats describes progress through the current training session.
// TotalWords is the queue size at session start, so re-queued words do not
// inflate the denominator.
type TrainingStats struct {
	TotalWords     int     `json:"total_words"`
	RemainingWords int     `json:"remaining_words"`
	CompletedWords int     `json:"completed_words"`
	Progress       float64 `json:"progress"` // percentage, 0-100
}
