package models

// TrainingQueueState is the full state of one training session.
// The first word in Words is always the current word. The whole object is
// persisted as a single slot and rewritten on every mutation.
type TrainingQueueState struct {
	TrainingName string             `json:"trainingName"`
	Words        []Word             `json:"words"`
	UserGrades   map[string]float64 `json:"userGrades"` // word id -> latest local grade
	RemovedIDs   []string           `json:"removedIds"`
	AddedToEnd   []string           `json:"addedToEnd"`
	InitialSize  int                `json:"initialSize,omitempty"`
}
