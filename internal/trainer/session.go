package trainer

import (
	"log"
	"sort"

	"github.com/example/vocabtrainer/pkg/models"
)

// Store persists the single training session slot. Load returns (nil, nil)
// when no session is stored.
type Store interface {
	SaveSession(state *models.TrainingQueueState) error
	LoadSession() (*models.TrainingQueueState, error)
	ClearSession() error
}

// Session is the handle for one active training session. It is the sole
// writer of the persisted queue state; all mutations are whole-object
// read-modify-write, so a single live Session per store slot is assumed.
//
// The session keeps an in-memory copy of its state. When the store fails,
// reads fall back to that copy and writes are dropped silently, so training
// continues for the lifetime of the process at the cost of durability.
type Session struct {
	store  Store
	cached *models.TrainingQueueState
}

// NewSession creates a session handle over the given store
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// SubmitResult is the outcome of grading the current word
type SubmitResult struct {
	NextWord           *models.Word
	QueueSizeRemaining int
	TrainingComplete   bool
	WordID             string
	OldGrade           float64
	NewGrade           float64
}

// ResumeResult reports whether a stored session can be continued
type ResumeResult struct {
	CurrentWord        *models.Word
	QueueSizeRemaining int
	TrainingComplete   bool
}

// Initialize starts a fresh session for the given training, overwriting any
// previous session unconditionally. Words keep their given order; the first
// word is the current one. Missing grades default to 0 on first use.
func (s *Session) Initialize(trainingName string, words []models.Word, initialGrades map[string]float64) {
	state := &models.TrainingQueueState{
		TrainingName: trainingName,
		Words:        append([]models.Word(nil), words...),
		UserGrades:   make(map[string]float64, len(initialGrades)),
		RemovedIDs:   []string{},
		AddedToEnd:   []string{},
		InitialSize:  len(words),
	}
	for id, grade := range initialGrades {
		state.UserGrades[id] = grade
	}
	s.save(state)
}

// CurrentWord returns the head of the queue, or nil when there is no active
// session or the queue is empty
func (s *Session) CurrentWord() *models.Word {
	state := s.load()
	if state == nil || len(state.Words) == 0 {
		return nil
	}
	word := state.Words[0]
	return &word
}

// SubmitGrade grades the current word and advances the queue. A word graded
// as unknown goes back to the tail of the queue (unless it is already queued
// again) so it comes around once more before the session can complete.
// Submitting against an empty or missing session is not an error: it reports
// a completed training with no grade change.
func (s *Session) SubmitGrade(outcome TestOutcome) (*SubmitResult, error) {
	state := s.load()
	if state == nil || len(state.Words) == 0 {
		return &SubmitResult{TrainingComplete: true}, nil
	}

	current := state.Words[0]
	oldGrade := state.UserGrades[current.ID]
	newGrade, err := CalcNewGrade(oldGrade, outcome)
	if err != nil {
		return nil, err
	}

	if state.UserGrades == nil {
		state.UserGrades = make(map[string]float64)
	}
	state.UserGrades[current.ID] = newGrade
	state.Words = state.Words[1:]

	if outcome == OutcomeUnknown {
		alreadyQueued := false
		for _, w := range state.Words {
			if w.ID == current.ID {
				alreadyQueued = true
				break
			}
		}
		if !alreadyQueued {
			requeued := current
			requeued.KnowingGrade = newGrade
			state.Words = append(state.Words, requeued)
			if !containsID(state.AddedToEnd, current.ID) {
				state.AddedToEnd = append(state.AddedToEnd, current.ID)
			}
		}
	}

	if !containsID(state.RemovedIDs, current.ID) {
		state.RemovedIDs = append(state.RemovedIDs, current.ID)
	}

	// Anything other than "didn't know" resolves a previously deferred word
	if outcome != OutcomeUnknown {
		state.AddedToEnd = removeID(state.AddedToEnd, current.ID)
	}

	s.save(state)

	result := &SubmitResult{
		QueueSizeRemaining: len(state.Words),
		TrainingComplete:   len(state.Words) == 0,
		WordID:             current.ID,
		OldGrade:           oldGrade,
		NewGrade:           newGrade,
	}
	if !result.TrainingComplete {
		next := state.Words[0]
		result.NextWord = &next
	}
	return result, nil
}

// Stats reports progress through the session. Words that were re-queued and
// not yet resolved do not count as completed. With no active session all
// counters are zero.
func (s *Session) Stats() models.TrainingStats {
	state := s.load()
	if state == nil {
		return models.TrainingStats{}
	}

	remaining := len(state.Words)
	total := state.InitialSize
	if total == 0 {
		total = remaining + len(state.RemovedIDs)
	}

	completed := 0
	for _, id := range state.RemovedIDs {
		if !containsID(state.AddedToEnd, id) {
			completed++
		}
	}

	progress := 0.0
	if total > 0 {
		progress = float64(completed) / float64(total) * 100
	}

	return models.TrainingStats{
		TotalWords:     total,
		RemainingWords: remaining,
		CompletedWords: completed,
		Progress:       progress,
	}
}

// Resume continues a stored session for the given training. A stored session
// for a different training is stale: it is cleared and "no active session"
// is reported, so sessions are never merged across trainings.
func (s *Session) Resume(trainingName string) ResumeResult {
	state := s.load()
	if state == nil || len(state.Words) == 0 {
		return ResumeResult{TrainingComplete: true}
	}

	if trainingName != "" && state.TrainingName != trainingName {
		log.Printf("Training name mismatch: requested %q, found %q. Clearing old session.",
			trainingName, state.TrainingName)
		s.Clear()
		return ResumeResult{TrainingComplete: true}
	}

	current := state.Words[0]
	return ResumeResult{
		CurrentWord:        &current,
		QueueSizeRemaining: len(state.Words) - 1,
	}
}

// SyncPayload snapshots all local changes for a push to the backend, or nil
// when there is no session
func (s *Session) SyncPayload() *models.SyncPayload {
	state := s.load()
	if state == nil {
		return nil
	}

	updates := make([]models.GradeUpdate, 0, len(state.UserGrades))
	for _, id := range sortedKeys(state.UserGrades) {
		updates = append(updates, models.GradeUpdate{WordID: id, Grade: state.UserGrades[id]})
	}

	return &models.SyncPayload{
		TrainingName: state.TrainingName,
		GradeUpdates: updates,
		RemovedIDs:   append([]string(nil), state.RemovedIDs...),
		AddedToEnd:   append([]string(nil), state.AddedToEnd...),
	}
}

// Clear drops the session from the store and memory. Idempotent.
func (s *Session) Clear() {
	s.cached = nil
	if err := s.store.ClearSession(); err != nil {
		log.Printf("Failed to clear training session: %v", err)
	}
}

func (s *Session) load() *models.TrainingQueueState {
	state, err := s.store.LoadSession()
	if err != nil {
		log.Printf("Failed to load training session, using in-memory state: %v", err)
		return s.cached
	}
	if state == nil {
		return nil
	}
	s.cached = state
	return state
}

func (s *Session) save(state *models.TrainingQueueState) {
	s.cached = state
	if err := s.store.SaveSession(state); err != nil {
		log.Printf("Failed to persist training session, continuing in memory: %v", err)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
