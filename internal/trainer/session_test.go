package trainer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabtrainer/pkg/models"
)

// memStore keeps the session slot in memory, round-tripping through JSON the
// way the real store does
type memStore struct {
	slot    []byte
	failing bool
}

func (m *memStore) SaveSession(state *models.TrainingQueueState) error {
	if m.failing {
		return errors.New("storage unavailable")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.slot = data
	return nil
}

func (m *memStore) LoadSession() (*models.TrainingQueueState, error) {
	if m.failing {
		return nil, errors.New("storage unavailable")
	}
	if m.slot == nil {
		return nil, nil
	}
	var state models.TrainingQueueState
	if err := json.Unmarshal(m.slot, &state); err != nil {
		return nil, nil
	}
	return &state, nil
}

func (m *memStore) ClearSession() error {
	if m.failing {
		return errors.New("storage unavailable")
	}
	m.slot = nil
	return nil
}

func testWords(ids ...string) []models.Word {
	words := make([]models.Word, 0, len(ids))
	for i, id := range ids {
		words = append(words, models.Word{
			ID:        id,
			Word:      "word-" + id,
			Meaning:   "meaning-" + id,
			FileIndex: i + 1,
		})
	}
	return words
}

func TestSession_InitializeAndCurrentWord(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b", "c"), map[string]float64{"a": 4})

	current := s.CurrentWord()
	require.NotNil(t, current)
	assert.Equal(t, "a", current.ID)

	// Pure read: asking again does not advance
	assert.Equal(t, "a", s.CurrentWord().ID)
}

func TestSession_CurrentWordWithoutSession(t *testing.T) {
	s := NewSession(&memStore{})
	assert.Nil(t, s.CurrentWord())
}

func TestSession_EmptyTrainingIsImmediatelyComplete(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("empty", nil, nil)

	assert.Nil(t, s.CurrentWord())
	res, err := s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	assert.True(t, res.TrainingComplete)
}

func TestSession_QueueConservation(t *testing.T) {
	// With no "didn't know" answers, N words take exactly N submissions
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b", "c", "d"), nil)

	for i := 0; i < 4; i++ {
		res, err := s.SubmitGrade(OutcomeKnown)
		require.NoError(t, err)
		assert.Equal(t, 3-i, res.QueueSizeRemaining)
		assert.Equal(t, i == 3, res.TrainingComplete)
	}
}

func TestSession_SubmitGradeUpdatesGrade(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b"), map[string]float64{"a": 6})

	res, err := s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	assert.Equal(t, "a", res.WordID)
	assert.Equal(t, 6.0, res.OldGrade)
	assert.Equal(t, 8.0, res.NewGrade)
	require.NotNil(t, res.NextWord)
	assert.Equal(t, "b", res.NextWord.ID)
}

func TestSession_MissingGradeDefaultsToZero(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a"), nil)

	res, err := s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.OldGrade)
	assert.Equal(t, 5.0, res.NewGrade)
}

func TestSession_InvalidOutcome(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a"), nil)

	_, err := s.SubmitGrade(TestOutcome(2))
	assert.Error(t, err)
	// The queue is untouched on a rejected submission
	require.NotNil(t, s.CurrentWord())
	assert.Equal(t, "a", s.CurrentWord().ID)
}

func TestSession_RequeueOnUnknown(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b"), map[string]float64{"a": 4})

	// "a" graded unknown: halved and moved to the tail
	res, err := s.SubmitGrade(OutcomeUnknown)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.NewGrade)
	assert.Equal(t, 2, res.QueueSizeRemaining)
	assert.False(t, res.TrainingComplete)
	require.NotNil(t, res.NextWord)
	assert.Equal(t, "b", res.NextWord.ID)

	payload := s.SyncPayload()
	require.NotNil(t, payload)
	assert.Contains(t, payload.RemovedIDs, "a")
	assert.Contains(t, payload.AddedToEnd, "a")

	// "b" known: removed for good, not re-queued
	res, err = s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	assert.Equal(t, 1, res.QueueSizeRemaining)
	require.NotNil(t, res.NextWord)
	assert.Equal(t, "a", res.NextWord.ID)
	// The re-queued copy carries the refreshed grade
	assert.Equal(t, 2.0, res.NextWord.KnowingGrade)
}

func TestSession_TerminationAfterDeferredRequeue(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b"), nil)

	_, err := s.SubmitGrade(OutcomeUnknown) // a -> tail
	require.NoError(t, err)
	_, err = s.SubmitGrade(OutcomeKnown) // b done
	require.NoError(t, err)

	res, err := s.SubmitGrade(OutcomeKnown) // a resolved
	require.NoError(t, err)
	assert.True(t, res.TrainingComplete)
	assert.Equal(t, 0, res.QueueSizeRemaining)

	payload := s.SyncPayload()
	require.NotNil(t, payload)
	assert.NotContains(t, payload.AddedToEnd, "a")
	assert.Contains(t, payload.RemovedIDs, "a")
}

func TestSession_NoDuplicateRequeue(t *testing.T) {
	// A word already waiting in the queue again is not appended twice
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b"), nil)

	_, err := s.SubmitGrade(OutcomeUnknown) // queue: b, a
	require.NoError(t, err)
	_, err = s.SubmitGrade(OutcomeUnknown) // queue: a, b
	require.NoError(t, err)
	res, err := s.SubmitGrade(OutcomeUnknown) // a again: b, a
	require.NoError(t, err)
	assert.Equal(t, 2, res.QueueSizeRemaining)

	payload := s.SyncPayload()
	require.NotNil(t, payload)
	assert.Len(t, payload.AddedToEnd, 2)
}

func TestSession_Stats(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b", "c"), nil)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalWords)
	assert.Equal(t, 3, stats.RemainingWords)
	assert.Equal(t, 0, stats.CompletedWords)
	assert.Equal(t, 0.0, stats.Progress)

	_, err := s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	stats = s.Stats()
	assert.Equal(t, 1, stats.CompletedWords)
	assert.InDelta(t, 33.33, stats.Progress, 0.01)

	// A re-queued word does not count as completed and does not grow the total
	_, err = s.SubmitGrade(OutcomeUnknown)
	require.NoError(t, err)
	stats = s.Stats()
	assert.Equal(t, 3, stats.TotalWords)
	assert.Equal(t, 1, stats.CompletedWords)
	assert.Equal(t, 2, stats.RemainingWords)
}

func TestSession_ProgressMonotonicReaches100(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b", "c", "d", "e"), nil)

	last := 0.0
	for i := 0; i < 5; i++ {
		res, err := s.SubmitGrade(OutcomeKnown)
		require.NoError(t, err)
		progress := s.Stats().Progress
		assert.GreaterOrEqual(t, progress, last)
		last = progress
		if res.TrainingComplete {
			assert.Equal(t, 100.0, progress)
		} else {
			assert.Less(t, progress, 100.0)
		}
	}
}

func TestSession_StatsWithoutSession(t *testing.T) {
	s := NewSession(&memStore{})
	assert.Equal(t, models.TrainingStats{}, s.Stats())
}

func TestSession_ResumeMatchingTraining(t *testing.T) {
	store := &memStore{}
	s := NewSession(store)
	s.Initialize("trainingY", testWords("a", "b", "c"), nil)

	// A fresh handle over the same store picks the session up
	res := NewSession(store).Resume("trainingY")
	assert.False(t, res.TrainingComplete)
	require.NotNil(t, res.CurrentWord)
	assert.Equal(t, "a", res.CurrentWord.ID)
	assert.Equal(t, 2, res.QueueSizeRemaining)
}

func TestSession_ResumeMismatchClearsStaleSession(t *testing.T) {
	store := &memStore{}
	s := NewSession(store)
	s.Initialize("trainingY", testWords("a", "b"), nil)

	res := s.Resume("trainingX")
	assert.True(t, res.TrainingComplete)
	assert.Nil(t, res.CurrentWord)

	// The stale session was cleared, not kept around
	res = s.Resume("trainingY")
	assert.True(t, res.TrainingComplete)
}

func TestSession_ResumeWithoutSession(t *testing.T) {
	s := NewSession(&memStore{})
	res := s.Resume("basics")
	assert.True(t, res.TrainingComplete)
}

func TestSession_SyncPayloadCompleteness(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("basics", testWords("a", "b", "c"), map[string]float64{"b": 8})

	_, err := s.SubmitGrade(OutcomeKnown) // a: 0 -> 5
	require.NoError(t, err)
	_, err = s.SubmitGrade(OutcomePartial) // b: stays 8
	require.NoError(t, err)
	_, err = s.SubmitGrade(OutcomeUnknown) // c: 0 -> 0, re-queued
	require.NoError(t, err)

	payload := s.SyncPayload()
	require.NotNil(t, payload)
	assert.Equal(t, "basics", payload.TrainingName)
	require.Len(t, payload.GradeUpdates, 3)
	byID := map[string]float64{}
	for _, u := range payload.GradeUpdates {
		byID[u.WordID] = u.Grade
	}
	assert.Equal(t, 5.0, byID["a"])
	assert.Equal(t, 8.0, byID["b"])
	assert.Equal(t, 0.0, byID["c"])
}

func TestSession_SyncPayloadWithoutSession(t *testing.T) {
	s := NewSession(&memStore{})
	assert.Nil(t, s.SyncPayload())
}

func TestSession_Clear(t *testing.T) {
	store := &memStore{}
	s := NewSession(store)
	s.Initialize("basics", testWords("a"), nil)

	s.Clear()
	assert.Nil(t, s.CurrentWord())
	assert.Nil(t, s.SyncPayload())
	s.Clear() // idempotent
}

func TestSession_InitializeOverwritesPreviousSession(t *testing.T) {
	s := NewSession(&memStore{})
	s.Initialize("first", testWords("a", "b"), nil)
	s.Initialize("second", testWords("x"), nil)

	require.NotNil(t, s.CurrentWord())
	assert.Equal(t, "x", s.CurrentWord().ID)
	assert.Equal(t, 1, s.Stats().TotalWords)
}

func TestSession_ContinuesInMemoryWhenStoreFails(t *testing.T) {
	store := &memStore{failing: true}
	s := NewSession(store)
	s.Initialize("basics", testWords("a", "b"), nil)

	// Writes fail silently; the in-memory state keeps the session going
	require.NotNil(t, s.CurrentWord())
	assert.Equal(t, "a", s.CurrentWord().ID)

	res, err := s.SubmitGrade(OutcomeKnown)
	require.NoError(t, err)
	require.NotNil(t, res.NextWord)
	assert.Equal(t, "b", res.NextWord.ID)
}

func TestSession_InitialSizeFallback(t *testing.T) {
	// Sessions persisted before InitialSize existed estimate the total from
	// the live queue plus removed words
	store := &memStore{}
	state := &models.TrainingQueueState{
		TrainingName: "legacy",
		Words:        testWords("b", "c"),
		UserGrades:   map[string]float64{"a": 5},
		RemovedIDs:   []string{"a"},
		AddedToEnd:   []string{},
	}
	require.NoError(t, store.SaveSession(state))

	s := NewSession(store)
	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalWords)
	assert.Equal(t, 1, stats.CompletedWords)
}
