package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// sessionSlot names the single storage slot holding the active session state
const sessionSlot = "training_queue_state"

// SessionRepository persists the training session slot. It implements the
// trainer Store interface: the whole state object is written and read
// wholesale, one row per slot.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession overwrites the slot with the given state
func (r *SessionRepository) SaveSession(state *models.TrainingQueueState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %v", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO training_session (slot, state, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP
	`, sessionSlot, string(data))
	if err != nil {
		return fmt.Errorf("failed to save session state: %v", err)
	}
	return nil
}

// LoadSession reads the slot. No stored session, or a slot that no longer
// unmarshals, both read as (nil, nil): an unreadable slot is treated the same
// as an absent one.
func (r *SessionRepository) LoadSession() (*models.TrainingQueueState, error) {
	var data string
	err := r.db.Get(&data, "SELECT state FROM training_session WHERE slot = $1", sessionSlot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %v", err)
	}

	var state models.TrainingQueueState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, nil
	}
	return &state, nil
}

// ClearSession deletes the slot. Idempotent.
func (r *SessionRepository) ClearSession() error {
	_, err := r.db.Exec("DELETE FROM training_session WHERE slot = $1", sessionSlot)
	if err != nil {
		return fmt.Errorf("failed to clear session state: %v", err)
	}
	return nil
}
