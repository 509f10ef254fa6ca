package storage

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabtrainer/pkg/models"
)

// OutboxEntry is a sync payload waiting to be re-pushed to the backend
type OutboxEntry struct {
	ID      int64
	Payload models.SyncPayload
}

// OutboxRepository persists sync payloads whose push failed, so a dropped
// network connection at session end does not lose the session's grades.
// Entries are replayed on startup and on a schedule, oldest first.
type OutboxRepository struct {
	db *sqlx.DB
}

// NewOutboxRepository creates a new repository instance
func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Add stores a payload for later replay
func (r *OutboxRepository) Add(payload *models.SyncPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sync payload: %v", err)
	}
	if _, err := r.db.Exec("INSERT INTO sync_outbox (payload) VALUES ($1)", string(data)); err != nil {
		return fmt.Errorf("failed to store sync payload: %v", err)
	}
	return nil
}

// List returns all pending entries, oldest first. Entries that no longer
// unmarshal are skipped rather than blocking the rest of the queue.
func (r *OutboxRepository) List() ([]OutboxEntry, error) {
	rows, err := r.db.Query("SELECT id, payload FROM sync_outbox ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sync outbox: %v", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %v", err)
		}

		var payload models.SyncPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			continue
		}
		entries = append(entries, OutboxEntry{ID: id, Payload: payload})
	}
	return entries, rows.Err()
}

// Delete removes a replayed entry
func (r *OutboxRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM sync_outbox WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete outbox entry: %v", err)
	}
	return nil
}
