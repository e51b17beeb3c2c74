package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// JournalEntry is one emitted event persisted for the API and debugging.
type JournalEntry struct {
	ID         string
	Type       string
	Gesture    string
	Confidence float64
	Data       json.RawMessage
	CreatedAt  time.Time
}

// JournalRepository records emitted events.
type JournalRepository struct {
	db *sql.DB
}

// Journal returns the event journal repository for this store.
func (s *Store) Journal() *JournalRepository {
	return &JournalRepository{db: s.db}
}

// Append records one event.
func (r *JournalRepository) Append(e *JournalEntry) error {
	data := e.Data
	if data == nil {
		data = json.RawMessage("{}")
	}
	_, err := r.db.Exec(
		`INSERT INTO events (id, type, gesture, confidence, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, e.Gesture, e.Confidence, string(data), e.CreatedAt,
	)
	return err
}

// Recent returns the latest entries, newest first, capped at limit.
func (r *JournalRepository) Recent(limit int) ([]*JournalEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, type, gesture, confidence, data, created_at
		 FROM events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*JournalEntry
	for rows.Next() {
		e := &JournalEntry{}
		var data string
		if err := rows.Scan(&e.ID, &e.Type, &e.Gesture, &e.Confidence, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneBefore deletes entries older than cutoff and returns how many were
// removed.
func (r *JournalRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
