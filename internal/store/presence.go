package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SetStatus overwrites a user's presence flag. It implements
// timer.Presence; each key is owned exclusively by the writing user, so
// there are no read-modify-write races.
func (s *Store) SetStatus(userID, state string, changedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO presence (user_id, state, changed_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET state = excluded.state, changed_at = excluded.changed_at`,
		userID, state, changedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set status %s: %w", state, err)
	}
	return nil
}

func (s *Store) GetStatus(userID string) (*Status, error) {
	st := &Status{}
	var changedAt string
	err := s.db.QueryRow(
		`SELECT user_id, state, changed_at FROM presence WHERE user_id = ?`, userID,
	).Scan(&st.UserID, &st.State, &changedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	st.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
	return st, nil
}

// ListStatuses returns every known presence flag, working users first.
func (s *Store) ListStatuses() ([]Status, error) {
	rows, err := s.db.Query(
		`SELECT user_id, state, changed_at FROM presence
		 ORDER BY CASE state WHEN 'working' THEN 0 WHEN 'online' THEN 1 ELSE 2 END, user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		var st Status
		var changedAt string
		if err := rows.Scan(&st.UserID, &st.State, &changedAt); err != nil {
			return nil, err
		}
		st.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}
